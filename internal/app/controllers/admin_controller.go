package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
)

// AdminController serves the administration endpoints
type AdminController struct {
	adminService *services.AdminService
	userService  *services.UserService
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService *services.AdminService, userService *services.UserService) *AdminController {
	return &AdminController{adminService: adminService, userService: userService}
}

// GetDashboard godoc
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/dashboard [get]
func (ac *AdminController) GetDashboard(c *gin.Context) {
	stats, err := ac.adminService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats, "Dashboard statistics retrieved successfully")
}

// GetUsers lists accounts, filterable by role, department and isActive
func (ac *AdminController) GetUsers(c *gin.Context) {
	var filters dto.UserFilterRequest
	if !middleware.BindQuery(c, &filters) {
		return
	}
	opts, err := ParseQueryOptions(c, UserFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := ac.userService.ListUsers(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Users retrieved successfully")
}

// DeactivateUser disables an account
func (ac *AdminController) DeactivateUser(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	user, err := ac.userService.Deactivate(c.Request.Context(), actor.ID.Hex(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user, "User deactivated successfully")
}

// GetSystemHealth reports the state of every backing component
func (ac *AdminController) GetSystemHealth(c *gin.Context) {
	health := ac.adminService.Health(c.Request.Context())
	respondOK(c, health, "System health retrieved successfully")
}

// HealthController answers liveness probes
type HealthController struct {
	version string
}

// NewHealthController creates a new HealthController
func NewHealthController(version string) *HealthController {
	return &HealthController{version: version}
}

// Check godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (hc *HealthController) Check(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
		Version:   hc.version,
	})
}
