package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// AssignmentController handles assignment operations
type AssignmentController struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService *services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// GetAssignments godoc
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Param isActive query bool false "Filter by active state"
// @Success 200 {object} dto.APIResponse
// @Router /assignments [get]
func (ac *AssignmentController) GetAssignments(c *gin.Context) {
	opts, err := ParseQueryOptions(c, AssignmentFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := ac.assignmentService.ListAs(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Assignments retrieved successfully")
}

// GetMyAssignments lists the assignments the caller published
func (ac *AssignmentController) GetMyAssignments(c *gin.Context) {
	opts, err := ParseQueryOptions(c, AssignmentFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := ac.assignmentService.ListMine(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Your assignments retrieved successfully")
}

// scopedOptions parses the listing options and applies the visibility rule
func (ac *AssignmentController) scopedOptions(c *gin.Context) (query.Options, bool) {
	opts, err := ParseQueryOptions(c, AssignmentFilters)
	if err != nil {
		respondError(c, err)
		return opts, false
	}
	opts.Filter = auth.ScopeListing(middleware.ActorFrom(c), opts.Filter)
	return opts, true
}

// GetActiveAssignments lists active assignments
func (ac *AssignmentController) GetActiveAssignments(c *gin.Context) {
	opts, ok := ac.scopedOptions(c)
	if !ok {
		return
	}
	res, err := ac.assignmentService.FindActive(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Active assignments retrieved successfully")
}

// GetExpiredAssignments lists assignments past due that the sweep has not deactivated yet
func (ac *AssignmentController) GetExpiredAssignments(c *gin.Context) {
	opts, ok := ac.scopedOptions(c)
	if !ok {
		return
	}
	res, err := ac.assignmentService.FindExpired(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Expired assignments retrieved successfully")
}

// GetUpcomingAssignments lists assignments due within ?days= days (default 7)
func (ac *AssignmentController) GetUpcomingAssignments(c *gin.Context) {
	opts, ok := ac.scopedOptions(c)
	if !ok {
		return
	}
	res, err := ac.assignmentService.FindUpcoming(c.Request.Context(), intQuery(c, "days", 7), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Upcoming assignments retrieved successfully")
}

// GetAssignmentByID returns one assignment and counts the view
func (ac *AssignmentController) GetAssignmentByID(c *gin.Context) {
	a, err := ac.assignmentService.ViewAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, a, "Assignment retrieved successfully")
}

// CreateAssignment godoc
// @Summary Create an assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /assignments [post]
func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	a := &models.Assignment{
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate,
		MaxMarks:         req.MaxMarks,
		Instructions:     req.Instructions,
		SubmissionFormat: req.SubmissionFormat,
		IsActive:         true,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	applyContentFields(&a.ContentMeta, req.ContentFields)

	created, err := ac.assignmentService.CreateAs(c.Request.Context(), middleware.ActorFrom(c), a)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, created, "Assignment created successfully")
}

// UpdateAssignment applies a partial update. A new due date must lie in the future.
func (ac *AssignmentController) UpdateAssignment(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	if req.DueDate != nil && !req.DueDate.After(time.Now()) {
		respondError(c, apperrors.NewValidationError("Assignment validation failed", map[string]interface{}{
			"dueDate": "due date must be in the future",
		}))
		return
	}

	a, err := ac.assignmentService.UpdateAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), func(a *models.Assignment) error {
		applyContentPatch(&a.ContentMeta, req.ContentPatch)
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Description != nil {
			a.Description = *req.Description
		}
		if req.DueDate != nil {
			a.DueDate = *req.DueDate
		}
		if req.MaxMarks != nil {
			a.MaxMarks = *req.MaxMarks
		}
		if req.Instructions != nil {
			a.Instructions = req.Instructions
		}
		if req.SubmissionFormat != nil {
			a.SubmissionFormat = req.SubmissionFormat
		}
		if req.IsActive != nil {
			a.IsActive = *req.IsActive
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, a, "Assignment updated successfully")
}

// DeleteAssignment removes an assignment
func (ac *AssignmentController) DeleteAssignment(c *gin.Context) {
	if err := ac.assignmentService.DeleteAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil, "Assignment deleted successfully")
}
