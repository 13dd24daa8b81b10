package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

func respondOK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, message))
}

func respondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

func respondPage[T any](c *gin.Context, res *query.Result[T], opts query.Options, message string) {
	opts = opts.Normalize()
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(
		res.Items,
		helpers.NewPaginationInfo(res.Total, opts.Page, opts.Limit),
		message,
	))
}

func respondError(c *gin.Context, err error) {
	middleware.HandleAPIError(c, err)
}

// applyContentFields copies the shared create fields. isPublic defaults to true.
func applyContentFields(m *models.ContentMeta, f dto.ContentFields) {
	m.Subject = f.Subject
	m.Course = f.Course
	m.Department = f.Department
	m.Tags = f.Tags
	m.IsPublic = true
	if f.IsPublic != nil {
		m.IsPublic = *f.IsPublic
	}
}

// applyContentPatch copies the shared fields present in an update
func applyContentPatch(m *models.ContentMeta, p dto.ContentPatch) {
	if p.Subject != nil {
		m.Subject = *p.Subject
	}
	if p.Course != nil {
		m.Course = *p.Course
	}
	if p.Department != nil {
		m.Department = *p.Department
	}
	if p.Tags != nil {
		m.Tags = p.Tags
	}
	if p.IsPublic != nil {
		m.IsPublic = *p.IsPublic
	}
}
