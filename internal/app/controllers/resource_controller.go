package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/logger"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

const defaultTopLimit = 10

// ResourceController handles resource operations
type ResourceController struct {
	resourceService *services.ResourceService
	cache           cache.Cache
	cacheTTL        time.Duration
}

// NewResourceController creates a new ResourceController. Top lists are
// cached for cacheTTL; zero disables caching.
func NewResourceController(resourceService *services.ResourceService, c cache.Cache, cacheTTL time.Duration) *ResourceController {
	return &ResourceController{resourceService: resourceService, cache: c, cacheTTL: cacheTTL}
}

// GetResources godoc
// @Summary List resources
// @Tags resources
// @Produce json
// @Param type query string false "Resource type"
// @Param tags query string false "Comma separated tags"
// @Success 200 {object} dto.APIResponse
// @Router /resources [get]
func (rc *ResourceController) GetResources(c *gin.Context) {
	opts, err := ParseQueryOptions(c, ResourceFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := rc.resourceService.ListAs(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Resources retrieved successfully")
}

// GetMyResources lists the caller's resources
func (rc *ResourceController) GetMyResources(c *gin.Context) {
	opts, err := ParseQueryOptions(c, ResourceFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := rc.resourceService.ListMine(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Your resources retrieved successfully")
}

type topFunc func(ctx context.Context, n int, filter query.Filter) ([]*models.Resource, error)

// top serves a ranked list of public resources, cached per list and size
func (rc *ResourceController) top(c *gin.Context, name string, fn topFunc, message string) {
	n := intQuery(c, "limit", defaultTopLimit)
	if n > 100 {
		n = 100
	}
	key := fmt.Sprintf("resources:%s:%d", name, n)

	var items []*models.Resource
	if rc.cacheTTL > 0 {
		err := cache.GetJSON(c.Request.Context(), rc.cache, key, &items)
		if err == nil {
			respondOK(c, items, message)
			return
		}
		if !errors.Is(err, cache.ErrNotFound) {
			logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	items, err := fn(c.Request.Context(), n, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	if rc.cacheTTL > 0 {
		if err := cache.SetJSON(c.Request.Context(), rc.cache, key, items, rc.cacheTTL); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	respondOK(c, items, message)
}

// GetPopular lists the most downloaded public resources
func (rc *ResourceController) GetPopular(c *gin.Context) {
	rc.top(c, "popular", rc.resourceService.GetMostDownloaded, "Popular resources retrieved successfully")
}

// GetMostViewed lists the most viewed public resources
func (rc *ResourceController) GetMostViewed(c *gin.Context) {
	rc.top(c, "most-viewed", rc.resourceService.GetMostViewed, "Most viewed resources retrieved successfully")
}

// GetRecent lists the newest public resources
func (rc *ResourceController) GetRecent(c *gin.Context) {
	rc.top(c, "recent", rc.resourceService.GetRecentlyAdded, "Recent resources retrieved successfully")
}

// GetResourceByID returns one resource and counts the view
func (rc *ResourceController) GetResourceByID(c *gin.Context) {
	r, err := rc.resourceService.ViewAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, r, "Resource retrieved successfully")
}

// CreateResource godoc
// @Summary Create a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateResourceRequest true "Resource"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /resources [post]
func (rc *ResourceController) CreateResource(c *gin.Context) {
	var req dto.CreateResourceRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	r := &models.Resource{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.ResourceType(req.Type),
		Category:    req.Category,
		FileURL:     req.FileURL,
		ExternalURL: req.ExternalURL,
	}
	applyContentFields(&r.ContentMeta, req.ContentFields)

	created, err := rc.resourceService.CreateAs(c.Request.Context(), middleware.ActorFrom(c), r)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, created, "Resource created successfully")
}

// UpdateResource applies a partial update
func (rc *ResourceController) UpdateResource(c *gin.Context) {
	var req dto.UpdateResourceRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	r, err := rc.resourceService.UpdateAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), func(r *models.Resource) error {
		applyContentPatch(&r.ContentMeta, req.ContentPatch)
		if req.Title != nil {
			r.Title = *req.Title
		}
		if req.Description != nil {
			r.Description = *req.Description
		}
		if req.Type != nil {
			r.Type = models.ResourceType(*req.Type)
		}
		if req.Category != nil {
			r.Category = *req.Category
		}
		if req.FileURL != nil {
			r.FileURL = *req.FileURL
		}
		if req.ExternalURL != nil {
			r.ExternalURL = *req.ExternalURL
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, r, "Resource updated successfully")
}

// DeleteResource removes a resource
func (rc *ResourceController) DeleteResource(c *gin.Context) {
	if err := rc.resourceService.DeleteAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil, "Resource deleted successfully")
}

// DownloadResource counts the download and redirects to the resource URL
func (rc *ResourceController) DownloadResource(c *gin.Context) {
	r, err := rc.resourceService.DownloadAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	url := r.URL()
	if url == "" {
		respondError(c, apperrors.NewResourceNotFoundError("resource has no downloadable URL"))
		return
	}
	c.Redirect(http.StatusFound, url)
}
