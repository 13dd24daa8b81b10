package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// ResourceService manages learning resources
type ResourceService struct {
	*ContentService[models.Resource, *models.Resource]
}

// NewResourceService creates a ResourceService
func NewResourceService(store repositories.Store[models.Resource], users UserDirectory, publisher events.Publisher, logger zerolog.Logger) *ResourceService {
	return &ResourceService{
		ContentService: NewContentService[models.Resource, *models.Resource](store, ContentConfig[models.Resource]{
			Entity:     "resource",
			Kind:       events.KindResource,
			OwnerField: "author",
			Body:       func(r *models.Resource) string { return r.Description },
		}, users, publisher, logger),
	}
}

// FindByType lists resources of one type
func (s *ResourceService) FindByType(ctx context.Context, t models.ResourceType, opts query.Options) (*query.Result[*models.Resource], error) {
	return s.findWhere(ctx, opts, query.Eq("type", t))
}

// FindByCategory lists resources of one category
func (s *ResourceService) FindByCategory(ctx context.Context, category string, opts query.Options) (*query.Result[*models.Resource], error) {
	return s.findWhere(ctx, opts, query.Eq("category", category))
}

// FindByTags lists resources carrying at least one of tags
func (s *ResourceService) FindByTags(ctx context.Context, tags []string, opts query.Options) (*query.Result[*models.Resource], error) {
	return s.findWhere(ctx, opts, query.Overlaps("tags", models.NormalizeTags(tags)))
}

// GetMostDownloaded returns the n most downloaded public resources
func (s *ResourceService) GetMostDownloaded(ctx context.Context, n int, filter query.Filter) ([]*models.Resource, error) {
	return s.top(ctx, n, filter, query.SortField{Field: "downloads", Desc: true})
}

// GetMostViewed returns the n most viewed public resources
func (s *ResourceService) GetMostViewed(ctx context.Context, n int, filter query.Filter) ([]*models.Resource, error) {
	return s.top(ctx, n, filter, query.SortField{Field: "views", Desc: true})
}

// GetRecentlyAdded returns the n newest public resources
func (s *ResourceService) GetRecentlyAdded(ctx context.Context, n int, filter query.Filter) ([]*models.Resource, error) {
	return s.top(ctx, n, filter, query.SortField{Field: "createdAt", Desc: true})
}
