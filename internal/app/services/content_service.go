package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/metrics"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// UserDirectory resolves owner ids to display profiles
type UserDirectory interface {
	ProfilesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.OwnerProfile, error)
}

// ContentConfig describes one content kind
type ContentConfig[E any] struct {
	Entity     string // display name, e.g. "note"
	Kind       string // event kind
	OwnerField string // filter field holding the owner id
	// Body returns the text carried by ContentCreated events
	Body func(e *E) string
	// CheckCreate holds rules that only apply to new items
	CheckCreate func(e *E, now time.Time) error
}

// ContentService adds owner scoping, visibility, counters and search to BaseService
type ContentService[E any, P models.ContentPtr[E]] struct {
	*BaseService[E, P]
	cfg       ContentConfig[E]
	users     UserDirectory
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewContentService creates a content service. publisher may be nil.
func NewContentService[E any, P models.ContentPtr[E]](
	store repositories.Store[E],
	cfg ContentConfig[E],
	users UserDirectory,
	publisher events.Publisher,
	logger zerolog.Logger,
) *ContentService[E, P] {
	logger = logger.With().Str("service", cfg.Entity).Logger()
	return &ContentService[E, P]{
		BaseService: NewBaseService[E, P](store, cfg.Entity, true, logger),
		cfg:         cfg,
		users:       users,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create persists the item and announces it to event subscribers
func (s *ContentService[E, P]) Create(ctx context.Context, e *E) (*E, error) {
	if s.cfg.CheckCreate != nil {
		if err := s.cfg.CheckCreate(e, s.Now()); err != nil {
			return nil, err
		}
	}
	created, err := s.BaseService.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, created)
	return created, nil
}

// CreateAs assigns the actor as owner, overriding anything the payload carried, then creates
func (s *ContentService[E, P]) CreateAs(ctx context.Context, actor *auth.Actor, e *E) (*E, error) {
	P(e).AssignOwner(actor.ID, actor.Name)
	return s.Create(ctx, e)
}

func (s *ContentService[E, P]) publish(ctx context.Context, e *E) {
	if s.publisher == nil {
		return
	}
	p := P(e)
	evt := events.ContentCreated{
		Kind:      s.cfg.Kind,
		ID:        p.GetID().Hex(),
		OwnerID:   p.OwnerID().Hex(),
		OwnerName: p.OwnerName(),
		Title:     p.DisplayTitle(),
		Public:    p.Public(),
		CreatedAt: s.Now(),
	}
	if s.cfg.Body != nil {
		evt.Body = s.cfg.Body(e)
	}
	s.publisher.Publish(ctx, evt)
}

// FindAll returns a page, joining owner profiles when opts.Populate is set
func (s *ContentService[E, P]) FindAll(ctx context.Context, opts query.Options) (*query.Result[*E], error) {
	res, err := s.BaseService.FindAll(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Populate {
		if err := s.Populate(ctx, res.Items...); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Get returns one item, optionally with its owner profile
func (s *ContentService[E, P]) Get(ctx context.Context, id string, populate bool) (*E, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if populate {
		if err := s.Populate(ctx, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Populate attaches owner profiles with a single directory lookup
func (s *ContentService[E, P]) Populate(ctx context.Context, items ...*E) error {
	if s.users == nil || len(items) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(items))
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, e := range items {
		id := P(e).OwnerID()
		if _, ok := seen[id]; ok || id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	profiles, err := s.users.ProfilesByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, e := range items {
		if p, ok := profiles[P(e).OwnerID()]; ok {
			P(e).PopulateOwner(p)
		}
	}
	return nil
}

// FindByAuthor lists items owned by authorID
func (s *ContentService[E, P]) FindByAuthor(ctx context.Context, authorID string, opts query.Options) (*query.Result[*E], error) {
	oid, err := ParseID(authorID)
	if err != nil {
		return nil, err
	}
	return s.findWhere(ctx, opts, query.Eq(s.cfg.OwnerField, oid))
}

// FindPublic lists public items
func (s *ContentService[E, P]) FindPublic(ctx context.Context, opts query.Options) (*query.Result[*E], error) {
	return s.findWhere(ctx, opts, query.Eq("isPublic", true))
}

// FindByDepartment lists items of a department
func (s *ContentService[E, P]) FindByDepartment(ctx context.Context, department string, opts query.Options) (*query.Result[*E], error) {
	return s.findWhere(ctx, opts, query.Eq("department", department))
}

// FindBySubject lists items of a subject
func (s *ContentService[E, P]) FindBySubject(ctx context.Context, subject string, opts query.Options) (*query.Result[*E], error) {
	return s.findWhere(ctx, opts, query.Eq("subject", subject))
}

// FindByCourse lists items of a course
func (s *ContentService[E, P]) FindByCourse(ctx context.Context, course string, opts query.Options) (*query.Result[*E], error) {
	return s.findWhere(ctx, opts, query.Eq("course", course))
}

// Search runs a free-text search
func (s *ContentService[E, P]) Search(ctx context.Context, term string, opts query.Options) (*query.Result[*E], error) {
	opts.Search = term
	return s.FindAll(ctx, opts)
}

// findWhere replaces any condition on the same field with cond and runs FindAll
func (s *ContentService[E, P]) findWhere(ctx context.Context, opts query.Options, cond query.Condition) (*query.Result[*E], error) {
	opts.Filter = opts.Filter.Without(cond.Field).And(cond)
	return s.FindAll(ctx, opts)
}

// top returns the n first public items under sort, populated
func (s *ContentService[E, P]) top(ctx context.Context, n int, filter query.Filter, sort ...query.SortField) ([]*E, error) {
	res, err := s.FindAll(ctx, query.Options{
		Page:     1,
		Limit:    n,
		Sort:     sort,
		Filter:   filter.Without("isPublic").And(query.Eq("isPublic", true)),
		Populate: true,
	})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// IncrementViews adds one view. Failures are logged and counted, never returned.
func (s *ContentService[E, P]) IncrementViews(ctx context.Context, id primitive.ObjectID) {
	s.increment(ctx, id, "views")
}

// IncrementDownloads adds one download. Failures are logged and counted, never returned.
func (s *ContentService[E, P]) IncrementDownloads(ctx context.Context, id primitive.ObjectID) {
	s.increment(ctx, id, "downloads")
}

func (s *ContentService[E, P]) increment(ctx context.Context, id primitive.ObjectID, field string) {
	if err := s.Store().Increment(ctx, id, field, 1); err != nil {
		metrics.CounterIncrementFailures.WithLabelValues(s.cfg.Kind, field).Inc()
		s.logger.Warn().Err(err).Str("id", id.Hex()).Str("field", field).Msg("Failed to increment counter")
	}
}

// ListAs lists items visible to actor. Non-admins only ever see public items.
func (s *ContentService[E, P]) ListAs(ctx context.Context, actor *auth.Actor, opts query.Options) (*query.Result[*E], error) {
	opts.Filter = auth.ScopeListing(actor, opts.Filter)
	return s.FindAll(ctx, opts)
}

// ListMine lists the actor's own items of any visibility
func (s *ContentService[E, P]) ListMine(ctx context.Context, actor *auth.Actor, opts query.Options) (*query.Result[*E], error) {
	opts.Filter = auth.ScopeOwned(actor, s.cfg.OwnerField, opts.Filter)
	return s.FindAll(ctx, opts)
}

// GetAs returns one item if actor may read it
func (s *ContentService[E, P]) GetAs(ctx context.Context, actor *auth.Actor, id string, populate bool) (*E, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := P(e)
	if err := auth.AuthorizeRead(actor, p.OwnerID(), p.Public(), s.cfg.Entity); err != nil {
		return nil, err
	}
	if populate {
		if err := s.Populate(ctx, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ViewAs reads an item for display and counts the view
func (s *ContentService[E, P]) ViewAs(ctx context.Context, actor *auth.Actor, id string, populate bool) (*E, error) {
	e, err := s.GetAs(ctx, actor, id, populate)
	if err != nil {
		return nil, err
	}
	s.IncrementViews(ctx, P(e).GetID())
	return e, nil
}

// DownloadAs reads an item for download and counts the download
func (s *ContentService[E, P]) DownloadAs(ctx context.Context, actor *auth.Actor, id string) (*E, error) {
	e, err := s.GetAs(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	s.IncrementDownloads(ctx, P(e).GetID())
	return e, nil
}

// UpdateAs applies the patch when actor owns the item or is an admin.
// The owner reference survives whatever the patch does.
func (s *ContentService[E, P]) UpdateAs(ctx context.Context, actor *auth.Actor, id string, apply func(e *E) error) (*E, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := P(e)
	if err := auth.AuthorizeMutate(actor, p.OwnerID(), s.cfg.Entity); err != nil {
		return nil, err
	}

	ownerID, ownerName := p.OwnerID(), p.OwnerName()
	return s.save(ctx, e, func(e *E) error {
		if apply != nil {
			if err := apply(e); err != nil {
				return err
			}
		}
		P(e).AssignOwner(ownerID, ownerName)
		return nil
	})
}

// DeleteAs removes the item when actor owns it or is an admin
func (s *ContentService[E, P]) DeleteAs(ctx context.Context, actor *auth.Actor, id string) error {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p := P(e)
	if err := auth.AuthorizeMutate(actor, p.OwnerID(), s.cfg.Entity); err != nil {
		return err
	}
	_, err = s.Delete(ctx, id)
	return err
}
