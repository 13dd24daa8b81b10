package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// ParseID converts a 24-hex identifier into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewInvalidIdentifierError(id)
	}
	return oid, nil
}

// BaseService provides generic CRUD over one entity kind
type BaseService[E any, P models.EntityPtr[E]] struct {
	store     repositories.Store[E]
	entity    string
	textIndex bool
	logger    zerolog.Logger
	now       func() time.Time
}

// NewBaseService creates a base service. textIndex declares whether the store
// can answer free-text searches for this kind.
func NewBaseService[E any, P models.EntityPtr[E]](store repositories.Store[E], entity string, textIndex bool, logger zerolog.Logger) *BaseService[E, P] {
	return &BaseService[E, P]{
		store:     store,
		entity:    entity,
		textIndex: textIndex,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Store exposes the underlying store
func (s *BaseService[E, P]) Store() repositories.Store[E] {
	return s.store
}

// HasTextIndex reports whether search terms are honoured
func (s *BaseService[E, P]) HasTextIndex() bool {
	return s.textIndex
}

// Now returns the service clock
func (s *BaseService[E, P]) Now() time.Time {
	return s.now()
}

// SetClock replaces the service clock
func (s *BaseService[E, P]) SetClock(now func() time.Time) {
	s.now = now
}

// Create validates and persists a new entity with a fresh id and timestamps
func (s *BaseService[E, P]) Create(ctx context.Context, e *E) (*E, error) {
	p := P(e)
	p.SetID(primitive.NewObjectID())
	p.Touch(s.now())
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("entity", s.entity).Str("id", p.GetID().Hex()).Msg("Entity created")
	return e, nil
}

// FindByID returns the entity. A malformed id is InvalidIdentifier, an absent one NotFound.
func (s *BaseService[E, P]) FindByID(ctx context.Context, id string) (*E, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// FindAll returns one page of matches and the total match count. The page and
// the count run concurrently over the same filter and search predicate.
func (s *BaseService[E, P]) FindAll(ctx context.Context, opts query.Options) (*query.Result[*E], error) {
	opts = opts.Normalize()

	search := opts.Search
	if !s.textIndex {
		search = ""
	}

	q := query.Query{
		Filter: opts.Filter,
		Search: search,
		Sort:   opts.Sort,
		Offset: opts.Offset(),
		Limit:  opts.Limit,
	}

	var (
		items []*E
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.Find(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, q.Filter, q.Search)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []*E{}
	}
	return &query.Result[*E]{Items: items, Total: total}, nil
}

// Update loads the entity, applies the patch, re-validates and persists it
func (s *BaseService[E, P]) Update(ctx context.Context, id string, apply func(e *E) error) (*E, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, e, apply)
}

// save applies the patch to an already loaded entity
func (s *BaseService[E, P]) save(ctx context.Context, e *E, apply func(e *E) error) (*E, error) {
	p := P(e)
	originalID := p.GetID()
	if apply != nil {
		if err := apply(e); err != nil {
			return nil, err
		}
	}
	// the patch may not move the entity
	p.SetID(originalID)
	p.Touch(s.now())
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the entity and reports whether it existed
func (s *BaseService[E, P]) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return false, err
	}
	deleted, err := s.store.Delete(ctx, oid)
	if err != nil {
		return false, fmt.Errorf("error deleting %s: %w", s.entity, err)
	}
	return deleted, nil
}
