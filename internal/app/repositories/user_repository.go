package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// UserRepository adds account lookups on top of the generic user store
type UserRepository struct {
	Store[models.User]
}

// NewUserRepository wraps a user store
func NewUserRepository(store Store[models.User]) *UserRepository {
	return &UserRepository{Store: store}
}

// GetByEmail retrieves a user by (case-insensitive) email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.FindOne(ctx, query.Filter{query.Eq("email", strings.ToLower(strings.TrimSpace(email)))})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Exists reports whether a user with field == value exists
func (r *UserRepository) Exists(ctx context.Context, field, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	n, err := r.Count(ctx, query.Filter{query.Eq(field, value)}, "")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateLastLogin stamps the login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.LastLogin = &now
	u.Touch(now)
	return r.Update(ctx, u)
}

// ProfilesByID resolves owner profiles for a batch of user ids in one query.
// Unknown ids are simply absent from the result.
func (r *UserRepository) ProfilesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.OwnerProfile, error) {
	out := make(map[primitive.ObjectID]*models.OwnerProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	users, err := r.Find(ctx, query.Query{Filter: query.Filter{query.In("_id", ids)}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Profile()
	}
	return out, nil
}
