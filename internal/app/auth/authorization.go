// Package auth holds the ownership and visibility rules applied to content.
package auth

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// Actor is the authenticated caller of a request
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
	Name string
}

// IsAdmin reports whether the actor is an administrator
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// CanMutate reports whether the actor may update or delete an item owned by ownerID
func CanMutate(actor *Actor, ownerID primitive.ObjectID) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || actor.ID == ownerID
}

// CanRead reports whether the actor may read an item. Public items are readable by
// anyone, private ones only by their owner or an admin.
func CanRead(actor *Actor, ownerID primitive.ObjectID, isPublic bool) bool {
	return isPublic || CanMutate(actor, ownerID)
}

// AuthorizeMutate returns a forbidden error when the actor may not modify the item
func AuthorizeMutate(actor *Actor, ownerID primitive.ObjectID, entity string) error {
	if !CanMutate(actor, ownerID) {
		return apperrors.NewForbiddenError("you can only modify your own " + entity)
	}
	return nil
}

// AuthorizeRead returns a forbidden error when the item is private to someone else
func AuthorizeRead(actor *Actor, ownerID primitive.ObjectID, isPublic bool, entity string) error {
	if !CanRead(actor, ownerID, isPublic) {
		return apperrors.NewForbiddenError("this " + entity + " is private")
	}
	return nil
}

// ScopeListing restricts a public listing. Any client supplied isPublic condition
// is dropped; non-admin and anonymous callers only ever see public items, while
// admins keep the condition they asked for.
func ScopeListing(actor *Actor, filter query.Filter) query.Filter {
	requested, hasRequested := filter.Lookup("isPublic")
	scoped := filter.Without("isPublic")
	if actor.IsAdmin() {
		if hasRequested {
			scoped = scoped.And(requested)
		}
		return scoped
	}
	return scoped.And(query.Eq("isPublic", true))
}

// ScopeOwned restricts a listing to the actor's own items of any visibility
func ScopeOwned(actor *Actor, ownerField string, filter query.Filter) query.Filter {
	return filter.Without(ownerField).Without("isPublic").And(query.Eq(ownerField, actor.ID))
}
