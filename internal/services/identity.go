package services

import (
	"context"

	"marche/internal/models"
	"marche/internal/repositories"
)

type contextKey string

const userIDKey contextKey = "user_id"

// ContextWithUserID attaches an authenticated user id to the request
// context. The auth middleware calls this for signed-in shoppers.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ContextIdentity resolves the current user from the request context and
// the user repository. An absent or stale id resolves to guest.
type ContextIdentity struct {
	users repositories.UserRepository
}

// NewContextIdentity creates a ContextIdentity.
func NewContextIdentity(users repositories.UserRepository) *ContextIdentity {
	return &ContextIdentity{users: users}
}

// CurrentUser implements Identity.
func (ci *ContextIdentity) CurrentUser(ctx context.Context) (*models.User, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, nil // guest
	}
	user, err := ci.users.GetByID(id)
	if err != nil {
		// A token for a deleted account: fall back to guest.
		return nil, nil
	}
	return user, nil
}
