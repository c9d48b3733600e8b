package auth

import (
	"context"

	"github.com/google/uuid"
)

type userIDKey struct{}

type permissionsKey struct{}

func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// UserIDPtr is the caller identity as stored in created_by columns.
func UserIDPtr(ctx context.Context) *uuid.UUID {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = ContextWithUserID(ctx, c.UserID)
	return context.WithValue(ctx, permissionsKey{}, c.Permissions)
}

func PermissionsFromContext(ctx context.Context) Permission {
	p, _ := ctx.Value(permissionsKey{}).(Permission)
	return p
}
