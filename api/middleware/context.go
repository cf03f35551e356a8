package middleware

import (
	"context"

	pkgauth "github.com/danielcastellanos/peptidehub-backend/pkg/auth"
)

type contextKey string

const (
	ctxIdentity  contextKey = "identity"
	ctxProfileID contextKey = "profile_id"
	ctxRole      contextKey = "actor_role"
)

func IdentityFromContext(ctx context.Context) (pkgauth.Identity, bool) {
	if ctx == nil {
		return pkgauth.Identity{}, false
	}
	if v, ok := ctx.Value(ctxIdentity).(pkgauth.Identity); ok {
		return v, true
	}
	return pkgauth.Identity{}, false
}

func ProfileIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxProfileID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, identity pkgauth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// WithProfile injects the resolved profile id and role for downstream handlers.
func WithProfile(ctx context.Context, profileID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxProfileID, profileID)
	return context.WithValue(ctx, ctxRole, role)
}
