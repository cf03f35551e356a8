package middleware

import (
	"context"
	"net/http"

	"github.com/danielcastellanos/peptidehub-backend/internal/profiles"
	pkgauth "github.com/danielcastellanos/peptidehub-backend/pkg/auth"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

// ProfileResolver is the slice of the profiles service the middleware needs.
type ProfileResolver interface {
	Resolve(ctx context.Context, identity pkgauth.Identity) (*profiles.ProfileDTO, error)
}

// ProfileContext resolves the authenticated identity to a stored profile and
// seeds the context with its id and role. A failed resolution degrades to an
// unauthenticated customer instead of failing the request.
func ProfileContext(resolver ProfileResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, ok := IdentityFromContext(ctx)
			if !ok || resolver == nil {
				next.ServeHTTP(w, r.WithContext(WithProfile(ctx, "", string(enums.DefaultUserRole))))
				return
			}

			profile, err := resolver.Resolve(ctx, identity)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "resolve_error", err.Error()), "profile resolution degraded to customer")
				}
				next.ServeHTTP(w, r.WithContext(WithProfile(ctx, "", string(enums.DefaultUserRole))))
				return
			}

			ctx = WithProfile(ctx, profile.ID.String(), string(profile.Role))
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"profile_id": profile.ID.String(),
					"actor_role": string(profile.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
