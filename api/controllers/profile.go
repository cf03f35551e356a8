package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	"github.com/danielcastellanos/peptidehub-backend/api/responses"
	"github.com/danielcastellanos/peptidehub-backend/api/validators"
	"github.com/danielcastellanos/peptidehub-backend/internal/profiles"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

type profileResponse struct {
	Profile *profiles.ProfileDTO `json:"profile"`
	IsHost  bool                 `json:"is_host"`
	IsAdmin bool                 `json:"is_admin"`
}

func newProfileResponse(profile *profiles.ProfileDTO) profileResponse {
	return profileResponse{
		Profile: profile,
		IsHost:  profile.IsHost(),
		IsAdmin: profile.IsAdmin(),
	}
}

// ProfileMe resolves the caller's identity to its stored profile, creating it
// on first sight.
func ProfileMe(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		profile, err := svc.Resolve(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProfileResponse(profile))
	}
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin host customer"`
}

// ProfileUpdateRole assigns a new role to a profile and returns the refreshed
// record so callers see the change without a reload.
func ProfileUpdateRole(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		profileID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "profileId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id"))
			return
		}

		var payload updateRoleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(payload.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		profile, err := svc.UpdateRole(r.Context(), profileID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProfileResponse(profile))
	}
}
