package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	"github.com/danielcastellanos/peptidehub-backend/api/responses"
	"github.com/danielcastellanos/peptidehub-backend/api/validators"
	"github.com/danielcastellanos/peptidehub-backend/internal/subgroups"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

func hostProfileID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ProfileIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "malformed profile id in context")
	}
	return id, nil
}

type createBatchRequest struct {
	Name        string     `json:"name" validate:"required"`
	TargetVials int        `json:"target_vials" validate:"required,min=1"`
	OpensAt     *time.Time `json:"opens_at,omitempty"`
	ClosesAt    *time.Time `json:"closes_at,omitempty"`
}

// HostBatchCreate opens a new pooled-order window for the host's sub-group.
func HostBatchCreate(svc subgroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostID, err := hostProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := subgroups.CreateBatchInput{
			Name:        payload.Name,
			TargetVials: payload.TargetVials,
			ClosesAt:    payload.ClosesAt,
		}
		if payload.OpensAt != nil {
			input.OpensAt = *payload.OpensAt
		}

		batch, err := svc.CreateBatch(r.Context(), hostID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

func batchTransitionHandler(logg *logger.Logger, apply func(*http.Request, uuid.UUID, uuid.UUID) (*subgroups.BatchDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostID, err := hostProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batchID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "batchId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch id"))
			return
		}

		batch, err := apply(r, hostID, batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// HostBatchClose completes an open batch.
func HostBatchClose(svc subgroups.Service, logg *logger.Logger) http.HandlerFunc {
	return batchTransitionHandler(logg, func(r *http.Request, hostID, batchID uuid.UUID) (*subgroups.BatchDTO, error) {
		return svc.CloseBatch(r.Context(), hostID, batchID)
	})
}

// HostBatchCancel cancels an open batch.
func HostBatchCancel(svc subgroups.Service, logg *logger.Logger) http.HandlerFunc {
	return batchTransitionHandler(logg, func(r *http.Request, hostID, batchID uuid.UUID) (*subgroups.BatchDTO, error) {
		return svc.CancelBatch(r.Context(), hostID, batchID)
	})
}
