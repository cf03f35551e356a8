package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	"github.com/danielcastellanos/peptidehub-backend/api/responses"
	"github.com/danielcastellanos/peptidehub-backend/api/validators"
	"github.com/danielcastellanos/peptidehub-backend/internal/groupbuy"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

type groupOrderLineRequest struct {
	ProductID *string `json:"product_id,omitempty"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice string  `json:"unit_price" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Vials     int     `json:"vials" validate:"required,min=1"`
}

type groupOrderRequest struct {
	CustomerName  string                  `json:"customer_name" validate:"required"`
	ContactNumber string                  `json:"contact_number" validate:"required"`
	SubGroupID    string                  `json:"sub_group_id" validate:"required,uuid"`
	BatchID       string                  `json:"batch_id" validate:"required,uuid"`
	Lines         []groupOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req groupOrderRequest) toInput(profileID *uuid.UUID) (groupbuy.SubmitInput, error) {
	subGroupID, err := uuid.Parse(req.SubGroupID)
	if err != nil {
		return groupbuy.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sub-group id")
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return groupbuy.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch id")
	}

	input := groupbuy.SubmitInput{
		ProfileID:     profileID,
		CustomerName:  req.CustomerName,
		ContactNumber: req.ContactNumber,
		SubGroupID:    subGroupID,
		BatchID:       batchID,
		Lines:         make([]groupbuy.SubmitLine, 0, len(req.Lines)),
	}
	for _, raw := range req.Lines {
		price, err := decimal.NewFromString(raw.UnitPrice)
		if err != nil {
			return groupbuy.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
		}
		line := groupbuy.SubmitLine{
			Name:      raw.Name,
			UnitPrice: price,
			Quantity:  raw.Quantity,
			Vials:     raw.Vials,
		}
		if raw.ProductID != nil {
			id, err := uuid.Parse(*raw.ProductID)
			if err != nil {
				return groupbuy.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
			}
			line.ProductID = &id
		}
		input.Lines = append(input.Lines, line)
	}
	return input, nil
}

// GroupOrderSubmit places a pooled order against a sub-group batch.
func GroupOrderSubmit(svc groupbuy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group-buy service unavailable"))
			return
		}

		var payload groupOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var profileID *uuid.UUID
		if raw := middleware.ProfileIDFromContext(r.Context()); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				profileID = &id
			}
		}

		input, err := payload.toInput(profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
