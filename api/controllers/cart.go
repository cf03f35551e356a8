package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	"github.com/danielcastellanos/peptidehub-backend/api/responses"
	"github.com/danielcastellanos/peptidehub-backend/api/validators"
	cartsvc "github.com/danielcastellanos/peptidehub-backend/internal/cart"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

const cartSessionHeader = "X-Cart-Session"

// cartSessionID keys the cart to the signed-in identity when present, and to
// the caller-provided session header for anonymous browsing.
func cartSessionID(r *http.Request) (string, error) {
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok && identity.ExternalID != "" {
		return identity.ExternalID, nil
	}
	if session := strings.TrimSpace(r.Header.Get(cartSessionHeader)); session != "" {
		return session, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, cartSessionHeader+" header is required for anonymous carts")
}

type cartLineRequest struct {
	ProductID  string  `json:"product_id" validate:"required,uuid"`
	Name       string  `json:"name" validate:"required"`
	UnitPrice  string  `json:"unit_price" validate:"required"`
	Vials      int     `json:"vials" validate:"gte=0"`
	Mode       string  `json:"mode" validate:"required,oneof=individual group_buy regional_group"`
	SubGroupID *string `json:"sub_group_id,omitempty"`
	BatchID    *string `json:"batch_id,omitempty"`
}

func (req cartLineRequest) toLine() (cartsvc.Line, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return cartsvc.Line{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return cartsvc.Line{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}
	mode, err := enums.ParsePurchaseMode(req.Mode)
	if err != nil {
		return cartsvc.Line{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase mode")
	}

	line := cartsvc.Line{
		ProductID: productID,
		Name:      req.Name,
		UnitPrice: price,
		Vials:     req.Vials,
		Mode:      mode,
	}
	if req.SubGroupID != nil {
		id, err := uuid.Parse(*req.SubGroupID)
		if err != nil {
			return cartsvc.Line{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sub-group id")
		}
		line.SubGroupID = &id
	}
	if req.BatchID != nil {
		id, err := uuid.Parse(*req.BatchID)
		if err != nil {
			return cartsvc.Line{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch id")
		}
		line.BatchID = &id
	}
	return line, nil
}

type cartResponse struct {
	Cart          cartsvc.State   `json:"cart"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalQuantity int             `json:"total_quantity"`
}

func newCartResponse(state cartsvc.State) cartResponse {
	return cartResponse{
		Cart:          state,
		Subtotal:      state.Subtotal(),
		TotalQuantity: state.TotalQuantity(),
	}
}

// CartGet returns the caller's session cart.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := svc.Get(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartAddItem appends a line or increments the matching one.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := payload.toLine()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.AddItem(r.Context(), session, line)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

type cartQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Mode      string `json:"mode" validate:"required,oneof=individual group_buy regional_group"`
	Quantity  int    `json:"quantity"`
}

// CartUpdateQuantity sets a line to an exact quantity; zero or below removes it.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		mode, err := enums.ParsePurchaseMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase mode"))
			return
		}

		state, err := svc.UpdateQuantity(r.Context(), session, mode, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

type cartRemoveRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Mode      string `json:"mode" validate:"required,oneof=individual group_buy regional_group"`
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartRemoveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		mode, err := enums.ParsePurchaseMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase mode"))
			return
		}

		state, err := svc.RemoveItem(r.Context(), session, mode, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartClear wipes one namespace when ?mode= is provided, or the whole cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawMode := strings.TrimSpace(r.URL.Query().Get("mode"))
		if rawMode == "" {
			if err := svc.ClearAll(r.Context(), session); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, newCartResponse(cartsvc.NewState()))
			return
		}

		mode, err := enums.ParsePurchaseMode(rawMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase mode"))
			return
		}
		state, err := svc.Clear(r.Context(), session, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}
