package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/config"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	pkgredis "github.com/danielcastellanos/peptidehub-backend/pkg/redis"
	"github.com/google/uuid"
)

// Service persists session carts and applies reducer transitions to them.
type Service interface {
	Get(ctx context.Context, sessionID string) (State, error)
	AddItem(ctx context.Context, sessionID string, line Line) (State, error)
	RemoveItem(ctx context.Context, sessionID string, mode enums.PurchaseMode, productID uuid.UUID) (State, error)
	UpdateQuantity(ctx context.Context, sessionID string, mode enums.PurchaseMode, productID uuid.UUID, quantity int) (State, error)
	Clear(ctx context.Context, sessionID string, mode enums.PurchaseMode) (State, error)
	ClearAll(ctx context.Context, sessionID string) error
}

type service struct {
	store pkgredis.KVStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService builds a cart service backed by the provided key-value store.
func NewService(store pkgredis.KVStore, cfg config.CartConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{store: store, ttl: ttl, logg: logg}, nil
}

// Get loads a session cart. An unknown session yields an empty cart.
func (s *service) Get(ctx context.Context, sessionID string) (State, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	raw, err := s.store.Get(ctx, pkgredis.CartKey(sessionID))
	if errors.Is(err, pkgredis.ErrNotFound) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// A corrupt record resets instead of wedging the session.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "session_id", sessionID), "discarding unreadable cart record")
		}
		return NewState(), nil
	}
	return state, nil
}

// AddItem applies the add transition and persists the result.
func (s *service) AddItem(ctx context.Context, sessionID string, line Line) (State, error) {
	if line.ProductID == uuid.Nil {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !line.Mode.IsValid() {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase mode %q", line.Mode))
	}
	return s.apply(ctx, sessionID, func(state State) State {
		return state.AddItem(line)
	})
}

// RemoveItem applies the remove transition and persists the result.
func (s *service) RemoveItem(ctx context.Context, sessionID string, mode enums.PurchaseMode, productID uuid.UUID) (State, error) {
	if !mode.IsValid() {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase mode %q", mode))
	}
	return s.apply(ctx, sessionID, func(state State) State {
		return state.RemoveItem(mode, productID)
	})
}

// UpdateQuantity applies the exact-quantity transition and persists the result.
func (s *service) UpdateQuantity(ctx context.Context, sessionID string, mode enums.PurchaseMode, productID uuid.UUID, quantity int) (State, error) {
	if !mode.IsValid() {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase mode %q", mode))
	}
	return s.apply(ctx, sessionID, func(state State) State {
		return state.UpdateQuantity(mode, productID, quantity)
	})
}

// Clear wipes a single namespace and persists the result.
func (s *service) Clear(ctx context.Context, sessionID string, mode enums.PurchaseMode) (State, error) {
	if !mode.IsValid() {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase mode %q", mode))
	}
	return s.apply(ctx, sessionID, func(state State) State {
		switch mode {
		case enums.PurchaseModeGroupBuy:
			return state.ClearGroupBuy()
		case enums.PurchaseModeRegionalGroup:
			return state.ClearRegionalGroup()
		default:
			return state.ClearIndividual()
		}
	})
}

// ClearAll drops the whole session cart record.
func (s *service) ClearAll(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Del(ctx, pkgredis.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session cart")
	}
	return nil
}

func (s *service) apply(ctx context.Context, sessionID string, transition func(State) State) (State, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return State{}, err
	}

	next := transition(state)

	payload, err := json.Marshal(next)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session cart")
	}
	if err := s.store.Set(ctx, pkgredis.CartKey(strings.TrimSpace(sessionID)), string(payload), s.ttl); err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session cart")
	}
	return next, nil
}
