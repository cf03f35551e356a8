package cart

import (
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one selectable product entry in a cart namespace.
type Line struct {
	ProductID  uuid.UUID           `json:"product_id"`
	Name       string              `json:"name"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	Vials      int                 `json:"vials"`
	Quantity   int                 `json:"quantity"`
	Mode       enums.PurchaseMode  `json:"mode"`
	SubGroupID *uuid.UUID          `json:"sub_group_id,omitempty"`
	BatchID    *uuid.UUID          `json:"batch_id,omitempty"`
}

// State holds the full cart, partitioned into three independent namespaces.
// Transitions are pure: every operation returns a new State and leaves the
// receiver untouched.
type State struct {
	Individual    []Line `json:"individual"`
	GroupBuy      []Line `json:"group_buy"`
	RegionalGroup []Line `json:"regional_group"`
}

// NewState returns an empty cart.
func NewState() State {
	return State{}
}

func (s State) namespace(mode enums.PurchaseMode) []Line {
	switch mode {
	case enums.PurchaseModeGroupBuy:
		return s.GroupBuy
	case enums.PurchaseModeRegionalGroup:
		return s.RegionalGroup
	default:
		return s.Individual
	}
}

func (s State) withNamespace(mode enums.PurchaseMode, lines []Line) State {
	next := s.copy()
	switch mode {
	case enums.PurchaseModeGroupBuy:
		next.GroupBuy = lines
	case enums.PurchaseModeRegionalGroup:
		next.RegionalGroup = lines
	default:
		next.Individual = lines
	}
	return next
}

func (s State) copy() State {
	return State{
		Individual:    append([]Line(nil), s.Individual...),
		GroupBuy:      append([]Line(nil), s.GroupBuy...),
		RegionalGroup: append([]Line(nil), s.RegionalGroup...),
	}
}

// AddItem increments an existing line with the same product identity in place,
// preserving line order, or appends a new line with quantity 1.
func (s State) AddItem(line Line) State {
	lines := append([]Line(nil), s.namespace(line.Mode)...)
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity++
			return s.withNamespace(line.Mode, lines)
		}
	}
	line.Quantity = 1
	return s.withNamespace(line.Mode, append(lines, line))
}

// RemoveItem drops the line with the matching product identity. Removing an
// absent line is a no-op.
func (s State) RemoveItem(mode enums.PurchaseMode, productID uuid.UUID) State {
	existing := s.namespace(mode)
	lines := make([]Line, 0, len(existing))
	for _, l := range existing {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	return s.withNamespace(mode, lines)
}

// UpdateQuantity sets a line's quantity to an exact value. A quantity of zero
// or below deletes the line.
func (s State) UpdateQuantity(mode enums.PurchaseMode, productID uuid.UUID, quantity int) State {
	if quantity <= 0 {
		return s.RemoveItem(mode, productID)
	}
	lines := append([]Line(nil), s.namespace(mode)...)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			return s.withNamespace(mode, lines)
		}
	}
	return s.withNamespace(mode, lines)
}

// ClearIndividual wipes only the individual namespace.
func (s State) ClearIndividual() State {
	return s.withNamespace(enums.PurchaseModeIndividual, nil)
}

// ClearGroupBuy wipes only the group-buy namespace.
func (s State) ClearGroupBuy() State {
	return s.withNamespace(enums.PurchaseModeGroupBuy, nil)
}

// ClearRegionalGroup wipes only the regional-group namespace.
func (s State) ClearRegionalGroup() State {
	return s.withNamespace(enums.PurchaseModeRegionalGroup, nil)
}

// Subtotal sums unit price times quantity across every namespace.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, ns := range [][]Line{s.Individual, s.GroupBuy, s.RegionalGroup} {
		for _, l := range ns {
			total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return total
}

// TotalQuantity counts units across every namespace.
func (s State) TotalQuantity() int {
	count := 0
	for _, ns := range [][]Line{s.Individual, s.GroupBuy, s.RegionalGroup} {
		for _, l := range ns {
			count += l.Quantity
		}
	}
	return count
}

// IsEmpty reports whether no namespace holds any line.
func (s State) IsEmpty() bool {
	return len(s.Individual) == 0 && len(s.GroupBuy) == 0 && len(s.RegionalGroup) == 0
}
