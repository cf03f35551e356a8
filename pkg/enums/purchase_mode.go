package enums

import "fmt"

// PurchaseMode distinguishes how a cart line or order is fulfilled.
type PurchaseMode string

const (
	PurchaseModeIndividual    PurchaseMode = "individual"
	PurchaseModeGroupBuy      PurchaseMode = "group_buy"
	PurchaseModeRegionalGroup PurchaseMode = "regional_group"
)

var validPurchaseModes = []PurchaseMode{
	PurchaseModeIndividual,
	PurchaseModeGroupBuy,
	PurchaseModeRegionalGroup,
}

// String implements fmt.Stringer.
func (p PurchaseMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseMode.
func (p PurchaseMode) IsValid() bool {
	for _, candidate := range validPurchaseModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseMode converts raw input into a PurchaseMode.
func ParsePurchaseMode(value string) (PurchaseMode, error) {
	for _, candidate := range validPurchaseModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase mode %q", value)
}
