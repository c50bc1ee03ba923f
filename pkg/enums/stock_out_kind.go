package enums

import "fmt"

// StockOutKind describes how a unit leaves the store.
type StockOutKind string

const (
	// StockOutKindDefinitive permanently removes the unit.
	StockOutKindDefinitive StockOutKind = "definitive"
	// StockOutKindAssignment hands the unit to a beneficiary for use.
	StockOutKindAssignment StockOutKind = "assignment"
	// StockOutKindProvisional removes the unit pending a validate/return decision.
	StockOutKindProvisional StockOutKind = "provisional"
)

var validStockOutKinds = []StockOutKind{
	StockOutKindDefinitive,
	StockOutKindAssignment,
	StockOutKindProvisional,
}

// String implements fmt.Stringer.
func (s StockOutKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockOutKind.
func (s StockOutKind) IsValid() bool {
	for _, candidate := range validStockOutKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockOutKind converts raw input into a StockOutKind.
func ParseStockOutKind(value string) (StockOutKind, error) {
	for _, candidate := range validStockOutKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock out kind %q", value)
}
