package enums

import "fmt"

// LedgerReason records why a product quantity changed. Reversals are kept
// distinct from receipts so the audit trail can tell them apart.
type LedgerReason string

const (
	LedgerReasonReceipt  LedgerReason = "receipt"
	LedgerReasonStockOut LedgerReason = "stock_out"
	LedgerReasonReversal LedgerReason = "reversal"
)

var validLedgerReasons = []LedgerReason{
	LedgerReasonReceipt,
	LedgerReasonStockOut,
	LedgerReasonReversal,
}

// String implements fmt.Stringer.
func (l LedgerReason) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerReason.
func (l LedgerReason) IsValid() bool {
	for _, candidate := range validLedgerReasons {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerReason converts raw input into a LedgerReason.
func ParseLedgerReason(value string) (LedgerReason, error) {
	for _, candidate := range validLedgerReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger reason %q", value)
}
