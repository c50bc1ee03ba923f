package enums

import "fmt"

// PendingOperationKind identifies the deferred mutation held in the queue.
type PendingOperationKind string

const (
	PendingOperationKindReceipt  PendingOperationKind = "receipt"
	PendingOperationKindStockOut PendingOperationKind = "stock_out"
)

var validPendingOperationKinds = []PendingOperationKind{
	PendingOperationKindReceipt,
	PendingOperationKindStockOut,
}

// String implements fmt.Stringer.
func (p PendingOperationKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PendingOperationKind.
func (p PendingOperationKind) IsValid() bool {
	for _, candidate := range validPendingOperationKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePendingOperationKind converts raw input into a PendingOperationKind.
func ParsePendingOperationKind(value string) (PendingOperationKind, error) {
	for _, candidate := range validPendingOperationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pending operation kind %q", value)
}

// PendingOperationStatus tracks the resolution of a queued operation.
// Approved and rejected are terminal.
type PendingOperationStatus string

const (
	PendingOperationStatusPending  PendingOperationStatus = "pending"
	PendingOperationStatusApproved PendingOperationStatus = "approved"
	PendingOperationStatusRejected PendingOperationStatus = "rejected"
)

var validPendingOperationStatuses = []PendingOperationStatus{
	PendingOperationStatusPending,
	PendingOperationStatusApproved,
	PendingOperationStatusRejected,
}

// String implements fmt.Stringer.
func (p PendingOperationStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PendingOperationStatus.
func (p PendingOperationStatus) IsValid() bool {
	for _, candidate := range validPendingOperationStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePendingOperationStatus converts raw input into a PendingOperationStatus.
func ParsePendingOperationStatus(value string) (PendingOperationStatus, error) {
	for _, candidate := range validPendingOperationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pending operation status %q", value)
}
