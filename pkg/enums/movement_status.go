package enums

import "fmt"

// MovementStatus tracks the lifecycle of a stock movement.
//
// Receipts move none -> completed (direct) or none -> pending_approval ->
// completed|rejected. Stock-outs additionally use returned for provisional
// exits that were reversed. Every status except none and pending_approval is
// terminal.
type MovementStatus string

const (
	MovementStatusNone            MovementStatus = "none"
	MovementStatusPendingApproval MovementStatus = "pending_approval"
	MovementStatusCompleted       MovementStatus = "completed"
	MovementStatusReturned        MovementStatus = "returned"
	MovementStatusRejected        MovementStatus = "rejected"
)

var validMovementStatuses = []MovementStatus{
	MovementStatusNone,
	MovementStatusPendingApproval,
	MovementStatusCompleted,
	MovementStatusReturned,
	MovementStatusRejected,
}

// String implements fmt.Stringer.
func (m MovementStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementStatus.
func (m MovementStatus) IsValid() bool {
	for _, candidate := range validMovementStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave the status.
func (m MovementStatus) IsTerminal() bool {
	switch m {
	case MovementStatusCompleted, MovementStatusReturned, MovementStatusRejected:
		return true
	}
	return false
}

// ParseMovementStatus converts raw input into a MovementStatus.
func ParseMovementStatus(value string) (MovementStatus, error) {
	for _, candidate := range validMovementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement status %q", value)
}
