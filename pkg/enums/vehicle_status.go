package enums

import "fmt"

// VehicleStatus tracks the lifecycle of a fleet vehicle.
// Reformed is terminal; no transition may leave it.
type VehicleStatus string

const (
	VehicleStatusPending  VehicleStatus = "pending"
	VehicleStatusAssigned VehicleStatus = "assigned"
	VehicleStatusReformed VehicleStatus = "reformed"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusPending,
	VehicleStatusAssigned,
	VehicleStatusReformed,
}

// String implements fmt.Stringer.
func (v VehicleStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleStatus.
func (v VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleStatus converts raw input into a VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}
