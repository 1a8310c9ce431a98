package enums

import "fmt"

// MilestoneStatus tracks one production stage of a garment order.
type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"
	MilestoneStatusAssigned   MilestoneStatus = "assigned"
	MilestoneStatusProcessing MilestoneStatus = "processing"
	MilestoneStatusCompleted  MilestoneStatus = "completed"
	MilestoneStatusCanceled   MilestoneStatus = "canceled"
)

var validMilestoneStatuses = []MilestoneStatus{
	MilestoneStatusPending,
	MilestoneStatusAssigned,
	MilestoneStatusProcessing,
	MilestoneStatusCompleted,
	MilestoneStatusCanceled,
}

// String implements fmt.Stringer.
func (m MilestoneStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MilestoneStatus.
func (m MilestoneStatus) IsValid() bool {
	for _, candidate := range validMilestoneStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// Label is the status text shown next to a milestone.
func (m MilestoneStatus) Label() string {
	switch m {
	case MilestoneStatusPending:
		return "Pending"
	case MilestoneStatusAssigned:
		return "Assigned"
	case MilestoneStatusProcessing:
		return "In Progress"
	case MilestoneStatusCompleted:
		return "Completed"
	case MilestoneStatusCanceled:
		return "Canceled"
	}
	return "Unknown"
}

// ParseMilestoneStatus converts raw input into a MilestoneStatus.
func ParseMilestoneStatus(value string) (MilestoneStatus, error) {
	for _, candidate := range validMilestoneStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid milestone status %q", value)
}
