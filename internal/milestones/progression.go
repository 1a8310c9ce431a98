package milestones

import (
	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/enums"
)

// NextStatus is the status a milestone moves to when advanced. Statuses outside
// the assigned/processing flow are returned unchanged.
func NextStatus(status enums.MilestoneStatus) enums.MilestoneStatus {
	switch status {
	case enums.MilestoneStatusAssigned:
		return enums.MilestoneStatusProcessing
	case enums.MilestoneStatusProcessing:
		return enums.MilestoneStatusCompleted
	default:
		return status
	}
}

// CanUpdateMilestone reports whether the milestone may be advanced. Milestones
// move strictly in order: only an assigned or processing milestone whose
// predecessor is completed (or that has none) can change.
func CanUpdateMilestone(m backend.Milestone, all []backend.Milestone) bool {
	if m.Status != enums.MilestoneStatusAssigned && m.Status != enums.MilestoneStatusProcessing {
		return false
	}
	idx := -1
	for i := range all {
		if all[i].ID == m.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	return idx == 0 || all[idx-1].Status == enums.MilestoneStatusCompleted
}

// View is a milestone annotated for the tracker screen.
type View struct {
	backend.Milestone
	StatusLabel string                `json:"statusLabel"`
	CanUpdate   bool                  `json:"canUpdate"`
	NextStatus  enums.MilestoneStatus `json:"nextStatus"`
}

// Annotate evaluates the progression rules for every milestone of one order.
func Annotate(all []backend.Milestone) []View {
	views := make([]View, 0, len(all))
	for _, m := range all {
		views = append(views, View{
			Milestone:   m,
			StatusLabel: m.Status.Label(),
			CanUpdate:   CanUpdateMilestone(m, all),
			NextStatus:  NextStatus(m.Status),
		})
	}
	return views
}
