package backend

import (
	"encoding/json"

	"github.com/uniformhub/gateway/pkg/enums"
)

// Fabric is one selectable fabric option.
type Fabric struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// FabricSet groups fabrics by garment piece.
type FabricSet struct {
	Shirt []Fabric `json:"shirt"`
	Pants []Fabric `json:"pants"`
	Skirt []Fabric `json:"skirt"`
}

// FabricCatalog is the categorized result of getFabrics.
type FabricCatalog struct {
	Regular  FabricSet `json:"regular"`
	Physical FabricSet `json:"physical"`
}

// Order is a garment factory's production order.
type Order struct {
	ID         int64  `json:"id"`
	Code       string `json:"code,omitempty"`
	SchoolName string `json:"schoolName,omitempty"`
	Status     string `json:"status,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
}

// Milestone is one production stage of an order.
type Milestone struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Status      enums.MilestoneStatus `json:"status"`
	ImageURL    string                `json:"imageUrl,omitempty"`
	StartDate   string                `json:"startDate,omitempty"`
	EndDate     string                `json:"endDate,omitempty"`
	CompletedAt string                `json:"completedDate,omitempty"`
}

// MilestoneStatusUpdate advances a milestone, optionally with evidence.
type MilestoneStatusUpdate struct {
	MilestoneID int64  `json:"milestoneId"`
	ImageURL    string `json:"imageUrl"`
}

// Feedback is the body of a feedback or report submission.
type Feedback struct {
	Type     enums.FeedbackType `json:"type"`
	TargetID string             `json:"targetId"`
	Content  string             `json:"content"`
	Rating   int                `json:"rating,omitempty"`
	Images   []string           `json:"images"`
}

// LoginRequest exchanges a verified Google identity for a backend session.
type LoginRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
	GoogleID string `json:"googleId"`
}

// LoginResponse carries the backend-issued access token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// ConfigValue is the raw value of a backend configuration key.
type ConfigValue struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}
