package domain

import "time"

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

type WaterBillingPolicy string

const (
	WaterFree WaterBillingPolicy = "free"
	WaterPaid WaterBillingPolicy = "paid"
)

type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// Restaurant is the full record as stored. Review fields stay nil while
// the record is pending and are set exactly once at the terminal transition.
type Restaurant struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Policy      WaterBillingPolicy `json:"water_billing_policy"`
	Status      SubmissionStatus   `json:"submission_status"`
	SubmittedAt time.Time          `json:"submitted_at"`
	ReviewedAt  *time.Time         `json:"reviewed_at"`
	ReviewedBy  *string            `json:"reviewed_by"`
	Notes       *string            `json:"notes"`
}

// NewRestaurant carries the fields an anonymous submitter may set.
type NewRestaurant struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Policy    WaterBillingPolicy
}

// ApprovedRestaurant is the public map projection: no moderation metadata.
type ApprovedRestaurant struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Address   string             `json:"address"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Policy    WaterBillingPolicy `json:"water_billing_policy"`
}

// PendingRestaurant is the admin-panel projection: everything except the
// (necessarily null) reviewed_at/reviewed_by pair.
type PendingRestaurant struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Policy      WaterBillingPolicy `json:"water_billing_policy"`
	Status      SubmissionStatus   `json:"submission_status"`
	SubmittedAt time.Time          `json:"submitted_at"`
	Notes       *string            `json:"notes"`
}

// AdminUser is a row of the administrator credential table. Only the
// login path ever reads it.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
