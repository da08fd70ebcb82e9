package entity

import "time"

// Milestone status values
const (
	MilestoneStatusPending    = "pending"
	MilestoneStatusInProgress = "in_progress"
	MilestoneStatusCompleted  = "completed"
	MilestoneStatusSkipped    = "skipped"
)

// ReviewMilestoneTitle is the idempotency key for the milestone the engine
// ensures exists when a project enters review.
const ReviewMilestoneTitle = "Client Review"

// ReviewMilestoneOrder places the review milestone after the standard
// template steps of the smaller templates.
const ReviewMilestoneOrder = 90

// Milestone is an ordered checkpoint within a project. SortOrder is stable
// and drives both display and the all-complete check.
type Milestone struct {
	ID                   int64
	ProjectID            int64
	Title                string
	Description          string
	SortOrder            int
	Status               string
	DueDate              *time.Time
	RequiresClientAction bool
	ClientApproved       bool
	CompletedAt          *time.Time
	CreatedAt            time.Time
}
