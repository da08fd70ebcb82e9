package entity

import "time"

// Inquiry status values
const (
	InquiryStatusNew       = "new"
	InquiryStatusContacted = "contacted"
	InquiryStatusConverted = "converted"
	InquiryStatusClosed    = "closed"
)

// Inquiry is a lead captured from the marketing site contact form.
// Converting an inquiry creates a Client and sends a portal invitation.
type Inquiry struct {
	ID          int64
	Name        string
	Email       string
	Phone       string
	Company     string
	ProjectType string
	Budget      string
	Message     string
	Status      string
	CreatedAt   time.Time
}
