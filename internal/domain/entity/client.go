package entity

import "time"

// Client status values
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusArchived = "archived"
)

// Client represents an agency client. Clients are archived rather than
// deleted, though the admin API does expose a hard delete.
type Client struct {
	ID                     int64
	Name                   string
	Email                  string
	Phone                  string
	Company                string
	Status                 string
	EmailNotifications     bool
	SMSNotifications       bool
	PreferredContactWindow string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
