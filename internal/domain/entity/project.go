package entity

import "time"

// Project type values. The type selects the milestone template seeded when
// work starts; unknown types fall back to the starter template.
const (
	ProjectTypeStarter    = "starter"
	ProjectTypeGrowth     = "growth"
	ProjectTypeComplete   = "complete"
	ProjectTypeEnterprise = "enterprise"
	ProjectTypeCustom     = "custom"
)

// Project represents a client engagement. Status values live in the
// lifecycle package, which also owns the allowed-transition table.
type Project struct {
	ID               int64
	ClientID         int64
	PackageID        *int64
	Name             string
	Type             string
	Status           string
	StartDate        *time.Time
	TargetCompletion *time.Time
	ActualCompletion *time.Time
	TotalValueCents  int64
	DepositCents     int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Package is a price/feature bundle a project can reference.
type Package struct {
	ID          int64
	Name        string
	ProjectType string
	PriceCents  int64
	Description string
	CreatedAt   time.Time
}
