package event

// Type identifies the type of domain event
type Type string

const (
	TypeProjectStatusChanged Type = "project.status_changed"
	TypeMilestoneCompleted   Type = "milestone.completed"
	TypeInvoiceCreated       Type = "invoice.created"
	TypePaymentReceived      Type = "payment.received"
	TypeFileUploaded         Type = "file.uploaded"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeProjectStatusChanged,
		TypeMilestoneCompleted,
		TypeInvoiceCreated,
		TypePaymentReceived,
		TypeFileUploaded:
		return true
	default:
		return false
	}
}
