package port

import (
	"context"
	"time"

	"github.com/pixelpine/studio-crm/internal/domain/entity"
)

// ClientRepository defines persistence operations for Client
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
	GetByEmail(ctx context.Context, email string) (*entity.Client, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// ProjectRepository defines persistence operations for Project
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	ListByClient(ctx context.Context, clientID int64) ([]*entity.Project, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetStartDate(ctx context.Context, id int64, t time.Time) error
	SetActualCompletion(ctx context.Context, id int64, t time.Time) error
}

// MilestoneCounts aggregates milestone progress for a project
type MilestoneCounts struct {
	Total     int
	Completed int
}

// MilestoneRepository defines persistence operations for Milestone
type MilestoneRepository interface {
	Create(ctx context.Context, milestone *entity.Milestone) error
	CreateBatch(ctx context.Context, milestones []*entity.Milestone) error
	GetByID(ctx context.Context, id int64) (*entity.Milestone, error)
	GetByProjectAndTitle(ctx context.Context, projectID int64, title string) (*entity.Milestone, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Milestone, error)
	CountByProject(ctx context.Context, projectID int64) (MilestoneCounts, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkCompleted(ctx context.Context, id int64, completedAt time.Time) error
	// CompleteAllOpen force-completes every non-completed milestone of a project
	CompleteAllOpen(ctx context.Context, projectID int64, completedAt time.Time) error
	// ResetInProgress moves every in_progress milestone of a project back to pending
	ResetInProgress(ctx context.Context, projectID int64) error
}

// InvoiceRepository defines persistence operations for Invoice
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	CountByProject(ctx context.Context, projectID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	// MarkPaid conditionally flips an invoice to paid and reports whether
	// this call performed the transition (false when already paid).
	MarkPaid(ctx context.Context, id int64) (bool, error)
}

// PaymentRepository defines persistence operations for Payment
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id int64) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error)
	SumCompletedByInvoice(ctx context.Context, invoiceID int64) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// FileRepository defines persistence operations for ProjectFile
type FileRepository interface {
	Create(ctx context.Context, file *entity.ProjectFile) error
	GetByID(ctx context.Context, id int64) (*entity.ProjectFile, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.ProjectFile, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id int64) (*entity.Notification, error)
	ListByClient(ctx context.Context, clientID int64, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkEmailSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkSMSSent(ctx context.Context, id int64, sentAt time.Time) error
}

// CommunicationRepository defines persistence operations for ClientCommunication
type CommunicationRepository interface {
	Create(ctx context.Context, comm *entity.ClientCommunication) error
	ListByClient(ctx context.Context, clientID int64) ([]*entity.ClientCommunication, error)
}

// WorkflowLogRepository defines persistence for the append-only audit log
type WorkflowLogRepository interface {
	Create(ctx context.Context, log *entity.WorkflowLog) error
	ListByResource(ctx context.Context, resourceID int64, workflowType string) ([]*entity.WorkflowLog, error)
}

// InquiryRepository defines persistence operations for Inquiry
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *entity.Inquiry) error
	GetByID(ctx context.Context, id int64) (*entity.Inquiry, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Inquiry, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// PackageRepository defines read operations for price/feature bundles
type PackageRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Package, error)
	List(ctx context.Context) ([]*entity.Package, error)
}

// TransactionManager executes a function within a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
