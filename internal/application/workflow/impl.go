package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
	"github.com/pixelpine/studio-crm/internal/domain/event"
	"github.com/pixelpine/studio-crm/internal/domain/lifecycle"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	projectRepo   port.ProjectRepository
	milestoneRepo port.MilestoneRepository
	invoiceRepo   port.InvoiceRepository
	paymentRepo   port.PaymentRepository
	fileRepo      port.FileRepository
	logRepo       port.WorkflowLogRepository
	txManager     port.TransactionManager
	notifier      port.Notifier
	table         *lifecycle.Table
	cfg           Config
	logger        *zap.Logger

	now func() time.Time
}

// Option configures the workflow engine
type Option func(*engineImpl)

// WithClock overrides the engine clock (used by tests)
func WithClock(now func() time.Time) Option {
	return func(e *engineImpl) {
		e.now = now
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	projectRepo port.ProjectRepository,
	milestoneRepo port.MilestoneRepository,
	invoiceRepo port.InvoiceRepository,
	paymentRepo port.PaymentRepository,
	fileRepo port.FileRepository,
	logRepo port.WorkflowLogRepository,
	txManager port.TransactionManager,
	notifier port.Notifier,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) Engine {
	e := &engineImpl{
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		invoiceRepo:   invoiceRepo,
		paymentRepo:   paymentRepo,
		fileRepo:      fileRepo,
		logRepo:       logRepo,
		txManager:     txManager,
		notifier:      notifier,
		table:         lifecycle.NewProjectTable(),
		cfg:           cfg,
		logger:        logger,
	}
	e.now = time.Now

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// HandleEvent routes a domain event to the matching entry point
func (e *engineImpl) HandleEvent(ctx context.Context, evt *event.Event) error {
	if evt == nil {
		return fmt.Errorf("event cannot be nil")
	}

	var res *Result
	switch evt.Type {
	case event.TypeProjectStatusChanged:
		res = e.OnProjectStatusChange(ctx, evt.ResourceID,
			lifecycle.State(evt.PayloadString("old_status")),
			lifecycle.State(evt.PayloadString("new_status")))
	case event.TypeMilestoneCompleted:
		res = e.OnMilestoneCompleted(ctx, evt.ResourceID)
	case event.TypeInvoiceCreated:
		res = e.OnInvoiceCreated(ctx, evt.ResourceID)
	case event.TypePaymentReceived:
		res = e.OnPaymentReceived(ctx, evt.ResourceID)
	case event.TypeFileUploaded:
		res = e.OnFileUploaded(ctx, evt.ResourceID, evt.PayloadString("uploaded_by"))
	default:
		return fmt.Errorf("unhandled event type: %s", evt.Type)
	}

	if !res.OK() {
		if res.Err != nil {
			return fmt.Errorf("%s: %s: %w", evt.Type, res.Reason, res.Err)
		}
		return fmt.Errorf("%s: %s", evt.Type, res.Reason)
	}
	return nil
}

// OnProjectStatusChange validates and applies a project status transition
func (e *engineImpl) OnProjectStatusChange(ctx context.Context, projectID int64, oldStatus, newStatus lifecycle.State) *Result {
	project, err := e.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return failed("load project", err)
	}
	if project == nil {
		e.logger.Warn("Status change for unknown project", zap.Int64("project_id", projectID))
		return skipped("project not found")
	}

	if err := e.table.Validate(oldStatus, newStatus); err != nil {
		e.logger.Warn("Rejected status transition",
			zap.Int64("project_id", projectID),
			zap.String("old_status", oldStatus.String()),
			zap.String("new_status", newStatus.String()))
		return rejected(err.Error())
	}

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.projectRepo.UpdateStatus(txCtx, projectID, newStatus.String()); err != nil {
			return fmt.Errorf("update project status: %w", err)
		}

		switch newStatus {
		case lifecycle.StateInProgress:
			if err := e.onProjectStarted(txCtx, project); err != nil {
				return err
			}
		case lifecycle.StateReview:
			if err := e.ensureReviewMilestone(txCtx, project.ID); err != nil {
				return err
			}
		case lifecycle.StateCompleted:
			if err := e.onProjectCompleted(txCtx, project); err != nil {
				return err
			}
		case lifecycle.StateOnHold:
			if err := e.milestoneRepo.ResetInProgress(txCtx, project.ID); err != nil {
				return fmt.Errorf("reset in-progress milestones: %w", err)
			}
		}

		return e.writeLog(txCtx, project.ID, entity.WorkflowTypeProjectStatusChange, map[string]any{
			"old_status": oldStatus.String(),
			"new_status": newStatus.String(),
			"client_id":  project.ClientID,
		})
	})
	if err != nil {
		return failed("apply status change", err)
	}

	// Notifications are independently persisted side effects; a delivery
	// failure does not roll back the transition.
	if err := e.notifier.NotifyProjectUpdate(ctx, project.ClientID, project.ID, project.Name, oldStatus.String(), newStatus.String()); err != nil {
		e.logger.Warn("Status change notification failed", zap.Int64("project_id", project.ID), zap.Error(err))
	}
	switch newStatus {
	case lifecycle.StateReview:
		if err := e.notifier.NotifyProjectReview(ctx, project.ClientID, project.ID, project.Name); err != nil {
			e.logger.Warn("Review notification failed", zap.Int64("project_id", project.ID), zap.Error(err))
		}
	case lifecycle.StateCompleted:
		if err := e.notifier.NotifyProjectCompleted(ctx, project.ClientID, project.ID, project.Name); err != nil {
			e.logger.Warn("Completion notification failed", zap.Int64("project_id", project.ID), zap.Error(err))
		}
	}

	return applied(fmt.Sprintf("%s -> %s", oldStatus, newStatus))
}

// onProjectStarted seeds the milestone template on the first transition to
// in_progress and stamps the start date if unset.
func (e *engineImpl) onProjectStarted(ctx context.Context, project *entity.Project) error {
	counts, err := e.milestoneRepo.CountByProject(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("count milestones: %w", err)
	}

	if counts.Total == 0 {
		template := TemplateForType(project.Type)
		milestones := make([]*entity.Milestone, 0, len(template))
		for _, step := range template {
			milestones = append(milestones, &entity.Milestone{
				ProjectID:            project.ID,
				Title:                step.Title,
				Description:          step.Description,
				SortOrder:            step.Order,
				Status:               entity.MilestoneStatusPending,
				RequiresClientAction: step.RequiresClientAction,
			})
		}
		if err := e.milestoneRepo.CreateBatch(ctx, milestones); err != nil {
			return fmt.Errorf("seed milestones: %w", err)
		}
		e.logger.Info("Seeded milestone template",
			zap.Int64("project_id", project.ID),
			zap.String("project_type", project.Type),
			zap.Int("count", len(milestones)))
	}

	if project.StartDate == nil {
		if err := e.projectRepo.SetStartDate(ctx, project.ID, e.now()); err != nil {
			return fmt.Errorf("set start date: %w", err)
		}
	}

	return nil
}

// ensureReviewMilestone creates the client review milestone once,
// idempotent on its title.
func (e *engineImpl) ensureReviewMilestone(ctx context.Context, projectID int64) error {
	existing, err := e.milestoneRepo.GetByProjectAndTitle(ctx, projectID, entity.ReviewMilestoneTitle)
	if err != nil {
		return fmt.Errorf("look up review milestone: %w", err)
	}
	if existing != nil {
		return nil
	}

	return e.milestoneRepo.Create(ctx, &entity.Milestone{
		ProjectID:            projectID,
		Title:                entity.ReviewMilestoneTitle,
		Description:          "Review the staged site and approve or request changes",
		SortOrder:            entity.ReviewMilestoneOrder,
		Status:               entity.MilestoneStatusInProgress,
		RequiresClientAction: true,
	})
}

// onProjectCompleted stamps completion, force-completes open milestones and
// auto-generates a final invoice when none exists yet.
func (e *engineImpl) onProjectCompleted(ctx context.Context, project *entity.Project) error {
	now := e.now()

	if err := e.projectRepo.SetActualCompletion(ctx, project.ID, now); err != nil {
		return fmt.Errorf("set actual completion: %w", err)
	}

	if err := e.milestoneRepo.CompleteAllOpen(ctx, project.ID, now); err != nil {
		return fmt.Errorf("force-complete milestones: %w", err)
	}

	count, err := e.invoiceRepo.CountByProject(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("count invoices: %w", err)
	}
	if count == 0 {
		if err := e.autoGenerateProjectInvoice(ctx, project); err != nil {
			return err
		}
	}

	return nil
}

// autoGenerateProjectInvoice creates one draft invoice covering the full
// project value. No-op for projects without a total value.
func (e *engineImpl) autoGenerateProjectInvoice(ctx context.Context, project *entity.Project) error {
	if project.TotalValueCents <= 0 {
		return nil
	}

	now := e.now()
	amount := project.TotalValueCents
	tax := int64(math.Round(float64(amount) * e.cfg.TaxRate))
	due := now.AddDate(0, 0, e.cfg.InvoiceDueDays)

	invoice := &entity.Invoice{
		ProjectID:     project.ID,
		ClientID:      project.ClientID,
		InvoiceNumber: e.newInvoiceNumber(),
		Status:        entity.InvoiceStatusDraft,
		AmountCents:   amount,
		TaxCents:      tax,
		TotalCents:    amount + tax,
		DueDate:       &due,
		LineItems: []entity.InvoiceLineItem{
			{
				Description: fmt.Sprintf("Project Completion - %s", project.Name),
				Quantity:    1,
				RateCents:   amount,
				AmountCents: amount,
				SortOrder:   1,
			},
		},
	}

	// The invoice number carries random entropy and the table enforces
	// uniqueness; one retry covers the remaining collision window.
	if err := e.invoiceRepo.Create(ctx, invoice); err != nil {
		invoice.InvoiceNumber = e.newInvoiceNumber()
		if err := e.invoiceRepo.Create(ctx, invoice); err != nil {
			return fmt.Errorf("auto-generate invoice: %w", err)
		}
	}

	e.logger.Info("Auto-generated project invoice",
		zap.Int64("project_id", project.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int64("total_cents", invoice.TotalCents))
	return nil
}

func (e *engineImpl) newInvoiceNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", e.now().Format("20060102"), fragment)
}

// OnMilestoneCompleted reacts to a milestone reaching completed. When the
// last open milestone of an in_progress project completes, the project is
// flipped to completed with a direct status write; the richer side effects
// of the completed status branch intentionally do not run here.
func (e *engineImpl) OnMilestoneCompleted(ctx context.Context, milestoneID int64) *Result {
	milestone, err := e.milestoneRepo.GetByID(ctx, milestoneID)
	if err != nil {
		return failed("load milestone", err)
	}
	if milestone == nil {
		e.logger.Warn("Completion for unknown milestone", zap.Int64("milestone_id", milestoneID))
		return skipped("milestone not found")
	}

	project, err := e.projectRepo.GetByID(ctx, milestone.ProjectID)
	if err != nil {
		return failed("load project", err)
	}
	if project == nil {
		return skipped("project not found")
	}

	var flipped bool
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		counts, err := e.milestoneRepo.CountByProject(txCtx, project.ID)
		if err != nil {
			return fmt.Errorf("count milestones: %w", err)
		}

		if counts.Total > 0 && counts.Completed == counts.Total &&
			project.Status == lifecycle.StateInProgress.String() {
			if err := e.projectRepo.UpdateStatus(txCtx, project.ID, lifecycle.StateCompleted.String()); err != nil {
				return fmt.Errorf("flip project to completed: %w", err)
			}
			flipped = true
		}

		return e.writeLog(txCtx, milestone.ID, entity.WorkflowTypeMilestoneCompleted, map[string]any{
			"project_id":           project.ID,
			"client_id":            project.ClientID,
			"milestone_title":      milestone.Title,
			"completed_milestones": counts.Completed,
			"total_milestones":     counts.Total,
		})
	})
	if err != nil {
		return failed("apply milestone completion", err)
	}

	if err := e.notifier.NotifyMilestoneCompleted(ctx, project.ClientID, project.ID, project.Name, milestone.Title); err != nil {
		e.logger.Warn("Milestone notification failed", zap.Int64("milestone_id", milestone.ID), zap.Error(err))
	}

	if flipped {
		return applied("all milestones complete, project completed")
	}
	return applied("milestone completed")
}

// OnInvoiceCreated notifies the client when a sent invoice appears
func (e *engineImpl) OnInvoiceCreated(ctx context.Context, invoiceID int64) *Result {
	invoice, err := e.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return failed("load invoice", err)
	}
	if invoice == nil {
		e.logger.Warn("Created event for unknown invoice", zap.Int64("invoice_id", invoiceID))
		return skipped("invoice not found")
	}

	if err := e.writeLog(ctx, invoice.ID, entity.WorkflowTypeInvoiceCreated, map[string]any{
		"client_id":      invoice.ClientID,
		"invoice_number": invoice.InvoiceNumber,
		"status":         invoice.Status,
		"total_cents":    invoice.TotalCents,
	}); err != nil {
		return failed("write workflow log", err)
	}

	if invoice.Status == entity.InvoiceStatusSent {
		if err := e.notifier.NotifyInvoiceSent(ctx, invoice.ClientID, invoice.ID, invoice.InvoiceNumber, invoice.TotalCents, invoice.DueDate); err != nil {
			e.logger.Warn("Invoice notification failed", zap.Int64("invoice_id", invoice.ID), zap.Error(err))
		}
	}

	return applied("invoice recorded")
}

// OnPaymentReceived settles the parent invoice once completed payments
// cover its total. The paid flip is a conditional update so concurrent
// settlements fire the transition and its notification at most once.
func (e *engineImpl) OnPaymentReceived(ctx context.Context, paymentID int64) *Result {
	payment, err := e.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return failed("load payment", err)
	}
	if payment == nil {
		e.logger.Warn("Received event for unknown payment", zap.Int64("payment_id", paymentID))
		return skipped("payment not found")
	}

	invoice, err := e.invoiceRepo.GetByID(ctx, payment.InvoiceID)
	if err != nil {
		return failed("load invoice", err)
	}
	if invoice == nil {
		return skipped("invoice not found")
	}

	var flipped bool
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		sum, err := e.paymentRepo.SumCompletedByInvoice(txCtx, invoice.ID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}

		if sum >= invoice.TotalCents {
			flipped, err = e.invoiceRepo.MarkPaid(txCtx, invoice.ID)
			if err != nil {
				return fmt.Errorf("mark invoice paid: %w", err)
			}
		}

		return e.writeLog(txCtx, payment.ID, entity.WorkflowTypePaymentReceived, map[string]any{
			"invoice_id":      invoice.ID,
			"client_id":       invoice.ClientID,
			"amount_cents":    payment.AmountCents,
			"completed_cents": sum,
			"invoice_paid":    flipped,
		})
	})
	if err != nil {
		return failed("settle payment", err)
	}

	if flipped {
		if err := e.notifier.NotifyPaymentReceived(ctx, invoice.ClientID, invoice.ID, invoice.InvoiceNumber, payment.AmountCents); err != nil {
			e.logger.Warn("Payment notification failed", zap.Int64("invoice_id", invoice.ID), zap.Error(err))
		}
		return applied("invoice paid")
	}
	return applied("payment recorded")
}

// OnFileUploaded notifies the client about admin-uploaded public files
func (e *engineImpl) OnFileUploaded(ctx context.Context, fileID int64, uploadedBy string) *Result {
	file, err := e.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return failed("load file", err)
	}
	if file == nil {
		e.logger.Warn("Upload event for unknown file", zap.Int64("file_id", fileID))
		return skipped("file not found")
	}

	project, err := e.projectRepo.GetByID(ctx, file.ProjectID)
	if err != nil {
		return failed("load project", err)
	}
	if project == nil {
		return skipped("project not found")
	}

	shared := uploadedBy == entity.FileUploadedByAdmin && file.IsPublic

	if err := e.writeLog(ctx, file.ID, entity.WorkflowTypeFileUploaded, map[string]any{
		"project_id":  project.ID,
		"client_id":   project.ClientID,
		"uploaded_by": uploadedBy,
		"is_public":   file.IsPublic,
		"notified":    shared,
	}); err != nil {
		return failed("write workflow log", err)
	}

	if shared {
		if err := e.notifier.NotifyFileShared(ctx, project.ClientID, project.ID, file.ID, file.FileName); err != nil {
			e.logger.Warn("File notification failed", zap.Int64("file_id", file.ID), zap.Error(err))
		}
		return applied("client notified of shared file")
	}
	return applied("file recorded")
}

// writeLog appends one audit row; metadata is stored as JSON
func (e *engineImpl) writeLog(ctx context.Context, resourceID int64, workflowType string, metadata map[string]any) error {
	blob, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal workflow metadata: %w", err)
	}

	return e.logRepo.Create(ctx, &entity.WorkflowLog{
		ResourceID:   resourceID,
		WorkflowType: workflowType,
		Metadata:     string(blob),
		ExecutedAt:   e.now(),
	})
}
