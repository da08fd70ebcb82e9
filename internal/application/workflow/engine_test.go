package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
	"github.com/pixelpine/studio-crm/internal/domain/lifecycle"
)

// Mock implementations

type mockProjectRepo struct {
	projects map[int64]*entity.Project
}

func newMockProjectRepo(projects ...*entity.Project) *mockProjectRepo {
	m := &mockProjectRepo{projects: make(map[int64]*entity.Project)}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	return m.projects[id], nil
}

func (m *mockProjectRepo) ListByClient(ctx context.Context, clientID int64) ([]*entity.Project, error) {
	return nil, nil
}

func (m *mockProjectRepo) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	return nil, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	p, ok := m.projects[id]
	if !ok {
		return errors.New("project not found")
	}
	p.Status = status
	return nil
}

func (m *mockProjectRepo) SetStartDate(ctx context.Context, id int64, t time.Time) error {
	p, ok := m.projects[id]
	if !ok {
		return errors.New("project not found")
	}
	p.StartDate = &t
	return nil
}

func (m *mockProjectRepo) SetActualCompletion(ctx context.Context, id int64, t time.Time) error {
	p, ok := m.projects[id]
	if !ok {
		return errors.New("project not found")
	}
	p.ActualCompletion = &t
	return nil
}

type mockMilestoneRepo struct {
	nextID     int64
	milestones []*entity.Milestone
}

func (m *mockMilestoneRepo) Create(ctx context.Context, milestone *entity.Milestone) error {
	m.nextID++
	milestone.ID = m.nextID
	m.milestones = append(m.milestones, milestone)
	return nil
}

func (m *mockMilestoneRepo) CreateBatch(ctx context.Context, milestones []*entity.Milestone) error {
	for _, ms := range milestones {
		if err := m.Create(ctx, ms); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockMilestoneRepo) GetByID(ctx context.Context, id int64) (*entity.Milestone, error) {
	for _, ms := range m.milestones {
		if ms.ID == id {
			return ms, nil
		}
	}
	return nil, nil
}

func (m *mockMilestoneRepo) GetByProjectAndTitle(ctx context.Context, projectID int64, title string) (*entity.Milestone, error) {
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID && ms.Title == title {
			return ms, nil
		}
	}
	return nil, nil
}

func (m *mockMilestoneRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.Milestone, error) {
	var result []*entity.Milestone
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			result = append(result, ms)
		}
	}
	return result, nil
}

func (m *mockMilestoneRepo) CountByProject(ctx context.Context, projectID int64) (port.MilestoneCounts, error) {
	var counts port.MilestoneCounts
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			counts.Total++
			if ms.Status == entity.MilestoneStatusCompleted {
				counts.Completed++
			}
		}
	}
	return counts, nil
}

func (m *mockMilestoneRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	for _, ms := range m.milestones {
		if ms.ID == id {
			ms.Status = status
			return nil
		}
	}
	return errors.New("milestone not found")
}

func (m *mockMilestoneRepo) MarkCompleted(ctx context.Context, id int64, completedAt time.Time) error {
	for _, ms := range m.milestones {
		if ms.ID == id {
			ms.Status = entity.MilestoneStatusCompleted
			ms.CompletedAt = &completedAt
			return nil
		}
	}
	return errors.New("milestone not found")
}

func (m *mockMilestoneRepo) CompleteAllOpen(ctx context.Context, projectID int64, completedAt time.Time) error {
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID && ms.Status != entity.MilestoneStatusCompleted {
			ms.Status = entity.MilestoneStatusCompleted
			ms.CompletedAt = &completedAt
		}
	}
	return nil
}

func (m *mockMilestoneRepo) ResetInProgress(ctx context.Context, projectID int64) error {
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID && ms.Status == entity.MilestoneStatusInProgress {
			ms.Status = entity.MilestoneStatusPending
		}
	}
	return nil
}

type mockInvoiceRepo struct {
	nextID   int64
	invoices []*entity.Invoice
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	for _, inv := range m.invoices {
		if inv.InvoiceNumber == invoice.InvoiceNumber {
			return errors.New("UNIQUE constraint failed: invoices.invoice_number")
		}
	}
	m.nextID++
	invoice.ID = m.nextID
	m.invoices = append(m.invoices, invoice)
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvoiceRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.Invoice, error) {
	var result []*entity.Invoice
	for _, inv := range m.invoices {
		if inv.ProjectID == projectID {
			result = append(result, inv)
		}
	}
	return result, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	return m.invoices, nil
}

func (m *mockInvoiceRepo) CountByProject(ctx context.Context, projectID int64) (int, error) {
	count := 0
	for _, inv := range m.invoices {
		if inv.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (m *mockInvoiceRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	for _, inv := range m.invoices {
		if inv.ID == id {
			inv.Status = status
			return nil
		}
	}
	return errors.New("invoice not found")
}

func (m *mockInvoiceRepo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	for _, inv := range m.invoices {
		if inv.ID == id {
			if inv.Status == entity.InvoiceStatusPaid {
				return false, nil
			}
			inv.Status = entity.InvoiceStatusPaid
			return true, nil
		}
	}
	return false, errors.New("invoice not found")
}

type mockPaymentRepo struct {
	payments []*entity.Payment
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	m.payments = append(m.payments, payment)
	return nil
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*entity.Payment, error) {
	for _, p := range m.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentRepo) ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepo) SumCompletedByInvoice(ctx context.Context, invoiceID int64) (int64, error) {
	var sum int64
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID && p.Status == entity.PaymentStatusCompleted {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}

type mockFileRepo struct {
	files []*entity.ProjectFile
}

func (m *mockFileRepo) Create(ctx context.Context, file *entity.ProjectFile) error {
	m.files = append(m.files, file)
	return nil
}

func (m *mockFileRepo) GetByID(ctx context.Context, id int64) (*entity.ProjectFile, error) {
	for _, f := range m.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, nil
}

func (m *mockFileRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.ProjectFile, error) {
	return nil, nil
}

type mockLogRepo struct {
	logs []*entity.WorkflowLog
}

func (m *mockLogRepo) Create(ctx context.Context, log *entity.WorkflowLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockLogRepo) ListByResource(ctx context.Context, resourceID int64, workflowType string) ([]*entity.WorkflowLog, error) {
	return nil, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockNotifier struct {
	calls []string
}

func (m *mockNotifier) record(format string, args ...any) error {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
	return nil
}

func (m *mockNotifier) NotifyProjectUpdate(ctx context.Context, clientID, projectID int64, projectName, oldStatus, newStatus string) error {
	return m.record("project_update:%d:%s->%s", projectID, oldStatus, newStatus)
}

func (m *mockNotifier) NotifyProjectReview(ctx context.Context, clientID, projectID int64, projectName string) error {
	return m.record("project_review:%d", projectID)
}

func (m *mockNotifier) NotifyProjectCompleted(ctx context.Context, clientID, projectID int64, projectName string) error {
	return m.record("project_completed:%d", projectID)
}

func (m *mockNotifier) NotifyMilestoneCompleted(ctx context.Context, clientID, projectID int64, projectName, milestoneTitle string) error {
	return m.record("milestone_completed:%d:%s", projectID, milestoneTitle)
}

func (m *mockNotifier) NotifyInvoiceSent(ctx context.Context, clientID, invoiceID int64, invoiceNumber string, totalCents int64, dueDate *time.Time) error {
	return m.record("invoice_sent:%d", invoiceID)
}

func (m *mockNotifier) NotifyPaymentReceived(ctx context.Context, clientID, invoiceID int64, invoiceNumber string, amountCents int64) error {
	return m.record("payment_received:%d", invoiceID)
}

func (m *mockNotifier) NotifyFileShared(ctx context.Context, clientID, projectID, fileID int64, fileName string) error {
	return m.record("file_shared:%d", fileID)
}

func (m *mockNotifier) countPrefix(prefix string) int {
	count := 0
	for _, c := range m.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			count++
		}
	}
	return count
}

// Test fixture

type fixture struct {
	engine     Engine
	projects   *mockProjectRepo
	milestones *mockMilestoneRepo
	invoices   *mockInvoiceRepo
	payments   *mockPaymentRepo
	files      *mockFileRepo
	logs       *mockLogRepo
	notifier   *mockNotifier
	now        time.Time
}

func newFixture(projects ...*entity.Project) *fixture {
	f := &fixture{
		projects:   newMockProjectRepo(projects...),
		milestones: &mockMilestoneRepo{},
		invoices:   &mockInvoiceRepo{},
		payments:   &mockPaymentRepo{},
		files:      &mockFileRepo{},
		logs:       &mockLogRepo{},
		notifier:   &mockNotifier{},
		now:        time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	f.engine = NewEngine(
		f.projects, f.milestones, f.invoices, f.payments, f.files, f.logs,
		&mockTxManager{}, f.notifier,
		Config{TaxRate: 0.085, InvoiceDueDays: 30},
		zap.NewNop(),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func project(id int64, projectType, status string, totalCents int64) *entity.Project {
	return &entity.Project{
		ID:              id,
		ClientID:        100 + id,
		Name:            fmt.Sprintf("Project %d", id),
		Type:            projectType,
		Status:          status,
		TotalValueCents: totalCents,
	}
}

// Tests

func TestStatusChangeSeedsMilestoneTemplates(t *testing.T) {
	cases := []struct {
		projectType string
		wantCount   int
	}{
		{entity.ProjectTypeStarter, 6},
		{entity.ProjectTypeGrowth, 8},
		{entity.ProjectTypeComplete, 12},
		{entity.ProjectTypeEnterprise, 6}, // fallback to starter
		{"mystery", 6},                    // unknown types fall back too
	}

	for _, tc := range cases {
		t.Run(tc.projectType, func(t *testing.T) {
			f := newFixture(project(1, tc.projectType, "planning", 0))

			res := f.engine.OnProjectStatusChange(context.Background(), 1,
				lifecycle.StatePlanning, lifecycle.StateInProgress)
			if res.Outcome != OutcomeApplied {
				t.Fatalf("outcome = %s (%s), want applied", res.Outcome, res.Reason)
			}

			seeded, _ := f.milestones.ListByProject(context.Background(), 1)
			if len(seeded) != tc.wantCount {
				t.Fatalf("seeded %d milestones, want %d", len(seeded), tc.wantCount)
			}

			for i := 1; i < len(seeded); i++ {
				if seeded[i].SortOrder <= seeded[i-1].SortOrder {
					t.Errorf("milestone order not ascending at index %d", i)
				}
			}
			for _, ms := range seeded {
				if ms.Status != entity.MilestoneStatusPending {
					t.Errorf("seeded milestone %q has status %s, want pending", ms.Title, ms.Status)
				}
			}

			p, _ := f.projects.GetByID(context.Background(), 1)
			if p.StartDate == nil || !p.StartDate.Equal(f.now) {
				t.Error("start date not stamped on first start")
			}
		})
	}
}

func TestStatusChangeSeedingIsIdempotent(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeGrowth, "planning", 0))
	ctx := context.Background()

	existing := &entity.Milestone{ProjectID: 1, Title: "Custom step", SortOrder: 5, Status: entity.MilestoneStatusPending}
	if err := f.milestones.Create(ctx, existing); err != nil {
		t.Fatal(err)
	}

	res := f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StatePlanning, lifecycle.StateInProgress)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", res.Outcome)
	}

	all, _ := f.milestones.ListByProject(ctx, 1)
	if len(all) != 1 {
		t.Errorf("template seeded over existing milestones: have %d, want 1", len(all))
	}
}

func TestStatusChangeToReviewEnsuresReviewMilestone(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 0))
	ctx := context.Background()

	res := f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateReview)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", res.Outcome)
	}

	ms, _ := f.milestones.GetByProjectAndTitle(ctx, 1, entity.ReviewMilestoneTitle)
	if ms == nil {
		t.Fatal("review milestone not created")
	}
	if ms.SortOrder != entity.ReviewMilestoneOrder {
		t.Errorf("review milestone order = %d, want %d", ms.SortOrder, entity.ReviewMilestoneOrder)
	}
	if !ms.RequiresClientAction {
		t.Error("review milestone must require client action")
	}
	if ms.Status != entity.MilestoneStatusInProgress {
		t.Errorf("review milestone status = %s, want in_progress", ms.Status)
	}

	// Bounce out of review and back; the milestone must not duplicate.
	f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateReview, lifecycle.StateInProgress)
	f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateReview)

	all, _ := f.milestones.ListByProject(ctx, 1)
	reviewCount := 0
	for _, m := range all {
		if m.Title == entity.ReviewMilestoneTitle {
			reviewCount++
		}
	}
	if reviewCount != 1 {
		t.Errorf("review milestone count = %d, want 1", reviewCount)
	}

	if got := f.notifier.countPrefix("project_review:"); got != 2 {
		t.Errorf("review notifications = %d, want 2", got)
	}
}

func TestStatusChangeToCompletedRunsFullSideEffects(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 250000))
	ctx := context.Background()

	f.milestones.CreateBatch(ctx, []*entity.Milestone{
		{ProjectID: 1, Title: "A", SortOrder: 10, Status: entity.MilestoneStatusCompleted},
		{ProjectID: 1, Title: "B", SortOrder: 20, Status: entity.MilestoneStatusInProgress},
		{ProjectID: 1, Title: "C", SortOrder: 30, Status: entity.MilestoneStatusPending},
	})

	res := f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateCompleted)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s (%s), want applied", res.Outcome, res.Reason)
	}

	p, _ := f.projects.GetByID(ctx, 1)
	if p.Status != "completed" {
		t.Errorf("project status = %s, want completed", p.Status)
	}
	if p.ActualCompletion == nil || !p.ActualCompletion.Equal(f.now) {
		t.Error("actual completion not stamped")
	}

	all, _ := f.milestones.ListByProject(ctx, 1)
	for _, ms := range all {
		if ms.Status != entity.MilestoneStatusCompleted {
			t.Errorf("milestone %q status = %s, want completed", ms.Title, ms.Status)
		}
	}

	invoices, _ := f.invoices.ListByProject(ctx, 1)
	if len(invoices) != 1 {
		t.Fatalf("auto-generated %d invoices, want 1", len(invoices))
	}

	inv := invoices[0]
	if inv.Status != entity.InvoiceStatusDraft {
		t.Errorf("invoice status = %s, want draft", inv.Status)
	}
	if inv.AmountCents != 250000 {
		t.Errorf("invoice amount = %d, want 250000", inv.AmountCents)
	}
	// 8.5% tax, rounded to the cent: 250000 * 0.085 = 21250
	if inv.TaxCents != 21250 {
		t.Errorf("invoice tax = %d, want 21250", inv.TaxCents)
	}
	if inv.TotalCents != 271250 {
		t.Errorf("invoice total = %d, want 271250", inv.TotalCents)
	}
	if inv.DueDate == nil || !inv.DueDate.Equal(f.now.AddDate(0, 0, 30)) {
		t.Error("invoice due date not now+30d")
	}
	if len(inv.LineItems) != 1 || inv.LineItems[0].AmountCents != 250000 {
		t.Errorf("unexpected line items: %+v", inv.LineItems)
	}

	if got := f.notifier.countPrefix("project_completed:"); got != 1 {
		t.Errorf("completion notifications = %d, want 1", got)
	}
}

func TestAutoInvoiceSkippedWithoutTotalValue(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 0))
	ctx := context.Background()

	res := f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateCompleted)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", res.Outcome)
	}

	if count, _ := f.invoices.CountByProject(ctx, 1); count != 0 {
		t.Errorf("invoice generated for zero-value project: count = %d", count)
	}
}

func TestAutoInvoiceSkippedWhenInvoiceExists(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 100000))
	ctx := context.Background()

	f.invoices.Create(ctx, &entity.Invoice{
		ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-MANUAL-1",
		Status: entity.InvoiceStatusSent, AmountCents: 50000, TotalCents: 54250,
	})

	f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateCompleted)

	if count, _ := f.invoices.CountByProject(ctx, 1); count != 1 {
		t.Errorf("invoice count = %d, want 1 (no auto-generation)", count)
	}
}

func TestStatusChangeToOnHoldResetsInProgressMilestones(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 0))
	ctx := context.Background()

	f.milestones.CreateBatch(ctx, []*entity.Milestone{
		{ProjectID: 1, Title: "A", SortOrder: 10, Status: entity.MilestoneStatusCompleted},
		{ProjectID: 1, Title: "B", SortOrder: 20, Status: entity.MilestoneStatusInProgress},
		{ProjectID: 1, Title: "C", SortOrder: 30, Status: entity.MilestoneStatusPending},
	})

	res := f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateOnHold)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", res.Outcome)
	}

	all, _ := f.milestones.ListByProject(ctx, 1)
	want := map[string]string{"A": "completed", "B": "pending", "C": "pending"}
	for _, ms := range all {
		if ms.Status != want[ms.Title] {
			t.Errorf("milestone %s status = %s, want %s", ms.Title, ms.Status, want[ms.Title])
		}
	}
}

func TestStatusChangeRejectsIllegalTransition(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "completed", 0))

	res := f.engine.OnProjectStatusChange(context.Background(), 1,
		lifecycle.StateCompleted, lifecycle.StatePlanning)
	if res.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %s, want rejected", res.Outcome)
	}

	if len(f.logs.logs) != 0 {
		t.Error("rejected transition must not write a workflow log")
	}
	if len(f.notifier.calls) != 0 {
		t.Error("rejected transition must not notify")
	}

	p, _ := f.projects.GetByID(context.Background(), 1)
	if p.Status != "completed" {
		t.Errorf("project status mutated to %s on rejected transition", p.Status)
	}
}

func TestStatusChangeSkipsUnknownProject(t *testing.T) {
	f := newFixture()

	res := f.engine.OnProjectStatusChange(context.Background(), 99,
		lifecycle.StatePlanning, lifecycle.StateInProgress)
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("outcome = %s, want skipped", res.Outcome)
	}
	if len(f.logs.logs) != 0 {
		t.Error("skip must not write a workflow log")
	}
}

func TestMilestoneCompletionFlipsProjectWithoutCompletionSideEffects(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 500000))
	ctx := context.Background()

	f.milestones.CreateBatch(ctx, []*entity.Milestone{
		{ProjectID: 1, Title: "A", SortOrder: 10, Status: entity.MilestoneStatusCompleted},
		{ProjectID: 1, Title: "B", SortOrder: 20, Status: entity.MilestoneStatusCompleted},
	})

	res := f.engine.OnMilestoneCompleted(ctx, 2)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s (%s), want applied", res.Outcome, res.Reason)
	}

	p, _ := f.projects.GetByID(ctx, 1)
	if p.Status != "completed" {
		t.Errorf("project status = %s, want completed", p.Status)
	}

	// The milestone-driven flip is a direct status write: it must not run
	// the richer side effects of the completed status branch.
	if p.ActualCompletion != nil {
		t.Error("milestone-driven completion must not stamp actual completion")
	}
	if count, _ := f.invoices.CountByProject(ctx, 1); count != 0 {
		t.Errorf("milestone-driven completion auto-generated %d invoices, want 0", count)
	}

	if got := f.notifier.countPrefix("milestone_completed:"); got != 1 {
		t.Errorf("milestone notifications = %d, want 1", got)
	}
}

func TestMilestoneCompletionDoesNotFlipPartialProject(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 0))
	ctx := context.Background()

	f.milestones.CreateBatch(ctx, []*entity.Milestone{
		{ProjectID: 1, Title: "A", SortOrder: 10, Status: entity.MilestoneStatusCompleted},
		{ProjectID: 1, Title: "B", SortOrder: 20, Status: entity.MilestoneStatusPending},
	})

	f.engine.OnMilestoneCompleted(ctx, 1)

	p, _ := f.projects.GetByID(ctx, 1)
	if p.Status != "in_progress" {
		t.Errorf("project status = %s, want in_progress", p.Status)
	}
}

func TestMilestoneCompletionOnlyFlipsInProgressProjects(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "review", 0))
	ctx := context.Background()

	f.milestones.Create(ctx, &entity.Milestone{
		ProjectID: 1, Title: "A", SortOrder: 10, Status: entity.MilestoneStatusCompleted,
	})

	f.engine.OnMilestoneCompleted(ctx, 1)

	p, _ := f.projects.GetByID(ctx, 1)
	if p.Status != "review" {
		t.Errorf("project status = %s, want review (flip gated on in_progress)", p.Status)
	}
}

func TestInvoiceCreatedNotifiesOnlyWhenSent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.invoices.Create(ctx, &entity.Invoice{
		ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-1", Status: entity.InvoiceStatusDraft, TotalCents: 1000,
	})
	f.invoices.Create(ctx, &entity.Invoice{
		ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-2", Status: entity.InvoiceStatusSent, TotalCents: 1000,
	})

	f.engine.OnInvoiceCreated(ctx, 1)
	if got := f.notifier.countPrefix("invoice_sent:"); got != 0 {
		t.Errorf("draft invoice produced %d notifications, want 0", got)
	}

	f.engine.OnInvoiceCreated(ctx, 2)
	if got := f.notifier.countPrefix("invoice_sent:"); got != 1 {
		t.Errorf("sent invoice produced %d notifications, want 1", got)
	}
}

func TestPaymentSettlementMarksInvoicePaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.invoices.Create(ctx, &entity.Invoice{
		ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-1",
		Status: entity.InvoiceStatusSent, TotalCents: 100000, // $1000
	})

	f.payments.Create(ctx, &entity.Payment{ID: 1, InvoiceID: 1, AmountCents: 30000, Status: entity.PaymentStatusCompleted})
	res := f.engine.OnPaymentReceived(ctx, 1)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", res.Outcome)
	}

	inv, _ := f.invoices.GetByID(ctx, 1)
	if inv.Status == entity.InvoiceStatusPaid {
		t.Fatal("invoice marked paid at 300 of 1000")
	}

	f.payments.Create(ctx, &entity.Payment{ID: 2, InvoiceID: 1, AmountCents: 70000, Status: entity.PaymentStatusCompleted})
	f.engine.OnPaymentReceived(ctx, 2)

	inv, _ = f.invoices.GetByID(ctx, 1)
	if inv.Status != entity.InvoiceStatusPaid {
		t.Fatalf("invoice status = %s, want paid after 300+700 against 1000", inv.Status)
	}
	if got := f.notifier.countPrefix("payment_received:"); got != 1 {
		t.Errorf("payment notifications = %d, want 1", got)
	}
}

func TestPaymentSettlementIgnoresNonCompletedPayments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.invoices.Create(ctx, &entity.Invoice{
		ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-1",
		Status: entity.InvoiceStatusSent, TotalCents: 50000,
	})

	f.payments.Create(ctx, &entity.Payment{ID: 1, InvoiceID: 1, AmountCents: 50000, Status: entity.PaymentStatusPending})
	f.engine.OnPaymentReceived(ctx, 1)

	inv, _ := f.invoices.GetByID(ctx, 1)
	if inv.Status == entity.InvoiceStatusPaid {
		t.Error("pending payments must not settle an invoice")
	}
}

func TestPaymentSettlementFiresPaidTransitionOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.invoices.Create(ctx, &entity.Invoice{
		ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-1",
		Status: entity.InvoiceStatusSent, TotalCents: 10000,
	})
	f.payments.Create(ctx, &entity.Payment{ID: 1, InvoiceID: 1, AmountCents: 10000, Status: entity.PaymentStatusCompleted})

	// Two settlement runs for the same invoice: the conditional paid flip
	// must only fire the notification once.
	f.engine.OnPaymentReceived(ctx, 1)
	f.engine.OnPaymentReceived(ctx, 1)

	if got := f.notifier.countPrefix("payment_received:"); got != 1 {
		t.Errorf("paid transition fired %d notifications, want 1", got)
	}
	if len(f.logs.logs) != 2 {
		t.Errorf("workflow logs = %d, want 2 (one per invocation)", len(f.logs.logs))
	}
}

func TestFileUploadNotifiesClientOnlyForPublicAdminFiles(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 0))
	ctx := context.Background()

	f.files.Create(ctx, &entity.ProjectFile{ID: 1, ProjectID: 1, FileName: "mockup.png", IsPublic: true})
	f.files.Create(ctx, &entity.ProjectFile{ID: 2, ProjectID: 1, FileName: "notes.txt", IsPublic: false})
	f.files.Create(ctx, &entity.ProjectFile{ID: 3, ProjectID: 1, FileName: "logo.svg", IsPublic: true})

	f.engine.OnFileUploaded(ctx, 1, entity.FileUploadedByAdmin)
	f.engine.OnFileUploaded(ctx, 2, entity.FileUploadedByAdmin) // private
	f.engine.OnFileUploaded(ctx, 3, entity.FileUploadedByClient)

	if got := f.notifier.countPrefix("file_shared:"); got != 1 {
		t.Errorf("file notifications = %d, want 1", got)
	}
}

func TestEveryEntryPointWritesOneWorkflowLog(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "planning", 0))
	ctx := context.Background()

	f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StatePlanning, lifecycle.StateInProgress)

	milestones, _ := f.milestones.ListByProject(ctx, 1)
	f.milestones.MarkCompleted(ctx, milestones[0].ID, f.now)
	f.engine.OnMilestoneCompleted(ctx, milestones[0].ID)

	f.invoices.Create(ctx, &entity.Invoice{ProjectID: 1, ClientID: 101, InvoiceNumber: "INV-1", Status: entity.InvoiceStatusSent, TotalCents: 10000})
	f.engine.OnInvoiceCreated(ctx, 1)

	f.payments.Create(ctx, &entity.Payment{ID: 1, InvoiceID: 1, AmountCents: 10000, Status: entity.PaymentStatusCompleted})
	f.engine.OnPaymentReceived(ctx, 1)

	f.files.Create(ctx, &entity.ProjectFile{ID: 1, ProjectID: 1, FileName: "a.png", IsPublic: true})
	f.engine.OnFileUploaded(ctx, 1, entity.FileUploadedByAdmin)

	wantTypes := []string{
		entity.WorkflowTypeProjectStatusChange,
		entity.WorkflowTypeMilestoneCompleted,
		entity.WorkflowTypeInvoiceCreated,
		entity.WorkflowTypePaymentReceived,
		entity.WorkflowTypeFileUploaded,
	}
	if len(f.logs.logs) != len(wantTypes) {
		t.Fatalf("workflow logs = %d, want %d", len(f.logs.logs), len(wantTypes))
	}
	for i, want := range wantTypes {
		if f.logs.logs[i].WorkflowType != want {
			t.Errorf("log[%d].WorkflowType = %s, want %s", i, f.logs.logs[i].WorkflowType, want)
		}
		if f.logs.logs[i].Metadata == "" {
			t.Errorf("log[%d] has empty metadata", i)
		}
	}
}

// collidingInvoiceRepo rejects the first Create as a unique-constraint
// violation to exercise the invoice-number retry.
type collidingInvoiceRepo struct {
	mockInvoiceRepo
	rejected bool
}

func (m *collidingInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if !m.rejected {
		m.rejected = true
		return errors.New("UNIQUE constraint failed: invoices.invoice_number")
	}
	return m.mockInvoiceRepo.Create(ctx, invoice)
}

func TestAutoInvoiceRetriesOnNumberCollision(t *testing.T) {
	f := newFixture(project(1, entity.ProjectTypeStarter, "in_progress", 100000))
	invoices := &collidingInvoiceRepo{}
	f.engine = NewEngine(
		f.projects, f.milestones, invoices, f.payments, f.files, f.logs,
		&mockTxManager{}, f.notifier,
		Config{TaxRate: 0.085, InvoiceDueDays: 30},
		zap.NewNop(),
		WithClock(func() time.Time { return f.now }),
	)
	ctx := context.Background()

	res := f.engine.OnProjectStatusChange(ctx, 1, lifecycle.StateInProgress, lifecycle.StateCompleted)
	if res.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s (%s), want applied", res.Outcome, res.Reason)
	}

	created, _ := invoices.ListByProject(ctx, 1)
	if len(created) != 1 {
		t.Fatalf("invoice count = %d, want 1", len(created))
	}
	if created[0].InvoiceNumber == "" {
		t.Error("invoice number empty after retry")
	}
}
