package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/dispatcher"
	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/application/service"
	"github.com/pixelpine/studio-crm/internal/application/workflow"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
	"github.com/pixelpine/studio-crm/internal/domain/event"
	"github.com/pixelpine/studio-crm/internal/domain/lifecycle"
	"github.com/pixelpine/studio-crm/internal/infrastructure/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	clientRepo       port.ClientRepository
	projectRepo      port.ProjectRepository
	milestoneRepo    port.MilestoneRepository
	invoiceRepo      port.InvoiceRepository
	paymentRepo      port.PaymentRepository
	fileRepo         port.FileRepository
	notificationRepo port.NotificationRepository
	commRepo         port.CommunicationRepository
	packageRepo      port.PackageRepository

	inquiryService *service.InquiryService
	engine         workflow.Engine
	events         dispatcher.Dispatcher
	exporter       *export.InvoiceExporter
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	clientRepo port.ClientRepository,
	projectRepo port.ProjectRepository,
	milestoneRepo port.MilestoneRepository,
	invoiceRepo port.InvoiceRepository,
	paymentRepo port.PaymentRepository,
	fileRepo port.FileRepository,
	notificationRepo port.NotificationRepository,
	commRepo port.CommunicationRepository,
	packageRepo port.PackageRepository,
	inquiryService *service.InquiryService,
	engine workflow.Engine,
	events dispatcher.Dispatcher,
	exporter *export.InvoiceExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		clientRepo:       clientRepo,
		projectRepo:      projectRepo,
		milestoneRepo:    milestoneRepo,
		invoiceRepo:      invoiceRepo,
		paymentRepo:      paymentRepo,
		fileRepo:         fileRepo,
		notificationRepo: notificationRepo,
		commRepo:         commRepo,
		packageRepo:      packageRepo,
		inquiryService:   inquiryService,
		engine:           engine,
		events:           events,
		exporter:         exporter,
		logger:           logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Inquiries

type createInquiryRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	ProjectType string `json:"project_type"`
	Budget      string `json:"budget"`
	Message     string `json:"message"`
}

// CreateInquiry captures a lead from the marketing site contact form
func (h *Handlers) CreateInquiry(c *gin.Context) {
	var req createInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	inquiry := &entity.Inquiry{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		ProjectType: req.ProjectType,
		Budget:      req.Budget,
		Message:     req.Message,
	}
	if err := h.inquiryService.CreateInquiry(c.Request.Context(), inquiry); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusCreated, inquiry)
}

// ListInquiries returns leads newest first
func (h *Handlers) ListInquiries(c *gin.Context) {
	limit, offset := pagination(c)
	inquiries, err := h.inquiryService.ListInquiries(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, inquiries)
}

// ConvertInquiry turns a lead into a client with a portal invitation
func (h *Handlers) ConvertInquiry(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	client, err := h.inquiryService.ConvertInquiry(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		} else if strings.Contains(err.Error(), "already") {
			status = http.StatusConflict
		}
		fail(c, status, err)
		return
	}
	ok(c, http.StatusCreated, client)
}

// Clients

type clientRequest struct {
	Name                   string `json:"name" binding:"required"`
	Email                  string `json:"email" binding:"required,email"`
	Phone                  string `json:"phone"`
	Company                string `json:"company"`
	EmailNotifications     *bool  `json:"email_notifications"`
	SMSNotifications       bool   `json:"sms_notifications"`
	PreferredContactWindow string `json:"preferred_contact_window"`
}

// CreateClient creates a client directly (without an inquiry)
func (h *Handlers) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	emailNotifications := true
	if req.EmailNotifications != nil {
		emailNotifications = *req.EmailNotifications
	}

	client := &entity.Client{
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Company:                req.Company,
		Status:                 entity.ClientStatusActive,
		EmailNotifications:     emailNotifications,
		SMSNotifications:       req.SMSNotifications,
		PreferredContactWindow: req.PreferredContactWindow,
	}
	if err := h.clientRepo.Create(c.Request.Context(), client); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusCreated, client)
}

// ListClients returns clients newest first
func (h *Handlers) ListClients(c *gin.Context) {
	limit, offset := pagination(c)
	clients, err := h.clientRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, clients)
}

// GetClient returns one client
func (h *Handlers) GetClient(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	client, err := h.clientRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if client == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("client %d not found", id))
		return
	}
	ok(c, http.StatusOK, client)
}

// UpdateClient updates a client's profile and preferences
func (h *Handlers) UpdateClient(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	client, err := h.clientRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if client == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("client %d not found", id))
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.Company = req.Company
	client.SMSNotifications = req.SMSNotifications
	client.PreferredContactWindow = req.PreferredContactWindow
	if req.EmailNotifications != nil {
		client.EmailNotifications = *req.EmailNotifications
	}

	if err := h.clientRepo.Update(c.Request.Context(), client); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, client)
}

// DeleteClient archives a client by default; ?hard=true removes the row
func (h *Handlers) DeleteClient(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	if c.Query("hard") == "true" {
		if err := h.clientRepo.Delete(c.Request.Context(), id); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"deleted": id})
		return
	}

	if err := h.clientRepo.UpdateStatus(c.Request.Context(), id, entity.ClientStatusArchived); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"archived": id})
}

// ListClientProjects returns a client's projects
func (h *Handlers) ListClientProjects(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	projects, err := h.projectRepo.ListByClient(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, projects)
}

// ListClientCommunications returns a client's communication history
func (h *Handlers) ListClientCommunications(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	comms, err := h.commRepo.ListByClient(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, comms)
}

// Projects

type createProjectRequest struct {
	ClientID         int64      `json:"client_id" binding:"required"`
	PackageID        *int64     `json:"package_id"`
	Name             string     `json:"name" binding:"required"`
	Type             string     `json:"type" binding:"required"`
	TargetCompletion *time.Time `json:"target_completion"`
	TotalValueCents  int64      `json:"total_value_cents"`
	DepositCents     int64      `json:"deposit_cents"`
}

// CreateProject creates a project in planning status
func (h *Handlers) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	client, err := h.clientRepo.GetByID(c.Request.Context(), req.ClientID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if client == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("client %d not found", req.ClientID))
		return
	}

	project := &entity.Project{
		ClientID:         req.ClientID,
		PackageID:        req.PackageID,
		Name:             req.Name,
		Type:             req.Type,
		Status:           lifecycle.StatePlanning.String(),
		TargetCompletion: req.TargetCompletion,
		TotalValueCents:  req.TotalValueCents,
		DepositCents:     req.DepositCents,
	}
	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusCreated, project)
}

// ListProjects returns projects newest first
func (h *Handlers) ListProjects(c *gin.Context) {
	limit, offset := pagination(c)
	projects, err := h.projectRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, projects)
}

// GetProject returns one project
func (h *Handlers) GetProject(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if project == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("project %d not found", id))
		return
	}
	ok(c, http.StatusOK, project)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateProjectStatus runs the lifecycle workflow for a status change.
// The typed engine result maps onto response codes: rejected transitions
// come back as 409, missing projects as 404.
func (h *Handlers) UpdateProjectStatus(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if project == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("project %d not found", id))
		return
	}

	res := h.engine.OnProjectStatusChange(c.Request.Context(), id,
		lifecycle.State(project.Status), lifecycle.State(req.Status))

	switch res.Outcome {
	case workflow.OutcomeApplied:
		ok(c, http.StatusOK, gin.H{"project_id": id, "status": req.Status})
	case workflow.OutcomeRejected:
		fail(c, http.StatusConflict, fmt.Errorf("transition rejected: %s", res.Reason))
	case workflow.OutcomeSkipped:
		fail(c, http.StatusNotFound, fmt.Errorf("nothing to apply: %s", res.Reason))
	default:
		fail(c, http.StatusInternalServerError, fmt.Errorf("%s: %v", res.Reason, res.Err))
	}
}

// ListProjectMilestones returns a project's milestones in order
func (h *Handlers) ListProjectMilestones(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	milestones, err := h.milestoneRepo.ListByProject(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, milestones)
}

// ListProjectFiles returns a project's file records
func (h *Handlers) ListProjectFiles(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	files, err := h.fileRepo.ListByProject(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, files)
}

// Milestones

// CompleteMilestone marks a milestone completed and dispatches the
// completion event for the workflow engine.
func (h *Handlers) CompleteMilestone(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	ctx := c.Request.Context()
	milestone, err := h.milestoneRepo.GetByID(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if milestone == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("milestone %d not found", id))
		return
	}
	if milestone.Status == entity.MilestoneStatusCompleted {
		fail(c, http.StatusConflict, fmt.Errorf("milestone %d already completed", id))
		return
	}

	if err := h.milestoneRepo.MarkCompleted(ctx, id, time.Now()); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	if err := h.events.Dispatch(ctx, event.New(event.TypeMilestoneCompleted, id, nil)); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"milestone_id": id, "status": entity.MilestoneStatusCompleted})
}

// Invoices

type lineItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity"`
	RateCents   int64  `json:"rate_cents"`
}

type createInvoiceRequest struct {
	ProjectID int64             `json:"project_id" binding:"required"`
	Status    string            `json:"status"`
	TaxCents  *int64            `json:"tax_cents"`
	DueDate   *time.Time        `json:"due_date"`
	LineItems []lineItemRequest `json:"line_items" binding:"required,min=1"`
}

// CreateInvoice creates a manual invoice from line items and dispatches
// the created event. Amounts are derived from the line items.
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	project, err := h.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if project == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("project %d not found", req.ProjectID))
		return
	}

	status := req.Status
	if status == "" {
		status = entity.InvoiceStatusDraft
	}
	if status != entity.InvoiceStatusDraft && status != entity.InvoiceStatusSent {
		fail(c, http.StatusBadRequest, fmt.Errorf("new invoices must be draft or sent, got %q", status))
		return
	}

	var amount int64
	items := make([]entity.InvoiceLineItem, 0, len(req.LineItems))
	for i, item := range req.LineItems {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		lineAmount := int64(quantity) * item.RateCents
		amount += lineAmount
		items = append(items, entity.InvoiceLineItem{
			Description: item.Description,
			Quantity:    quantity,
			RateCents:   item.RateCents,
			AmountCents: lineAmount,
			SortOrder:   i + 1,
		})
	}

	var tax int64
	if req.TaxCents != nil {
		tax = *req.TaxCents
	}

	invoice := &entity.Invoice{
		ProjectID:     req.ProjectID,
		ClientID:      project.ClientID,
		InvoiceNumber: newInvoiceNumber(),
		Status:        status,
		AmountCents:   amount,
		TaxCents:      tax,
		TotalCents:    amount + tax,
		DueDate:       req.DueDate,
		LineItems:     items,
	}
	if err := h.invoiceRepo.Create(ctx, invoice); err != nil {
		// One retry with a fresh number covers the collision window.
		invoice.InvoiceNumber = newInvoiceNumber()
		if err := h.invoiceRepo.Create(ctx, invoice); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
	}

	if err := h.events.Dispatch(ctx, event.New(event.TypeInvoiceCreated, invoice.ID, nil)); err != nil {
		h.logger.Warn("Invoice created event failed", zap.Int64("invoice_id", invoice.ID), zap.Error(err))
	}
	ok(c, http.StatusCreated, invoice)
}

// ListInvoices returns invoices newest first
func (h *Handlers) ListInvoices(c *gin.Context) {
	limit, offset := pagination(c)
	invoices, err := h.invoiceRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, invoices)
}

// GetInvoice returns one invoice with its line items
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	invoice, err := h.invoiceRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if invoice == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("invoice %d not found", id))
		return
	}
	ok(c, http.StatusOK, invoice)
}

// SendInvoice moves a draft invoice to sent and dispatches the created
// event so the client gets notified.
func (h *Handlers) SendInvoice(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	ctx := c.Request.Context()
	invoice, err := h.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if invoice == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("invoice %d not found", id))
		return
	}
	if invoice.Status != entity.InvoiceStatusDraft {
		fail(c, http.StatusConflict, fmt.Errorf("only draft invoices can be sent, invoice is %s", invoice.Status))
		return
	}

	if err := h.invoiceRepo.UpdateStatus(ctx, id, entity.InvoiceStatusSent); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	if err := h.events.Dispatch(ctx, event.New(event.TypeInvoiceCreated, id, nil)); err != nil {
		h.logger.Warn("Invoice sent event failed", zap.Int64("invoice_id", id), zap.Error(err))
	}
	ok(c, http.StatusOK, gin.H{"invoice_id": id, "status": entity.InvoiceStatusSent})
}

// Payments

type createPaymentRequest struct {
	InvoiceID   int64  `json:"invoice_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Status      string `json:"status"`
	Method      string `json:"method"`
}

// CreatePayment records a payment and dispatches the received event,
// which settles the invoice when completed payments cover its total.
func (h *Handlers) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	invoice, err := h.invoiceRepo.GetByID(ctx, req.InvoiceID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if invoice == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("invoice %d not found", req.InvoiceID))
		return
	}

	status := req.Status
	if status == "" {
		status = entity.PaymentStatusCompleted
	}

	payment := &entity.Payment{
		InvoiceID:   req.InvoiceID,
		AmountCents: req.AmountCents,
		Status:      status,
		Method:      req.Method,
	}
	if err := h.paymentRepo.Create(ctx, payment); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	if err := h.events.Dispatch(ctx, event.New(event.TypePaymentReceived, payment.ID, nil)); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusCreated, payment)
}

// Files

type createFileRequest struct {
	ProjectID  int64  `json:"project_id" binding:"required"`
	FileName   string `json:"file_name" binding:"required"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	UploadedBy string `json:"uploaded_by"`
	IsPublic   bool   `json:"is_public"`
}

// CreateFile records file metadata and dispatches the upload event
func (h *Handlers) CreateFile(c *gin.Context) {
	var req createFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	uploadedBy := req.UploadedBy
	if uploadedBy == "" {
		uploadedBy = entity.FileUploadedByAdmin
	}
	if uploadedBy != entity.FileUploadedByAdmin && uploadedBy != entity.FileUploadedByClient {
		fail(c, http.StatusBadRequest, fmt.Errorf("uploaded_by must be admin or client, got %q", uploadedBy))
		return
	}

	ctx := c.Request.Context()
	file := &entity.ProjectFile{
		ProjectID:  req.ProjectID,
		FileName:   req.FileName,
		FilePath:   req.FilePath,
		FileSize:   req.FileSize,
		UploadedBy: uploadedBy,
		IsPublic:   req.IsPublic,
	}
	if err := h.fileRepo.Create(ctx, file); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	evt := event.New(event.TypeFileUploaded, file.ID, map[string]any{"uploaded_by": uploadedBy})
	if err := h.events.Dispatch(ctx, evt); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusCreated, file)
}

// Notifications

// ListNotifications returns a client's notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Query("client_id"), 10, 64)
	if err != nil || clientID <= 0 {
		fail(c, http.StatusBadRequest, fmt.Errorf("client_id query parameter is required"))
		return
	}
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notificationRepo.ListByClient(c.Request.Context(), clientID, unreadOnly)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, notifications)
}

// MarkNotificationRead flips one notification to read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	if err := h.notificationRepo.MarkRead(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"notification_id": id, "read": true})
}

// Packages

// ListPackages returns the price/feature bundles
func (h *Handlers) ListPackages(c *gin.Context) {
	packages, err := h.packageRepo.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusOK, packages)
}

// Reports

// ExportInvoices streams the invoice list as an xlsx workbook
func (h *Handlers) ExportInvoices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))
	if limit <= 0 || limit > 5000 {
		limit = 500
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)

	if err := h.exporter.WriteReport(c.Request.Context(), c.Writer, limit); err != nil {
		h.logger.Error("Invoice export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// newInvoiceNumber builds a manual invoice number in the same format the
// workflow engine uses for auto-generated ones.
func newInvoiceNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), fragment)
}
