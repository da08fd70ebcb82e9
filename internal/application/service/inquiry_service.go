package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
)

// InquiryService handles leads from the marketing site contact form and
// their conversion into portal clients.
type InquiryService struct {
	inquiryRepo port.InquiryRepository
	clientRepo  port.ClientRepository
	emailSender port.EmailSender
	loginURL    string
	logger      *zap.Logger
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(
	inquiryRepo port.InquiryRepository,
	clientRepo port.ClientRepository,
	emailSender port.EmailSender,
	loginURL string,
	logger *zap.Logger,
) *InquiryService {
	return &InquiryService{
		inquiryRepo: inquiryRepo,
		clientRepo:  clientRepo,
		emailSender: emailSender,
		loginURL:    loginURL,
		logger:      logger,
	}
}

// CreateInquiry persists a new lead and sends the confirmation and admin
// alert emails. Email failures are logged, not returned; the lead is
// already saved.
func (s *InquiryService) CreateInquiry(ctx context.Context, inquiry *entity.Inquiry) error {
	inquiry.Status = entity.InquiryStatusNew
	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return fmt.Errorf("create inquiry: %w", err)
	}

	if res := s.emailSender.SendContactConfirmation(ctx, inquiry.Email, inquiry.Name); !res.Success {
		s.logger.Warn("Contact confirmation email failed",
			zap.Int64("inquiry_id", inquiry.ID),
			zap.String("error", res.Error))
	}
	if res := s.emailSender.SendAdminAlert(ctx, inquiry.Name, inquiry.Email, inquiry.Message); !res.Success {
		s.logger.Warn("Admin alert email failed",
			zap.Int64("inquiry_id", inquiry.ID),
			zap.String("error", res.Error))
	}

	return nil
}

// ListInquiries returns leads newest first
func (s *InquiryService) ListInquiries(ctx context.Context, limit, offset int) ([]*entity.Inquiry, error) {
	return s.inquiryRepo.List(ctx, limit, offset)
}

// ConvertInquiry turns a lead into an active client with a temporary
// portal password and marks the inquiry converted. Fails when a client
// with the lead's email already exists.
func (s *InquiryService) ConvertInquiry(ctx context.Context, inquiryID int64) (*entity.Client, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("load inquiry: %w", err)
	}
	if inquiry == nil {
		return nil, fmt.Errorf("inquiry %d not found", inquiryID)
	}
	if inquiry.Status == entity.InquiryStatusConverted {
		return nil, fmt.Errorf("inquiry %d already converted", inquiryID)
	}

	existing, err := s.clientRepo.GetByEmail(ctx, inquiry.Email)
	if err != nil {
		return nil, fmt.Errorf("look up client: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("client with email %s already exists", inquiry.Email)
	}

	client := &entity.Client{
		Name:               inquiry.Name,
		Email:              inquiry.Email,
		Phone:              inquiry.Phone,
		Company:            inquiry.Company,
		Status:             entity.ClientStatusActive,
		EmailNotifications: true,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	if err := s.inquiryRepo.UpdateStatus(ctx, inquiryID, entity.InquiryStatusConverted); err != nil {
		return nil, fmt.Errorf("mark inquiry converted: %w", err)
	}

	tempPassword := newTempPassword()
	if res := s.emailSender.SendClientInvitation(ctx, client.Email, client.Name, tempPassword, s.loginURL); !res.Success {
		s.logger.Warn("Client invitation email failed",
			zap.Int64("client_id", client.ID),
			zap.String("error", res.Error))
	}

	s.logger.Info("Inquiry converted to client",
		zap.Int64("inquiry_id", inquiryID),
		zap.Int64("client_id", client.ID))
	return client, nil
}

func newTempPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
