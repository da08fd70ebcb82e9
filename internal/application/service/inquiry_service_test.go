package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
)

type stubInquiryRepo struct {
	nextID    int64
	inquiries map[int64]*entity.Inquiry
}

func newStubInquiryRepo() *stubInquiryRepo {
	return &stubInquiryRepo{inquiries: make(map[int64]*entity.Inquiry)}
}

func (s *stubInquiryRepo) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	s.nextID++
	inquiry.ID = s.nextID
	s.inquiries[inquiry.ID] = inquiry
	return nil
}

func (s *stubInquiryRepo) GetByID(ctx context.Context, id int64) (*entity.Inquiry, error) {
	return s.inquiries[id], nil
}

func (s *stubInquiryRepo) List(ctx context.Context, limit, offset int) ([]*entity.Inquiry, error) {
	return nil, nil
}

func (s *stubInquiryRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if inq, ok := s.inquiries[id]; ok {
		inq.Status = status
	}
	return nil
}

type stubEmailSender struct {
	confirmations []string
	alerts        []string
	invitations   []string
	failAll       bool
}

func (s *stubEmailSender) result() *port.SendResult {
	if s.failAll {
		return &port.SendResult{Success: false, Error: "provider unavailable"}
	}
	return &port.SendResult{Success: true, MessageID: "msg-1"}
}

func (s *stubEmailSender) SendContactConfirmation(ctx context.Context, toEmail, toName string) *port.SendResult {
	s.confirmations = append(s.confirmations, toEmail)
	return s.result()
}

func (s *stubEmailSender) SendAdminAlert(ctx context.Context, inquiryName, inquiryEmail, message string) *port.SendResult {
	s.alerts = append(s.alerts, inquiryEmail)
	return s.result()
}

func (s *stubEmailSender) SendClientInvitation(ctx context.Context, toEmail, toName, tempPassword, loginURL string) *port.SendResult {
	s.invitations = append(s.invitations, toEmail)
	return s.result()
}

func TestCreateInquirySendsConfirmationAndAlert(t *testing.T) {
	inquiries := newStubInquiryRepo()
	emails := &stubEmailSender{}
	svc := NewInquiryService(inquiries, &stubClientRepo{clients: map[int64]*entity.Client{}}, emails, "https://portal.example.com/login", zap.NewNop())

	inquiry := &entity.Inquiry{Name: "Ada", Email: "ada@example.com", Message: "Need a new site"}
	require.NoError(t, svc.CreateInquiry(context.Background(), inquiry))

	assert.Equal(t, entity.InquiryStatusNew, inquiry.Status)
	assert.Equal(t, []string{"ada@example.com"}, emails.confirmations)
	assert.Equal(t, []string{"ada@example.com"}, emails.alerts)
}

func TestCreateInquirySurvivesEmailFailure(t *testing.T) {
	inquiries := newStubInquiryRepo()
	emails := &stubEmailSender{failAll: true}
	svc := NewInquiryService(inquiries, &stubClientRepo{clients: map[int64]*entity.Client{}}, emails, "", zap.NewNop())

	err := svc.CreateInquiry(context.Background(), &entity.Inquiry{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err, "email failure must not fail lead capture")
	assert.Len(t, inquiries.inquiries, 1)
}

func TestConvertInquiryCreatesClientAndInvites(t *testing.T) {
	inquiries := newStubInquiryRepo()
	clients := &stubClientRepo{clients: map[int64]*entity.Client{}}
	emails := &stubEmailSender{}
	svc := NewInquiryService(inquiries, clients, emails, "https://portal.example.com/login", zap.NewNop())
	ctx := context.Background()

	inquiry := &entity.Inquiry{Name: "Ada", Email: "ada@example.com", Phone: "+15550100", Company: "Ada LLC", Status: entity.InquiryStatusNew}
	require.NoError(t, inquiries.Create(ctx, inquiry))

	client, err := svc.ConvertInquiry(ctx, inquiry.ID)
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, "ada@example.com", client.Email)
	assert.Equal(t, entity.ClientStatusActive, client.Status)
	assert.True(t, client.EmailNotifications, "converted clients start with email enabled")
	assert.Equal(t, entity.InquiryStatusConverted, inquiry.Status)
	assert.Equal(t, []string{"ada@example.com"}, emails.invitations)
}

func TestConvertInquiryRejectsDuplicatesAndMissing(t *testing.T) {
	inquiries := newStubInquiryRepo()
	clients := &stubClientRepo{clients: map[int64]*entity.Client{
		1: {ID: 1, Email: "ada@example.com"},
	}}
	svc := NewInquiryService(inquiries, clients, &stubEmailSender{}, "", zap.NewNop())
	ctx := context.Background()

	inquiry := &entity.Inquiry{Name: "Ada", Email: "ada@example.com", Status: entity.InquiryStatusNew}
	require.NoError(t, inquiries.Create(ctx, inquiry))

	_, err := svc.ConvertInquiry(ctx, inquiry.ID)
	assert.ErrorContains(t, err, "already exists")

	_, err = svc.ConvertInquiry(ctx, 999)
	assert.ErrorContains(t, err, "not found")

	inquiry.Status = entity.InquiryStatusConverted
	_, err = svc.ConvertInquiry(ctx, inquiry.ID)
	assert.ErrorContains(t, err, "already converted")
}
