package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/domain/entity"
)

type stubClientRepo struct {
	clients map[int64]*entity.Client
}

func (s *stubClientRepo) Create(ctx context.Context, client *entity.Client) error {
	s.clients[client.ID] = client
	return nil
}

func (s *stubClientRepo) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	return s.clients[id], nil
}

func (s *stubClientRepo) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	for _, c := range s.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	return nil, nil
}

func (s *stubClientRepo) Update(ctx context.Context, client *entity.Client) error { return nil }

func (s *stubClientRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}

func (s *stubClientRepo) Delete(ctx context.Context, id int64) error { return nil }

type stubNotificationRepo struct {
	nextID        int64
	notifications []*entity.Notification
}

func (s *stubNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	s.nextID++
	n.ID = s.nextID
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *stubNotificationRepo) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	for _, n := range s.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (s *stubNotificationRepo) ListByClient(ctx context.Context, clientID int64, unreadOnly bool) ([]*entity.Notification, error) {
	return nil, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id int64) error { return nil }

func (s *stubNotificationRepo) MarkEmailSent(ctx context.Context, id int64, sentAt time.Time) error {
	for _, n := range s.notifications {
		if n.ID == id {
			n.SentViaEmail = true
			n.EmailSentAt = &sentAt
			return nil
		}
	}
	return nil
}

func (s *stubNotificationRepo) MarkSMSSent(ctx context.Context, id int64, sentAt time.Time) error {
	for _, n := range s.notifications {
		if n.ID == id {
			n.SentViaSMS = true
			n.SMSSentAt = &sentAt
			return nil
		}
	}
	return nil
}

type stubCommRepo struct {
	rows []*entity.ClientCommunication
}

func (s *stubCommRepo) Create(ctx context.Context, comm *entity.ClientCommunication) error {
	s.rows = append(s.rows, comm)
	return nil
}

func (s *stubCommRepo) ListByClient(ctx context.Context, clientID int64) ([]*entity.ClientCommunication, error) {
	return s.rows, nil
}

func (s *stubCommRepo) outboundEmails(clientID int64) []*entity.ClientCommunication {
	var result []*entity.ClientCommunication
	for _, row := range s.rows {
		if row.ClientID == clientID && row.Type == entity.CommunicationTypeEmail && row.Direction == entity.DirectionOutbound {
			result = append(result, row)
		}
	}
	return result
}

func newServiceUnderTest(clients ...*entity.Client) (*NotificationService, *stubNotificationRepo, *stubCommRepo) {
	clientRepo := &stubClientRepo{clients: make(map[int64]*entity.Client)}
	for _, c := range clients {
		clientRepo.clients[c.ID] = c
	}
	notificationRepo := &stubNotificationRepo{}
	commRepo := &stubCommRepo{}
	svc := NewNotificationService(clientRepo, notificationRepo, commRepo, zap.NewNop())
	return svc, notificationRepo, commRepo
}

func TestNotifyWithEmailEnabled(t *testing.T) {
	svc, notifications, comms := newServiceUnderTest(&entity.Client{
		ID: 1, Name: "Ada", Email: "ada@example.com", EmailNotifications: true,
	})

	err := svc.NotifyProjectReview(context.Background(), 1, 42, "Bakery Redesign")
	require.NoError(t, err)

	require.Len(t, notifications.notifications, 1)
	n := notifications.notifications[0]
	assert.Equal(t, entity.NotificationTypeProjectReview, n.Type)
	assert.Equal(t, entity.PriorityHigh, n.Priority)
	assert.False(t, n.Read)
	assert.True(t, n.SentViaEmail)
	assert.NotNil(t, n.EmailSentAt)
	require.NotNil(t, n.ProjectID)
	assert.Equal(t, int64(42), *n.ProjectID)

	rows := comms.outboundEmails(1)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Subject, "Bakery Redesign")
}

func TestDisabledEmailPreferenceBlocksOutboundRows(t *testing.T) {
	svc, notifications, comms := newServiceUnderTest(&entity.Client{
		ID: 1, Name: "Ada", Email: "ada@example.com", EmailNotifications: false,
	})
	ctx := context.Background()

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.NotifyProjectUpdate(ctx, 1, 42, "Bakery Redesign", "planning", "in_progress"))
	require.NoError(t, svc.NotifyInvoiceSent(ctx, 1, 7, "INV-20260315-ABCD1234", 271250, &due))
	require.NoError(t, svc.NotifyPaymentReceived(ctx, 1, 7, "INV-20260315-ABCD1234", 271250))

	// In-app notifications still land; no outbound email row may exist.
	assert.Len(t, notifications.notifications, 3)
	assert.Empty(t, comms.outboundEmails(1))
	for _, n := range notifications.notifications {
		assert.False(t, n.SentViaEmail)
		assert.Nil(t, n.EmailSentAt)
	}
}

func TestSendEmailNotificationGates(t *testing.T) {
	svc, _, comms := newServiceUnderTest(
		&entity.Client{ID: 1, Email: "on@example.com", EmailNotifications: true},
		&entity.Client{ID: 2, Email: "", EmailNotifications: true},
	)
	ctx := context.Background()

	sent, err := svc.SendEmailNotification(ctx, 1, "subject", "body", nil)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = svc.SendEmailNotification(ctx, 2, "subject", "body", nil)
	require.NoError(t, err)
	assert.False(t, sent, "client without email address must be skipped")

	sent, err = svc.SendEmailNotification(ctx, 99, "subject", "body", nil)
	require.NoError(t, err)
	assert.False(t, sent, "unknown client must be skipped")

	assert.Len(t, comms.rows, 1)
}

func TestSendSMSNotificationGates(t *testing.T) {
	svc, notifications, comms := newServiceUnderTest(
		&entity.Client{ID: 1, Phone: "+15550100", SMSNotifications: true},
		&entity.Client{ID: 2, Phone: "", SMSNotifications: true},
		&entity.Client{ID: 3, Phone: "+15550101", SMSNotifications: false},
	)
	ctx := context.Background()

	created, err := svc.CreateNotification(ctx, NotificationData{ClientID: 1, Type: entity.NotificationTypeProjectUpdate, Title: "t", Message: "m"})
	require.NoError(t, err)

	sent, err := svc.SendSMSNotification(ctx, 1, "your project moved forward", &created.ID)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.True(t, notifications.notifications[0].SentViaSMS)

	sent, err = svc.SendSMSNotification(ctx, 2, "msg", nil)
	require.NoError(t, err)
	assert.False(t, sent, "client without phone must be skipped")

	sent, err = svc.SendSMSNotification(ctx, 3, "msg", nil)
	require.NoError(t, err)
	assert.False(t, sent, "sms-disabled client must be skipped")

	require.Len(t, comms.rows, 1)
	assert.Equal(t, entity.CommunicationTypeSMS, comms.rows[0].Type)
	assert.Equal(t, entity.DirectionOutbound, comms.rows[0].Direction)
}

func TestFileSharedIsInAppOnly(t *testing.T) {
	svc, notifications, comms := newServiceUnderTest(&entity.Client{
		ID: 1, Email: "ada@example.com", EmailNotifications: true,
	})

	err := svc.NotifyFileShared(context.Background(), 1, 42, 9, "homepage-mockup.png")
	require.NoError(t, err)

	require.Len(t, notifications.notifications, 1)
	n := notifications.notifications[0]
	assert.Equal(t, entity.NotificationTypeFileShared, n.Type)
	assert.Equal(t, entity.PriorityLow, n.Priority)
	assert.False(t, n.SentViaEmail)
	assert.Empty(t, comms.rows, "file-shared must not email even when the channel is enabled")
}

func TestCreateNotificationDefaultsPriority(t *testing.T) {
	svc, notifications, _ := newServiceUnderTest()

	_, err := svc.CreateNotification(context.Background(), NotificationData{
		ClientID: 1, Type: entity.NotificationTypeProjectUpdate, Title: "t", Message: "m",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityNormal, notifications.notifications[0].Priority)
}
