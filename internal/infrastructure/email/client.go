package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/config"
)

// Client sends transactional email through a Resend-style JSON API.
// Every method returns a SendResult rather than an error: email delivery
// is never allowed to fail the operation that triggered it.
type Client struct {
	baseURL      string
	apiKey       string
	from         string
	adminAddress string
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ port.EmailSender = (*Client)(nil)

// NewClient creates a new email client from resolved configuration
func NewClient(cfg config.EmailConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      cfg.APIBaseURL,
		apiKey:       cfg.APIKey,
		from:         fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		adminAddress: cfg.AdminAddress,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// send posts one email to the provider and converts the outcome into a
// SendResult. Network and provider failures are logged here.
func (c *Client) send(ctx context.Context, to []string, subject, html string) *port.SendResult {
	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return &port.SendResult{Error: fmt.Sprintf("encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return &port.SendResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Email provider request failed",
			zap.Strings("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return &port.SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var decoded sendResponse
	_ = json.Unmarshal(payload, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := decoded.Message
		if message == "" {
			message = resp.Status
		}
		c.logger.Warn("Email provider rejected send",
			zap.Strings("to", to),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return &port.SendResult{Error: fmt.Sprintf("provider returned %d: %s", resp.StatusCode, message)}
	}

	c.logger.Info("Email sent",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.String("message_id", decoded.ID))
	return &port.SendResult{Success: true, MessageID: decoded.ID}
}

// SendContactConfirmation thanks an inquiry submitter
func (c *Client) SendContactConfirmation(ctx context.Context, toEmail, toName string) *port.SendResult {
	subject := "Thanks for reaching out!"
	html := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thanks for getting in touch with Pixel &amp; Pine Studio. We received your
		message and will get back to you within one business day.</p>
		<p>Talk soon,<br>The Pixel &amp; Pine team</p>`, toName)
	return c.send(ctx, []string{toEmail}, subject, html)
}

// SendAdminAlert notifies the operator address about a new inquiry
func (c *Client) SendAdminAlert(ctx context.Context, inquiryName, inquiryEmail, message string) *port.SendResult {
	subject := fmt.Sprintf("New inquiry from %s", inquiryName)
	html := fmt.Sprintf(`
		<p><strong>New inquiry received.</strong></p>
		<p>Name: %s<br>Email: %s</p>
		<blockquote>%s</blockquote>`, inquiryName, inquiryEmail, message)
	return c.send(ctx, []string{c.adminAddress}, subject, html)
}

// SendClientInvitation sends portal credentials to a new client
func (c *Client) SendClientInvitation(ctx context.Context, toEmail, toName, tempPassword, loginURL string) *port.SendResult {
	subject := "Your Pixel & Pine client portal is ready"
	html := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Welcome aboard! Your client portal account has been created.</p>
		<p>Login: <a href="%s">%s</a><br>
		Temporary password: <code>%s</code></p>
		<p>Please change your password after your first login.</p>`, toName, loginURL, loginURL, tempPassword)
	return c.send(ctx, []string{toEmail}, subject, html)
}
