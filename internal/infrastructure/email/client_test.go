package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.EmailConfig{
		APIBaseURL:   server.URL,
		APIKey:       "test-key",
		FromAddress:  "onboarding@pixelpine.dev",
		FromName:     "Pixel & Pine Studio",
		AdminAddress: "hello@pixelpine.dev",
		Timeout:      2 * time.Second,
	}, zap.NewNop())
}

func TestSendContactConfirmation(t *testing.T) {
	var got sendRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-123"})
	})

	res := client.SendContactConfirmation(context.Background(), "ada@example.com", "Ada")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "msg-123", res.MessageID)
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Pixel & Pine Studio <onboarding@pixelpine.dev>", got.From)
	assert.Contains(t, got.HTML, "Ada")
}

func TestSendAdminAlertGoesToAdminAddress(t *testing.T) {
	var got sendRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
	})

	res := client.SendAdminAlert(context.Background(), "Ada", "ada@example.com", "Need a site")
	require.True(t, res.Success)
	assert.Equal(t, []string{"hello@pixelpine.dev"}, got.To)
	assert.Contains(t, got.HTML, "ada@example.com")
}

func TestSendClientInvitationCarriesCredentials(t *testing.T) {
	var got sendRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
	})

	res := client.SendClientInvitation(context.Background(), "ada@example.com", "Ada", "temp123pass", "https://portal.pixelpine.dev/login")
	require.True(t, res.Success)
	assert.Contains(t, got.HTML, "temp123pass")
	assert.Contains(t, got.HTML, "https://portal.pixelpine.dev/login")
}

func TestSendReturnsStructuredFailureOnProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid recipient"})
	})

	res := client.SendContactConfirmation(context.Background(), "not-an-email", "Ada")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "422")
	assert.Contains(t, res.Error, "invalid recipient")
}

func TestSendReturnsStructuredFailureOnNetworkError(t *testing.T) {
	client := NewClient(config.EmailConfig{
		APIBaseURL:  "http://127.0.0.1:1",
		APIKey:      "test-key",
		FromAddress: "onboarding@pixelpine.dev",
		FromName:    "Pixel & Pine Studio",
		Timeout:     200 * time.Millisecond,
	}, zap.NewNop())

	res := client.SendContactConfirmation(context.Background(), "ada@example.com", "Ada")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}
