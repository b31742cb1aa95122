package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() Notification {
	return Notification{
		Kind:      KindResolved,
		Recipient: Recipient{Email: "kasun.perera@example.lk"},
		Subject:   "CL-20250610-A1B2C3",
		Payload:   map[string]string{"title": "Broken water main"},
	}
}

func TestWebhookSenderDeliver(t *testing.T) {
	t.Run("posts the rendered notification", func(t *testing.T) {
		var got webhookPayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		sender := NewWebhookSender(server.URL, slog.New(slog.DiscardHandler))
		require.NoError(t, sender.Deliver(context.Background(), testNotification()))

		assert.Equal(t, "RESOLVED", got.Kind)
		assert.Equal(t, "CL-20250610-A1B2C3", got.TrackingNumber)
		assert.NotEmpty(t, got.Subject)
		assert.NotEmpty(t, got.Body)
		assert.Equal(t, "Broken water main", got.Payload["title"])
		assert.WithinDuration(t, time.Now().UTC(), got.SentAt, time.Minute)
	})

	t.Run("reports endpoint error statuses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		sender := NewWebhookSender(server.URL, slog.New(slog.DiscardHandler))
		err := sender.Deliver(context.Background(), testNotification())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}

func TestWebhookSenderCircuit(t *testing.T) {
	t.Run("opens after consecutive failures and closes on recovery", func(t *testing.T) {
		var healthy atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if healthy.Load() {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		sender := NewWebhookSender(server.URL, slog.New(slog.DiscardHandler))
		ctx := context.Background()

		for range 5 {
			require.Error(t, sender.Deliver(ctx, testNotification()))
		}
		assert.True(t, sender.breaker.IsOpen())

		// Open-circuit deliveries still probe the endpoint; once it is
		// healthy again, successes close the circuit.
		healthy.Store(true)
		for range 3 {
			require.NoError(t, sender.Deliver(ctx, testNotification()))
		}
		assert.False(t, sender.breaker.IsOpen())
	})

	t.Run("a lone failure does not trip the circuit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		sender := NewWebhookSender(server.URL, slog.New(slog.DiscardHandler))
		require.Error(t, sender.Deliver(context.Background(), testNotification()))

		assert.False(t, sender.breaker.IsOpen())
	})
}
