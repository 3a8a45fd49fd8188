package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWebhookCourierDeliver(t *testing.T) {
	var got Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer gateway-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	courier := NewWebhookCourier(server.URL, "gateway-token", time.Second)
	err := courier.Deliver(context.Background(), Message{
		RecipientID: "handler-1",
		Text:        "Request #1 assigned to you",
	})
	require.NoError(t, err)
	require.Equal(t, "handler-1", got.RecipientID)
}

func TestWebhookCourierRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	courier := NewWebhookCourier(server.URL, "", time.Second)
	err := courier.Deliver(context.Background(), Message{RecipientID: "chief-1", Text: "x"})
	require.Error(t, err)
}
