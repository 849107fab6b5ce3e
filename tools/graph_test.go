package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path string
	Auth string
	Body map[string]any
}

func newGraphServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		got = append(got, capturedRequest{Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestGraphClient_SendDirectMessage(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK, `{"recipient_id":"u1","message_id":"m"}`)
	c := NewGraphClient(srv.URL, "", time.Second)

	require.NoError(t, c.SendDirectMessage(context.Background(), "tok", "u1", "hello"))
	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, "/v22.0/me/messages", req.Path)
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.Equal(t, map[string]any{"id": "u1"}, req.Body["recipient"])
	assert.Equal(t, map[string]any{"text": "hello"}, req.Body["message"])
}

func TestGraphClient_ReplyToComment(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK, `{"id":"r1"}`)
	c := NewGraphClient(srv.URL, "v21.0", time.Second)

	require.NoError(t, c.ReplyToComment(context.Background(), "tok", "c1", "thanks"))
	assert.Equal(t, "/v21.0/c1/replies", (*got)[0].Path)
	assert.Equal(t, "thanks", (*got)[0].Body["message"])

	assert.Error(t, c.ReplyToComment(context.Background(), "tok", " ", "x"))
	assert.Len(t, *got, 1)
}

func TestGraphClient_ErrorStatus(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusBadRequest, `{"error":{"message":"bad"}}`)
	c := NewGraphClient(srv.URL, "", time.Second)

	err := c.SendDirectMessage(context.Background(), "tok", "u1", "x")
	var apiErr GraphAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad")
}

func TestGraphClient_SubscribeWebhookFields(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK, `{"success":true}`)
	c := NewGraphClient(srv.URL, "", time.Second)

	require.NoError(t, c.SubscribeWebhookFields(context.Background(), "page-tok", "p1", []string{"comments", "messages"}))
	assert.Equal(t, "/v22.0/p1/subscribed_apps", (*got)[0].Path)
	assert.Equal(t, "comments,messages", (*got)[0].Body["subscribed_fields"])

	failing, _ := newGraphServer(t, http.StatusOK, `{"success":false}`)
	c = NewGraphClient(failing.URL, "", time.Second)
	assert.Error(t, c.SubscribeWebhookFields(context.Background(), "page-tok", "p1", []string{"comments"}))
}

func TestGraphClient_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)
	c := NewGraphClient(srv.URL, "", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.SendDirectMessage(ctx, "tok", "u1", "x"))
}
