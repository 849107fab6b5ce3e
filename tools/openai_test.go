package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, status int, reply string, captured *openai.ChatCompletionRequest) *OpenAIReplier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAIReplierWithConfig(cfg, "")
}

func TestOpenAIReplier_GenerateReply(t *testing.T) {
	var req openai.ChatCompletionRequest
	r := newOpenAIServer(t, http.StatusOK, "  We open at 9am.  ", &req)

	text, err := r.GenerateReply(context.Background(), "customer support", "a bakery in Lisbon", "when do you open?")
	require.NoError(t, err)
	assert.Equal(t, "We open at 9am.", text)

	assert.Equal(t, DefaultOpenAIModel, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "You are an AI assistant designed to help with customer support. Use this context: a bakery in Lisbon", req.Messages[0].Content)
	assert.Equal(t, "when do you open?", req.Messages[1].Content)
}

func TestOpenAIReplier_Error(t *testing.T) {
	r := newOpenAIServer(t, http.StatusTooManyRequests, "", nil)

	_, err := r.GenerateReply(context.Background(), "t", "c", "u")
	assert.Error(t, err)
}
