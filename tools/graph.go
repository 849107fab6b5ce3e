package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGraphBaseURL    = "https://graph.facebook.com"
	DefaultGraphApiVersion = "v22.0"
)

// GraphAPIError is a non-2xx answer from the Graph API.
type GraphAPIError struct {
	StatusCode int
	Body       string
}

func (e GraphAPIError) Error() string {
	return fmt.Sprintf("graph api error: status=%d body=%s", e.StatusCode, e.Body)
}

// GraphClient is a thin client for the Instagram messaging calls the
// automations make. The access token is passed per call since each tenant
// has its own.
type GraphClient struct {
	BaseURL    string
	ApiVersion string // e.g. v22.0
	HTTPClient *http.Client
}

func NewGraphClient(baseURL, apiVersion string, timeout time.Duration) *GraphClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GraphClient{
		BaseURL:    baseURL,
		ApiVersion: apiVersion,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *GraphClient) url(path string) string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultGraphBaseURL
	}
	apiVersion := strings.TrimSpace(c.ApiVersion)
	if apiVersion == "" {
		apiVersion = DefaultGraphApiVersion
	}
	return fmt.Sprintf("%s/%s/%s", base, apiVersion, strings.TrimPrefix(path, "/"))
}

func (c *GraphClient) post(ctx context.Context, token, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return GraphAPIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// SendDirectMessage sends a text message to an Instagram user.
func (c *GraphClient) SendDirectMessage(ctx context.Context, token, recipientID, text string) error {
	if strings.TrimSpace(recipientID) == "" {
		return fmt.Errorf("recipient id is required")
	}
	return c.post(ctx, token, "me/messages", map[string]any{
		"recipient": map[string]any{"id": recipientID},
		"message":   map[string]any{"text": text},
	}, nil)
}

// ReplyToComment posts a public reply under a comment.
func (c *GraphClient) ReplyToComment(ctx context.Context, token, commentID, text string) error {
	if strings.TrimSpace(commentID) == "" {
		return fmt.Errorf("comment id is required")
	}
	return c.post(ctx, token, strings.TrimSpace(commentID)+"/replies", map[string]any{
		"message": text,
	}, nil)
}

// SubscribeWebhookFields subscribes the app to webhook fields of a page.
// Example: /{page_id}/subscribed_apps
func (c *GraphClient) SubscribeWebhookFields(ctx context.Context, token, pageID string, fields []string) error {
	if strings.TrimSpace(pageID) == "" {
		return fmt.Errorf("page id is required")
	}
	var out struct {
		Success bool `json:"success"`
	}
	err := c.post(ctx, token, strings.TrimSpace(pageID)+"/subscribed_apps", map[string]any{
		"subscribed_fields": strings.Join(fields, ","),
	}, &out)
	if err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("subscribing page %s: graph api returned success=false", pageID)
	}
	return nil
}
