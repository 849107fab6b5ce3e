package engine

import (
	"encoding/json"
	"strings"
)

type rawComment struct {
	ID   string  `json:"id"`
	Text *string `json:"text"`
	Verb *string `json:"verb"`
	From struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
	Media struct {
		ID    string `json:"id"`
		Owner struct {
			ID string `json:"id"`
		} `json:"owner"`
	} `json:"media"`
}

type rawMessage struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message *struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

// NormalizeComment parses a "comments" change value. ok is false when the
// event must be dropped: a verb other than "created" (edits and deletes
// must not re-trigger automations).
func NormalizeComment(accountID string, raw json.RawMessage) (CommentEvent, bool, error) {
	var c rawComment
	if err := json.Unmarshal(raw, &c); err != nil {
		return CommentEvent{}, false, ValidationError("invalid comment payload", map[string]any{"error": err.Error()})
	}
	if c.Verb != nil && strings.TrimSpace(*c.Verb) != "created" {
		return CommentEvent{}, false, nil
	}

	ev := CommentEvent{
		ID:           strings.TrimSpace(c.ID),
		ActorID:      strings.TrimSpace(c.From.ID),
		MediaID:      strings.TrimSpace(c.Media.ID),
		MediaOwnerID: strings.TrimSpace(c.Media.Owner.ID),
		AccountID:    strings.TrimSpace(accountID),
	}
	if c.Text != nil {
		ev.Text = *c.Text
	}
	if ev.ID == "" {
		return CommentEvent{}, false, ValidationError("comment id is required", nil)
	}
	if ev.ActorID == "" {
		return CommentEvent{}, false, ValidationError("comment author is required", map[string]any{"comment_id": ev.ID})
	}
	return ev, true, nil
}

// NormalizeMessage parses a "messages" change value or a messaging item.
// Echoes of messages the account sent itself and non-text messages are
// dropped.
func NormalizeMessage(accountID string, raw json.RawMessage) (MessageEvent, bool, error) {
	var m rawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return MessageEvent{}, false, ValidationError("invalid message payload", map[string]any{"error": err.Error()})
	}
	if m.Message == nil {
		return MessageEvent{}, false, nil
	}
	if m.Message.IsEcho {
		return MessageEvent{}, false, nil
	}

	ev := MessageEvent{
		MessageID:   strings.TrimSpace(m.Message.MID),
		SenderID:    strings.TrimSpace(m.Sender.ID),
		RecipientID: strings.TrimSpace(m.Recipient.ID),
		Text:        m.Message.Text,
		AccountID:   strings.TrimSpace(accountID),
	}
	if ev.SenderID == "" {
		return MessageEvent{}, false, ValidationError("message sender is required", nil)
	}
	if strings.TrimSpace(ev.Text) == "" {
		return MessageEvent{}, false, nil
	}
	return ev, true, nil
}
