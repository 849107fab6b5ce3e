package engine

import "fmt"

type EventKind string

const (
	KindComment EventKind = "comment"
	KindMessage EventKind = "message"
)

// CommentEvent is a new comment left on one of the tenant's posts.
type CommentEvent struct {
	ID           string
	Text         string
	ActorID      string
	MediaID      string
	MediaOwnerID string
	// AccountID is the platform account the webhook entry was delivered for.
	AccountID string
}

// MessageEvent is a direct message sent to the tenant's account.
type MessageEvent struct {
	MessageID   string
	SenderID    string
	RecipientID string
	Text        string
	AccountID   string
}

// InboundEvent holds exactly one of Comment or Message.
type InboundEvent struct {
	Kind    EventKind
	Comment *CommentEvent
	Message *MessageEvent
}

func NewCommentEvent(ev CommentEvent) InboundEvent {
	return InboundEvent{Kind: KindComment, Comment: &ev}
}

func NewMessageEvent(ev MessageEvent) InboundEvent {
	return InboundEvent{Kind: KindMessage, Message: &ev}
}

func (e InboundEvent) Validate() error {
	switch {
	case e.Comment != nil && e.Message != nil:
		return ValidationError("event has both comment and message", nil)
	case e.Kind == KindComment && e.Comment != nil:
		return nil
	case e.Kind == KindMessage && e.Message != nil:
		return nil
	}
	return ValidationError(fmt.Sprintf("event kind %q has no matching payload", e.Kind), nil)
}

// Key identifies the event across webhook redeliveries. Empty when the
// platform did not provide an id.
func (e InboundEvent) Key() string {
	switch {
	case e.Comment != nil && e.Comment.ID != "":
		return "comment:" + e.Comment.ID
	case e.Message != nil && e.Message.MessageID != "":
		return "message:" + e.Message.MessageID
	}
	return ""
}

// Text returns the event text; never fails for a valid event.
func (e InboundEvent) Text() string {
	if e.Comment != nil {
		return e.Comment.Text
	}
	if e.Message != nil {
		return e.Message.Text
	}
	return ""
}
