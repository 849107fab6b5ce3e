package models

import (
	"strings"
	"time"

	"commentflow/engine"
)

// ChatbotAutomation drives the AI conversation for a tenant: it answers
// direct messages and opens a conversation with matching commenters.
type ChatbotAutomation struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID       string     `gorm:"column:tenant_id;not null;unique_index" json:"tenant_id"`
	Task           string     `gorm:"type:text;not null" json:"task"`
	Context        string     `gorm:"type:text;not null" json:"context"`
	FirstMessage   string     `gorm:"column:first_message;type:text" json:"first_message"`
	AIContent      string     `gorm:"column:ai_content;type:text" json:"ai_content"`
	PostType       string     `gorm:"column:post_type;not null;default:'all'" json:"post_type"`
	PostID         string     `gorm:"column:post_id;default:''" json:"post_id"`
	CommentTrigger string     `gorm:"column:comment_trigger;not null;default:'all'" json:"comment_trigger"`
	TriggerWords   string     `gorm:"column:trigger_words;type:text" json:"trigger_words"`
	IsLive         bool       `gorm:"column:is_live;not null;default:false" json:"is_live"`
	Version        int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

func (a ChatbotAutomation) MissingFields() string {
	if strings.TrimSpace(a.Task) == "" {
		return "task"
	} else if strings.TrimSpace(a.Context) == "" {
		return "context"
	} else if a.PostType == POST_TYPE_SPECIFIC && strings.TrimSpace(a.PostID) == "" {
		return "post_id"
	} else if a.CommentTrigger == COMMENT_TRIGGER_SPECIFIC && len(engine.SplitWords(a.TriggerWords)) == 0 {
		return "trigger_words"
	}
	return ""
}

func (a *ChatbotAutomation) Normalize() {
	a.PostType = strings.ToLower(strings.TrimSpace(a.PostType))
	if a.PostType == "" {
		a.PostType = POST_TYPE_ALL
	}
	a.CommentTrigger = strings.ToLower(strings.TrimSpace(a.CommentTrigger))
	if a.CommentTrigger == "" {
		a.CommentTrigger = COMMENT_TRIGGER_ALL
	}
	a.PostID = strings.TrimSpace(a.PostID)
	if a.PostType != POST_TYPE_SPECIFIC {
		a.PostID = ""
	}
	if a.CommentTrigger == COMMENT_TRIGGER_SPECIFIC {
		a.TriggerWords = strings.Join(engine.SplitWords(a.TriggerWords), ",")
	} else {
		a.TriggerWords = ""
	}
}

func (a ChatbotAutomation) InvalidField() string {
	if !validPostType(a.PostType) {
		return "post_type"
	} else if !validCommentTrigger(a.CommentTrigger) {
		return "comment_trigger"
	}
	return ""
}

func (a ChatbotAutomation) Rule() engine.ChatbotRule {
	return engine.ChatbotRule{
		TenantID:     a.TenantID,
		Version:      a.Version,
		Task:         a.Task,
		Context:      a.Context,
		FirstMessage: a.FirstMessage,
		Scope:        scope(a.PostType, a.PostID),
		Trigger:      trigger(a.CommentTrigger, a.TriggerWords),
		IsLive:       a.IsLive,
	}
}
