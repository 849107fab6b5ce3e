package models

import (
	"strings"
	"time"

	"commentflow/engine"
)

/************************************************
/**** MARK: POST TYPES ****/
/************************************************/
const POST_TYPE_SPECIFIC = "specific"
const POST_TYPE_ANY = "any"
const POST_TYPE_ALL = "all"
const POST_TYPE_NEXT = "next"

/************************************************
/**** MARK: COMMENT TRIGGERS ****/
/************************************************/
const COMMENT_TRIGGER_SPECIFIC = "specific"
const COMMENT_TRIGGER_ANY = "any"
const COMMENT_TRIGGER_ALL = "all"

// CommentAutomation is a tenant's comment automation. One row per tenant,
// overwritten on every save; Version increases with each save.
type CommentAutomation struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID       string     `gorm:"column:tenant_id;not null;unique_index" json:"tenant_id"`
	PostType       string     `gorm:"column:post_type;not null" json:"post_type"`
	PostID         string     `gorm:"column:post_id;default:''" json:"post_id"`
	CommentTrigger string     `gorm:"column:comment_trigger;not null" json:"comment_trigger"`
	TriggerWords   string     `gorm:"column:trigger_words;type:text" json:"trigger_words"` // comma separated
	OpeningDM      string     `gorm:"column:opening_dm;type:text;not null" json:"opening_dm"`
	LinkDM         string     `gorm:"column:link_dm;type:text" json:"link_dm"`
	LinkURL        string     `gorm:"column:link_url" json:"link_url"`
	ButtonLabel    string     `gorm:"column:button_label" json:"button_label"`
	AutoReply      bool       `gorm:"column:auto_reply;not null;default:false" json:"auto_reply"`
	FollowUp       bool       `gorm:"column:follow_up;not null;default:false" json:"follow_up"`
	FollowRequest  bool       `gorm:"column:follow_request;not null;default:false" json:"follow_request"`
	EmailRequest   bool       `gorm:"column:email_request;not null;default:false" json:"email_request"`
	IsLive         bool       `gorm:"column:is_live;not null;default:false" json:"is_live"`
	Version        int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

func (a CommentAutomation) MissingFields() string {
	if strings.TrimSpace(a.PostType) == "" {
		return "post_type"
	} else if strings.TrimSpace(a.CommentTrigger) == "" {
		return "comment_trigger"
	} else if strings.TrimSpace(a.OpeningDM) == "" {
		return "opening_dm"
	} else if a.PostType == POST_TYPE_SPECIFIC && strings.TrimSpace(a.PostID) == "" {
		return "post_id"
	} else if a.CommentTrigger == COMMENT_TRIGGER_SPECIFIC && len(engine.SplitWords(a.TriggerWords)) == 0 {
		return "trigger_words"
	}
	return ""
}

// Normalize trims the post id and rewrites trigger words to their
// canonical comma separated form.
func (a *CommentAutomation) Normalize() {
	a.PostType = strings.ToLower(strings.TrimSpace(a.PostType))
	a.CommentTrigger = strings.ToLower(strings.TrimSpace(a.CommentTrigger))
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

func (a CommentAutomation) Rule() engine.AutomationRule {
	actions := []engine.Action{engine.OpeningMessage(a.OpeningDM)}
	if strings.TrimSpace(a.LinkDM) != "" && strings.TrimSpace(a.LinkURL) != "" {
		actions = append(actions, engine.LinkMessage(a.LinkDM, a.LinkURL))
	}
	flags := []struct {
		on     bool
		action engine.Action
	}{
		{a.AutoReply, engine.AutoReply("")},
		{a.FollowUp, engine.FollowUpFlag()},
		{a.FollowRequest, engine.FollowRequestMessage("")},
		{a.EmailRequest, engine.EmailRequestMessage("")},
	}
	for _, f := range flags {
		action := f.action
		action.Enabled = f.on
		actions = append(actions, action)
	}

	return engine.AutomationRule{
		TenantID: a.TenantID,
		Version:  a.Version,
		Scope:    scope(a.PostType, a.PostID),
		Trigger:  trigger(a.CommentTrigger, a.TriggerWords),
		Actions:  actions,
		IsLive:   a.IsLive,
	}
}

func scope(postType, postID string) engine.Scope {
	if postType == POST_TYPE_SPECIFIC {
		return engine.SpecificPost(postID)
	}
	return engine.AnyPost()
}

func trigger(commentTrigger, words string) engine.Trigger {
	if commentTrigger == COMMENT_TRIGGER_SPECIFIC {
		return engine.SpecificWords(engine.SplitWords(words)...)
	}
	return engine.AnyComment()
}

func validPostType(v string) bool {
	switch v {
	case POST_TYPE_SPECIFIC, POST_TYPE_ANY, POST_TYPE_ALL, POST_TYPE_NEXT:
		return true
	}
	return false
}

func validCommentTrigger(v string) bool {
	switch v {
	case COMMENT_TRIGGER_SPECIFIC, COMMENT_TRIGGER_ANY, COMMENT_TRIGGER_ALL:
		return true
	}
	return false
}

// InvalidField reports the first field holding a value outside its enum.
func (a CommentAutomation) InvalidField() string {
	if !validPostType(a.PostType) {
		return "post_type"
	} else if !validCommentTrigger(a.CommentTrigger) {
		return "comment_trigger"
	}
	return ""
}
