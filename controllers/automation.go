package controllers

import (
	"net/http"
	"strings"

	dbpkg "commentflow/db"
	"commentflow/models"

	"github.com/gin-gonic/gin"
	glog "github.com/goliatone/go-logger/glog"
)

type upsertCommentAutomationReq struct {
	PostType       string `json:"post_type"`
	SelectedPost   string `json:"selected_post"`
	CommentTrigger string `json:"comment_trigger"`
	TriggerWords   string `json:"trigger_words"` // comma separated
	OpeningDM      string `json:"opening_dm"`
	LinkDM         string `json:"link_dm"`
	LinkURL        string `json:"link_url"`
	ButtonLabel    string `json:"button_label"`
	AutoReply      bool   `json:"auto_reply"`
	FollowUp       bool   `json:"follow_up"`
	FollowRequest  bool   `json:"follow_request"`
	EmailRequest   bool   `json:"email_request"`
	IsLive         bool   `json:"is_live"`
}

type upsertChatbotReq struct {
	Task           string `json:"task"`
	Context        string `json:"context"`
	FirstMessage   string `json:"first_message"`
	AIContent      string `json:"ai_content"`
	PostType       string `json:"post_type"`
	SelectedPost   string `json:"selected_post"`
	CommentTrigger string `json:"comment_trigger"`
	TriggerWords   string `json:"trigger_words"`
	IsLive         bool   `json:"is_live"`
}

func storeOrFail(c *gin.Context) (*dbpkg.Store, bool) {
	store := dbpkg.StoreInstance(c)
	if store == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return nil, false
	}
	return store, true
}

// GET /api/automation?tenant=
func GetCommentAutomation(c *gin.Context) {
	tenant, ok := TenantQuery(c)
	if !ok {
		return
	}
	store, ok := storeOrFail(c)
	if !ok {
		return
	}
	a, err := store.CommentAutomation(c.Request.Context(), tenant)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondSuccess(c, gin.H{"automation": a})
}

// PUT /api/automation?tenant=
// Replaces the tenant's comment automation. Saving a live automation
// subscribes the tenant's page to webhooks.
func UpsertCommentAutomation(sub PageSubscriber, logger glog.Logger) gin.HandlerFunc {
	logger = glog.Ensure(logger)
	return func(c *gin.Context) {
		tenant, ok := TenantQuery(c)
		if !ok {
			return
		}
		var req upsertCommentAutomationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}

		a := models.CommentAutomation{
			TenantID:       tenant,
			PostType:       req.PostType,
			PostID:         req.SelectedPost,
			CommentTrigger: req.CommentTrigger,
			TriggerWords:   req.TriggerWords,
			OpeningDM:      strings.TrimSpace(req.OpeningDM),
			LinkDM:         strings.TrimSpace(req.LinkDM),
			LinkURL:        strings.TrimSpace(req.LinkURL),
			ButtonLabel:    strings.TrimSpace(req.ButtonLabel),
			AutoReply:      req.AutoReply,
			FollowUp:       req.FollowUp,
			FollowRequest:  req.FollowRequest,
			EmailRequest:   req.EmailRequest,
			IsLive:         req.IsLive,
		}
		a.Normalize()
		if field := a.MissingFields(); field != "" {
			RespondError(c, field+" is required", http.StatusBadRequest)
			return
		}
		if field := a.InvalidField(); field != "" {
			RespondError(c, "invalid "+field, http.StatusBadRequest)
			return
		}
		if err := a.Rule().Validate(); err != nil {
			RespondErr(c, err)
			return
		}

		store, ok := storeOrFail(c)
		if !ok {
			return
		}
		if err := store.SaveCommentAutomation(c.Request.Context(), &a); err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := gin.H{"automation": a}
		if a.IsLive {
			resp["subscription"] = subscribe(c, store, sub, logger, tenant)
		}
		RespondSuccess(c, resp)
	}
}

// GET /api/chatbot?tenant=
func GetChatbotAutomation(c *gin.Context) {
	tenant, ok := TenantQuery(c)
	if !ok {
		return
	}
	store, ok := storeOrFail(c)
	if !ok {
		return
	}
	a, err := store.ChatbotAutomation(c.Request.Context(), tenant)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondSuccess(c, gin.H{"chatbot": a})
}

// PUT /api/chatbot?tenant=
func UpsertChatbotAutomation(sub PageSubscriber, logger glog.Logger) gin.HandlerFunc {
	logger = glog.Ensure(logger)
	return func(c *gin.Context) {
		tenant, ok := TenantQuery(c)
		if !ok {
			return
		}
		var req upsertChatbotReq
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}

		a := models.ChatbotAutomation{
			TenantID:       tenant,
			Task:           strings.TrimSpace(req.Task),
			Context:        strings.TrimSpace(req.Context),
			FirstMessage:   strings.TrimSpace(req.FirstMessage),
			AIContent:      strings.TrimSpace(req.AIContent),
			PostType:       req.PostType,
			PostID:         req.SelectedPost,
			CommentTrigger: req.CommentTrigger,
			TriggerWords:   req.TriggerWords,
			IsLive:         req.IsLive,
		}
		a.Normalize()
		if field := a.MissingFields(); field != "" {
			RespondError(c, field+" is required", http.StatusBadRequest)
			return
		}
		if field := a.InvalidField(); field != "" {
			RespondError(c, "invalid "+field, http.StatusBadRequest)
			return
		}

		store, ok := storeOrFail(c)
		if !ok {
			return
		}
		if err := store.SaveChatbotAutomation(c.Request.Context(), &a); err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := gin.H{"chatbot": a}
		if a.IsLive {
			resp["subscription"] = subscribe(c, store, sub, logger, tenant)
		}
		RespondSuccess(c, resp)
	}
}

// subscribe never fails the save: the outcome is reported in the response.
func subscribe(c *gin.Context, store *dbpkg.Store, sub PageSubscriber, logger glog.Logger, tenant string) gin.H {
	if sub == nil {
		return gin.H{"subscribed": false, "error": "no platform client configured"}
	}
	s, err := SubscribeTenant(c.Request.Context(), store, sub, tenant)
	if err != nil {
		logger.Warn("page subscription failed", "tenant_id", tenant, "error", err)
		return gin.H{"subscribed": false, "error": err.Error()}
	}
	return gin.H{"subscribed": true, "page_id": s.PageID, "fields": s.Fields()}
}
