package controllers

import (
	"net/http"
	"strings"
	"time"

	"commentflow/models"

	"github.com/gin-gonic/gin"
)

type upsertIntegrationReq struct {
	AccountID      string     `json:"account_id"`
	Username       string     `json:"username"`
	ProfilePicture string     `json:"profile_picture"`
	AccessToken    string     `json:"access_token"`
	PageID         string     `json:"page_id"`
	PageToken      string     `json:"page_token"`
	TokenExpiry    *time.Time `json:"token_expiry"`
}

// PUT /api/integrations?tenant=
// Upserts the tenant's Instagram account credentials, keyed by account id.
func UpsertIntegration(c *gin.Context) {
	tenant, ok := TenantQuery(c)
	if !ok {
		return
	}
	var req upsertIntegrationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	integration := models.SocialIntegration{
		TenantID:       tenant,
		Platform:       models.PLATFORM_INSTAGRAM,
		AccountID:      strings.TrimSpace(req.AccountID),
		Username:       strings.TrimSpace(req.Username),
		ProfilePicture: strings.TrimSpace(req.ProfilePicture),
		AccessToken:    strings.TrimSpace(req.AccessToken),
		PageID:         strings.TrimSpace(req.PageID),
		PageToken:      strings.TrimSpace(req.PageToken),
		TokenExpiry:    req.TokenExpiry,
	}
	if field := integration.MissingFields(); field != "" {
		RespondError(c, field+" is required", http.StatusBadRequest)
		return
	}

	store, ok := storeOrFail(c)
	if !ok {
		return
	}
	if err := store.SaveIntegration(c.Request.Context(), &integration); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"integration": integration})
}

// GET /api/integrations?tenant=
func GetIntegration(c *gin.Context) {
	tenant, ok := TenantQuery(c)
	if !ok {
		return
	}
	store, ok := storeOrFail(c)
	if !ok {
		return
	}
	integration, err := store.TenantIntegration(c.Request.Context(), tenant)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondSuccess(c, gin.H{"integration": integration})
}

// POST /api/integrations/subscribe?tenant=
func SubscribeIntegration(sub PageSubscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub == nil {
			RespondError(c, "no platform client configured", http.StatusServiceUnavailable)
			return
		}
		tenant, ok := TenantQuery(c)
		if !ok {
			return
		}
		store, ok := storeOrFail(c)
		if !ok {
			return
		}
		s, err := SubscribeTenant(c.Request.Context(), store, sub, tenant)
		if err != nil {
			RespondErr(c, err)
			return
		}
		RespondSuccess(c, gin.H{"subscription": s})
	}
}
