package models

import (
	"strings"
	"time"

	"commentflow/engine"
)

const PLATFORM_INSTAGRAM = "instagram"

// SocialIntegration stores a tenant's connected Instagram account and the
// credentials used for outbound calls. One row per platform account.
type SocialIntegration struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID       string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Platform       string     `gorm:"not null;default:'instagram'" json:"platform"`
	AccountID      string     `gorm:"column:account_id;not null;unique_index" json:"account_id"`
	Username       string     `gorm:"default:''" json:"username"`
	ProfilePicture string     `gorm:"column:profile_picture;default:''" json:"profile_picture"`
	AccessToken    string     `gorm:"column:access_token;not null" json:"-"`
	PageID         string     `gorm:"column:page_id;default:''" json:"page_id"`
	PageToken      string     `gorm:"column:page_token;default:''" json:"-"`
	TokenExpiry    *time.Time `gorm:"column:token_expiry" json:"token_expiry"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

func (s SocialIntegration) MissingFields() string {
	if strings.TrimSpace(s.TenantID) == "" {
		return "tenant_id"
	} else if strings.TrimSpace(s.AccountID) == "" {
		return "account_id"
	} else if strings.TrimSpace(s.AccessToken) == "" {
		return "access_token"
	}
	return ""
}

func (s SocialIntegration) Tenant() engine.Tenant {
	return engine.Tenant{
		TenantID:          s.TenantID,
		PlatformAccountID: s.AccountID,
		PageID:            s.PageID,
		APIToken:          s.AccessToken,
		PageToken:         s.PageToken,
	}
}
