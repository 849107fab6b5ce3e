package models

import (
	"strings"
	"time"
)

// WebhookSubscription records the fields a tenant's page is subscribed to.
type WebhookSubscription struct {
	ID               int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID         string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Platform         string     `gorm:"not null;default:'instagram'" json:"platform"`
	PageID           string     `gorm:"column:page_id;not null;index" json:"page_id"`
	SubscribedFields string     `gorm:"column:subscribed_fields;not null" json:"subscribed_fields"` // comma separated
	Active           bool       `gorm:"not null" json:"active"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func (s WebhookSubscription) Fields() []string {
	var out []string
	for _, f := range strings.Split(s.SubscribedFields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
