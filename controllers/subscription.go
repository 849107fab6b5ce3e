package controllers

import (
	"context"

	dbpkg "commentflow/db"
	"commentflow/engine"
	"commentflow/models"
)

// WebhookFields are the page fields the automations listen to.
var WebhookFields = []string{engine.FieldComments, engine.FieldMessages}

// PageSubscriber subscribes the app to a page's webhook fields.
type PageSubscriber interface {
	SubscribeWebhookFields(ctx context.Context, token, pageID string, fields []string) error
}

// SubscribeTenant subscribes the tenant's page to comment and message
// webhooks and records the subscription.
func SubscribeTenant(ctx context.Context, store *dbpkg.Store, sub PageSubscriber, tenantID string) (models.WebhookSubscription, error) {
	integration, err := store.TenantIntegration(ctx, tenantID)
	if err != nil {
		return models.WebhookSubscription{}, err
	}
	if integration.PageID == "" {
		return models.WebhookSubscription{}, engine.ValidationError("integration has no page id",
			map[string]any{"tenant_id": tenantID})
	}

	tenant := integration.Tenant()
	if err := sub.SubscribeWebhookFields(ctx, tenant.Credential(), integration.PageID, WebhookFields); err != nil {
		return models.WebhookSubscription{}, engine.UpstreamError(err, "subscribe page webhooks",
			map[string]any{"tenant_id": tenantID, "page_id": integration.PageID})
	}
	return store.SaveSubscription(ctx, tenantID, integration.PageID, WebhookFields)
}
