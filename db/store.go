package db

import (
	"context"
	"strings"

	"commentflow/engine"
	"commentflow/models"

	"github.com/jinzhu/gorm"
)

const TextCodeRunNotFound = "RUN_NOT_FOUND"

// Store is the gorm backed account directory, automation registry and run
// log. Rules are read fresh on every call.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var (
	_ engine.AccountDirectory   = (*Store)(nil)
	_ engine.AutomationRegistry = (*Store)(nil)
	_ engine.RunRecorder        = (*Store)(nil)
)

func (s *Store) FindTenant(ctx context.Context, platformAccountID string) (engine.Tenant, error) {
	var integration models.SocialIntegration
	err := s.db.Where("account_id = ?", strings.TrimSpace(platformAccountID)).First(&integration).Error
	if gorm.IsRecordNotFoundError(err) {
		return engine.Tenant{}, engine.NotFoundError("no integration for account", engine.TextCodeTenantNotFound,
			map[string]any{"account_id": platformAccountID})
	}
	if err != nil {
		return engine.Tenant{}, err
	}
	return integration.Tenant(), nil
}

// TenantIntegration returns the first integration of a tenant.
func (s *Store) TenantIntegration(ctx context.Context, tenantID string) (models.SocialIntegration, error) {
	var integration models.SocialIntegration
	err := s.db.Where("tenant_id = ?", tenantID).Order("id asc").First(&integration).Error
	if gorm.IsRecordNotFoundError(err) {
		return integration, engine.NotFoundError("tenant has no integration", engine.TextCodeTenantNotFound,
			map[string]any{"tenant_id": tenantID})
	}
	return integration, err
}

func (s *Store) SaveIntegration(ctx context.Context, integration *models.SocialIntegration) error {
	var existing models.SocialIntegration
	err := s.db.Where("account_id = ?", integration.AccountID).First(&existing).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return err
	}
	if err == nil {
		integration.ID = existing.ID
		integration.CreatedAt = existing.CreatedAt
	}
	return s.db.Save(integration).Error
}

func (s *Store) FindActiveRule(ctx context.Context, tenantID string) (engine.AutomationRule, error) {
	a, err := s.CommentAutomation(ctx, tenantID)
	if err != nil {
		return engine.AutomationRule{}, err
	}
	return a.Rule(), nil
}

func (s *Store) FindActiveChatbot(ctx context.Context, tenantID string) (engine.ChatbotRule, error) {
	a, err := s.ChatbotAutomation(ctx, tenantID)
	if err != nil {
		return engine.ChatbotRule{}, err
	}
	return a.Rule(), nil
}

func (s *Store) CommentAutomation(ctx context.Context, tenantID string) (models.CommentAutomation, error) {
	var a models.CommentAutomation
	err := s.db.Where("tenant_id = ?", tenantID).First(&a).Error
	if gorm.IsRecordNotFoundError(err) {
		return a, engine.NotFoundError("no comment automation", engine.TextCodeRuleNotFound,
			map[string]any{"tenant_id": tenantID})
	}
	return a, err
}

func (s *Store) ChatbotAutomation(ctx context.Context, tenantID string) (models.ChatbotAutomation, error) {
	var a models.ChatbotAutomation
	err := s.db.Where("tenant_id = ?", tenantID).First(&a).Error
	if gorm.IsRecordNotFoundError(err) {
		return a, engine.NotFoundError("no chatbot automation", engine.TextCodeRuleNotFound,
			map[string]any{"tenant_id": tenantID})
	}
	return a, err
}

// SaveCommentAutomation replaces the tenant's automation and bumps its
// version.
func (s *Store) SaveCommentAutomation(ctx context.Context, a *models.CommentAutomation) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentAutomation
		err := tx.Where("tenant_id = ?", a.TenantID).First(&existing).Error
		switch {
		case err == nil:
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			a.Version = existing.Version + 1
		case gorm.IsRecordNotFoundError(err):
			a.ID = 0
			a.Version = 1
		default:
			return err
		}
		return tx.Save(a).Error
	})
}

func (s *Store) SaveChatbotAutomation(ctx context.Context, a *models.ChatbotAutomation) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ChatbotAutomation
		err := tx.Where("tenant_id = ?", a.TenantID).First(&existing).Error
		switch {
		case err == nil:
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			a.Version = existing.Version + 1
		case gorm.IsRecordNotFoundError(err):
			a.ID = 0
			a.Version = 1
		default:
			return err
		}
		return tx.Save(a).Error
	})
}

// SaveSubscription records the subscribed fields of a tenant's page.
func (s *Store) SaveSubscription(ctx context.Context, tenantID, pageID string, fields []string) (models.WebhookSubscription, error) {
	var sub models.WebhookSubscription
	err := s.db.Where("tenant_id = ? AND page_id = ?", tenantID, pageID).First(&sub).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return sub, err
	}
	sub.TenantID = tenantID
	sub.PageID = pageID
	sub.Platform = models.PLATFORM_INSTAGRAM
	sub.SubscribedFields = strings.Join(fields, ",")
	sub.Active = true
	return sub, s.db.Save(&sub).Error
}

func (s *Store) RecordRun(ctx context.Context, report engine.ExecutionReport) error {
	run, err := models.NewAutomationRun(report)
	if err != nil {
		return err
	}
	return s.db.Create(&run).Error
}

// ListRuns returns the latest runs, newest first, optionally for one tenant.
func (s *Store) ListRuns(ctx context.Context, tenantID string, limit int) ([]models.AutomationRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	q := s.db.Order("id desc").Limit(limit)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	var runs []models.AutomationRun
	return runs, q.Find(&runs).Error
}

func (s *Store) FindRun(ctx context.Context, id int64) (models.AutomationRun, error) {
	var run models.AutomationRun
	err := s.db.First(&run, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return run, engine.NotFoundError("run not found", TextCodeRunNotFound, map[string]any{"id": id})
	}
	return run, err
}
