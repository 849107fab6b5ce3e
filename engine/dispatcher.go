package engine

import (
	"context"
	"encoding/json"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	FieldComments = "comments"
	FieldMessages = "messages"
)

// AccountDirectory resolves a platform account id to its tenant.
type AccountDirectory interface {
	FindTenant(ctx context.Context, platformAccountID string) (Tenant, error)
}

// AutomationRegistry returns a tenant's active rules. Both lookups return a
// NotFoundError when the tenant has none.
type AutomationRegistry interface {
	FindActiveRule(ctx context.Context, tenantID string) (AutomationRule, error)
	FindActiveChatbot(ctx context.Context, tenantID string) (ChatbotRule, error)
}

// RunRecorder persists execution reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, report ExecutionReport) error
}

// Dispatcher takes one normalized event through tenant resolution, rule
// matching and execution.
type Dispatcher struct {
	directory AccountDirectory
	registry  AutomationRegistry
	executor  *Executor
	recorder  RunRecorder
	recent    *RecentEvents
	logger    glog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithRunRecorder(r RunRecorder) DispatcherOption {
	return func(d *Dispatcher) { d.recorder = r }
}

func WithRecentEvents(r *RecentEvents) DispatcherOption {
	return func(d *Dispatcher) { d.recent = r }
}

func WithDispatcherLogger(l glog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

func NewDispatcher(directory AccountDirectory, registry AutomationRegistry, executor *Executor, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		directory: directory,
		registry:  registry,
		executor:  executor,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = glog.Ensure(d.logger)
	return d
}

// Dispatch normalizes a change value for field and handles it. Unknown
// fields and dropped events return nil.
func (d *Dispatcher) Dispatch(ctx context.Context, field, accountID string, value json.RawMessage) error {
	switch field {
	case FieldComments:
		ev, ok, err := NormalizeComment(accountID, value)
		if err != nil || !ok {
			return err
		}
		_, err = d.HandleComment(ctx, ev)
		return err
	case FieldMessages:
		ev, ok, err := NormalizeMessage(accountID, value)
		if err != nil || !ok {
			return err
		}
		_, err = d.HandleMessage(ctx, ev)
		return err
	}
	d.logger.Debug("ignoring webhook field", "field", field, "account_id", accountID)
	return nil
}

// HandleComment runs the tenant's comment automation and its chatbot
// comment flow. Each matched rule yields one report.
func (d *Dispatcher) HandleComment(ctx context.Context, ev CommentEvent) ([]ExecutionReport, error) {
	inbound := NewCommentEvent(ev)
	if d.recent.Seen(inbound.Key()) {
		d.logger.Info("duplicate comment dropped", "comment_id", ev.ID)
		return nil, nil
	}

	tenant, err := d.resolveTenant(ctx, ev.MediaOwnerID, ev.AccountID)
	if err != nil {
		d.logger.Warn("comment dropped, tenant not resolved",
			"comment_id", ev.ID, "media_owner_id", ev.MediaOwnerID, "account_id", ev.AccountID)
		return nil, err
	}
	if tenant.PlatformAccountID != "" && ev.ActorID == tenant.PlatformAccountID {
		d.logger.Debug("skipping comment authored by the account", "comment_id", ev.ID, "tenant_id", tenant.TenantID)
		return nil, nil
	}

	target := Target{RecipientID: ev.ActorID, CommentID: ev.ID}
	var reports []ExecutionReport

	rule, err := d.registry.FindActiveRule(ctx, tenant.TenantID)
	switch {
	case err == nil:
		if plan, ok := Match(ev, rule); ok {
			reports = append(reports, d.execute(ctx, plan, tenant, target, rule.Version, inbound.Key()))
		} else {
			d.logger.Debug("comment did not match automation", "comment_id", ev.ID, "tenant_id", tenant.TenantID)
		}
	case IsNotFound(err):
		d.logger.Debug("no comment automation", "tenant_id", tenant.TenantID)
	default:
		return reports, err
	}

	bot, err := d.registry.FindActiveChatbot(ctx, tenant.TenantID)
	switch {
	case err == nil:
		if plan, ok := MatchChatbotComment(ev, bot); ok {
			reports = append(reports, d.execute(ctx, plan, tenant, target, bot.Version, inbound.Key()))
		}
	case IsNotFound(err):
	default:
		return reports, err
	}
	return reports, nil
}

// HandleMessage answers a direct message through the tenant's chatbot.
func (d *Dispatcher) HandleMessage(ctx context.Context, ev MessageEvent) (*ExecutionReport, error) {
	inbound := NewMessageEvent(ev)
	if d.recent.Seen(inbound.Key()) {
		d.logger.Info("duplicate message dropped", "mid", ev.MessageID)
		return nil, nil
	}

	tenant, err := d.resolveTenant(ctx, ev.RecipientID, ev.AccountID)
	if err != nil {
		d.logger.Warn("message dropped, tenant not resolved",
			"mid", ev.MessageID, "recipient_id", ev.RecipientID, "account_id", ev.AccountID)
		return nil, err
	}
	if tenant.PlatformAccountID != "" && ev.SenderID == tenant.PlatformAccountID {
		return nil, nil
	}

	bot, err := d.registry.FindActiveChatbot(ctx, tenant.TenantID)
	if err != nil {
		if IsNotFound(err) {
			d.logger.Debug("no chatbot configured", "tenant_id", tenant.TenantID)
			return nil, nil
		}
		return nil, err
	}
	plan, ok := MatchMessage(ev, bot)
	if !ok {
		return nil, nil
	}
	report := d.execute(ctx, plan, tenant, Target{RecipientID: ev.SenderID}, bot.Version, inbound.Key())
	return &report, nil
}

func (d *Dispatcher) execute(ctx context.Context, plan ActionPlan, tenant Tenant, target Target, version int64, key string) ExecutionReport {
	report := d.executor.Execute(ctx, plan, tenant, target)
	report.RuleVersion = version
	report.EventKey = key

	d.logger.Info("automation run finished",
		"run_id", report.RunID,
		"tenant_id", tenant.TenantID,
		"rule_version", version,
		"event", key,
		"sent", report.Sent(),
		"failed", report.Failed(),
		"skipped", report.Skipped(),
	)
	if d.recorder != nil {
		if err := d.recorder.RecordRun(ctx, report); err != nil {
			d.logger.Error("failed to record run", "run_id", report.RunID, "error", err)
		}
	}
	return report
}

// resolveTenant tries each candidate account id in order.
func (d *Dispatcher) resolveTenant(ctx context.Context, candidates ...string) (Tenant, error) {
	tried := make([]string, 0, len(candidates))
	for _, id := range candidates {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		tried = append(tried, id)
		tenant, err := d.directory.FindTenant(ctx, id)
		if err == nil {
			return tenant, nil
		}
		if !IsNotFound(err) {
			return Tenant{}, err
		}
	}
	return Tenant{}, NotFoundError("no tenant for event", TextCodeTenantNotFound, map[string]any{"account_ids": tried})
}
