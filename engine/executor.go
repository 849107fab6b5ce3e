package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Platform is the outbound social platform API.
type Platform interface {
	SendDirectMessage(ctx context.Context, token, recipientID, text string) error
	ReplyToComment(ctx context.Context, token, commentID, text string) error
}

// Replier generates conversational text for AI reply actions.
type Replier interface {
	GenerateReply(ctx context.Context, task, businessContext, userText string) (string, error)
}

// FollowUpScheduler takes deferred follow-up work off the event path.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, tenant Tenant, target Target) error
}

// Target is who an action addresses: the user to message and, for comment
// events, the comment to reply to.
type Target struct {
	RecipientID string
	CommentID   string
}

type ActionStatus string

const (
	StatusSent    ActionStatus = "sent"
	StatusFailed  ActionStatus = "failed"
	StatusSkipped ActionStatus = "skipped"
)

type ActionResult struct {
	Kind     ActionKind
	Status   ActionStatus
	Err      error
	Duration time.Duration
}

type ExecutionReport struct {
	RunID       string
	TenantID    string
	RuleVersion int64
	EventKey    string
	Target      Target
	Results     []ActionResult
	StartedAt   time.Time
	FinishedAt  time.Time
}

func (r ExecutionReport) count(status ActionStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

func (r ExecutionReport) Sent() int    { return r.count(StatusSent) }
func (r ExecutionReport) Failed() int  { return r.count(StatusFailed) }
func (r ExecutionReport) Skipped() int { return r.count(StatusSkipped) }

type Executor struct {
	platform    Platform
	replier     Replier
	followUps   FollowUpScheduler
	callTimeout time.Duration
	logger      glog.Logger
	now         func() time.Time
}

type ExecutorOption func(*Executor)

func WithReplier(r Replier) ExecutorOption {
	return func(e *Executor) { e.replier = r }
}

func WithFollowUpScheduler(s FollowUpScheduler) ExecutorOption {
	return func(e *Executor) { e.followUps = s }
}

// WithCallTimeout bounds each outbound call. Zero disables the bound.
func WithCallTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.callTimeout = d }
}

func WithExecutorLogger(l glog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

func NewExecutor(platform Platform, opts ...ExecutorOption) *Executor {
	e := &Executor{
		platform:    platform,
		callTimeout: 10 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = glog.Ensure(e.logger)
	return e
}

// Execute runs plan in order. Every action is attempted: a failure is
// recorded in the report and the next action still runs. Nothing is retried.
func (e *Executor) Execute(ctx context.Context, plan ActionPlan, tenant Tenant, target Target) ExecutionReport {
	report := ExecutionReport{
		RunID:     uuid.NewString(),
		TenantID:  tenant.TenantID,
		Target:    target,
		Results:   make([]ActionResult, 0, len(plan.Actions)),
		StartedAt: e.now(),
	}
	token := tenant.Credential()

	for _, action := range plan.Actions {
		start := e.now()
		status, err := e.run(ctx, action, tenant, token, target)
		res := ActionResult{Kind: action.Kind, Status: status, Err: err, Duration: e.now().Sub(start)}
		report.Results = append(report.Results, res)

		if err != nil {
			e.logger.Error("action failed",
				"run_id", report.RunID, "tenant_id", tenant.TenantID, "action", string(action.Kind), "error", err)
			continue
		}
		e.logger.Debug("action done",
			"run_id", report.RunID, "tenant_id", tenant.TenantID, "action", string(action.Kind), "status", string(status))
	}

	report.FinishedAt = e.now()
	return report
}

func (e *Executor) run(ctx context.Context, action Action, tenant Tenant, token string, target Target) (status ActionStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			status, err = StatusFailed, UpstreamError(nil, fmt.Sprintf("action panicked: %v", r), nil)
		}
	}()

	if !action.Enabled {
		return StatusSkipped, nil
	}

	switch action.Kind {
	case ActionFollowUp:
		if e.followUps == nil {
			return StatusSkipped, nil
		}
		if err := e.followUps.ScheduleFollowUp(ctx, tenant, target); err != nil {
			return StatusFailed, UpstreamError(err, "schedule follow-up", nil)
		}
		return StatusSent, nil

	case ActionAutoReply:
		if target.CommentID == "" {
			return StatusFailed, ValidationError("auto reply needs a comment id", nil)
		}
		return e.call(ctx, "reply to comment", func(ctx context.Context) error {
			return e.platform.ReplyToComment(ctx, token, target.CommentID, action.Message())
		})

	case ActionAIReply:
		if target.RecipientID == "" {
			return StatusFailed, ValidationError("message needs a recipient", nil)
		}
		if e.replier == nil {
			return StatusFailed, UpstreamError(nil, "no reply generator configured", nil)
		}
		var text string
		genStatus, genErr := e.call(ctx, "generate reply", func(ctx context.Context) error {
			var err error
			text, err = e.replier.GenerateReply(ctx, action.Task, action.Context, action.UserText)
			return err
		})
		if genErr != nil {
			return genStatus, genErr
		}
		text = orDefault(strings.TrimSpace(text), DefaultAIFallbackText)
		return e.call(ctx, "send direct message", func(ctx context.Context) error {
			return e.platform.SendDirectMessage(ctx, token, target.RecipientID, text)
		})

	default:
		if target.RecipientID == "" {
			return StatusFailed, ValidationError("message needs a recipient", nil)
		}
		text := action.Message()
		if strings.TrimSpace(text) == "" {
			return StatusSkipped, nil
		}
		return e.call(ctx, "send direct message", func(ctx context.Context) error {
			return e.platform.SendDirectMessage(ctx, token, target.RecipientID, text)
		})
	}
}

func (e *Executor) call(ctx context.Context, op string, fn func(context.Context) error) (ActionStatus, error) {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	if err := fn(ctx); err != nil {
		return StatusFailed, UpstreamError(err, op, nil)
	}
	return StatusSent, nil
}
