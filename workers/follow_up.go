package workers

import (
	"context"

	"commentflow/engine"

	glog "github.com/goliatone/go-logger/glog"
)

// FollowUpLogger records follow-up requests. Follow-up delivery has no
// platform call yet; the request is only logged.
type FollowUpLogger struct {
	logger glog.Logger
}

func NewFollowUpLogger(logger glog.Logger) *FollowUpLogger {
	return &FollowUpLogger{logger: glog.Ensure(logger)}
}

func (f *FollowUpLogger) ScheduleFollowUp(ctx context.Context, tenant engine.Tenant, target engine.Target) error {
	f.logger.Info("follow-up requested",
		"tenant_id", tenant.TenantID, "recipient_id", target.RecipientID, "comment_id", target.CommentID)
	return nil
}

var _ engine.FollowUpScheduler = (*FollowUpLogger)(nil)
