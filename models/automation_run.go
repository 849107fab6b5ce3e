package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"commentflow/engine"
)

/************************************************
/**** MARK: RUN STATUS ****/
/************************************************/
const RUN_STATUS_OK = "ok"
const RUN_STATUS_PARTIAL = "partial"
const RUN_STATUS_FAILED = "failed"
const RUN_STATUS_SKIPPED = "skipped"

// AutomationRun is one executed action plan.
type AutomationRun struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	RunID       string     `gorm:"column:run_id;not null;unique_index" json:"run_id"`
	TenantID    string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	RuleVersion int64      `gorm:"column:rule_version;not null;default:0" json:"rule_version"`
	EventKey    string     `gorm:"column:event_key;default:'';index" json:"event_key"`
	RecipientID string     `gorm:"column:recipient_id;default:''" json:"recipient_id"`
	CommentID   string     `gorm:"column:comment_id;default:''" json:"comment_id"`
	Status      string     `gorm:"not null;default:'ok';index" json:"status"`
	Sent        int        `gorm:"not null;default:0" json:"sent"`
	Failed      int        `gorm:"not null;default:0" json:"failed"`
	Skipped     int        `gorm:"not null;default:0" json:"skipped"`
	Results     string     `gorm:"type:text" json:"results"` // JSON array of RunActionResult
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	CreatedAt   *time.Time `json:"created_at"`
}

type RunActionResult struct {
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

func runStatus(r engine.ExecutionReport) string {
	switch {
	case r.Failed() == 0 && r.Sent() == 0:
		return RUN_STATUS_SKIPPED
	case r.Failed() == 0:
		return RUN_STATUS_OK
	case r.Sent() == 0:
		return RUN_STATUS_FAILED
	}
	return RUN_STATUS_PARTIAL
}

// NewAutomationRun flattens an execution report into a row.
func NewAutomationRun(r engine.ExecutionReport) (AutomationRun, error) {
	results := make([]RunActionResult, 0, len(r.Results))
	for _, res := range r.Results {
		item := RunActionResult{
			Kind:       string(res.Kind),
			Status:     string(res.Status),
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		results = append(results, item)
	}
	b, err := json.Marshal(results)
	if err != nil {
		return AutomationRun{}, fmt.Errorf("encoding action results of run %s: %w", r.RunID, err)
	}

	started, finished := r.StartedAt, r.FinishedAt
	return AutomationRun{
		RunID:       r.RunID,
		TenantID:    r.TenantID,
		RuleVersion: r.RuleVersion,
		EventKey:    r.EventKey,
		RecipientID: r.Target.RecipientID,
		CommentID:   r.Target.CommentID,
		Status:      runStatus(r),
		Sent:        r.Sent(),
		Failed:      r.Failed(),
		Skipped:     r.Skipped(),
		Results:     string(b),
		StartedAt:   &started,
		FinishedAt:  &finished,
	}, nil
}

// ActionResults decodes the stored per-action results.
func (r AutomationRun) ActionResults() ([]RunActionResult, error) {
	var out []RunActionResult
	if strings.TrimSpace(r.Results) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(r.Results), &out); err != nil {
		return nil, fmt.Errorf("decoding action results of run %s: %w", r.RunID, err)
	}
	return out, nil
}
