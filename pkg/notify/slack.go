// Package notify sends a completion notification to Slack once a run
// finishes, an ambient/supplemental feature named in SPEC_FULL.md —
// spec.md itself is silent on notifications, so this stage is always
// best-effort and never fails a run.
package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

// SlackNotifier posts a run-completion summary to a Slack webhook.
type SlackNotifier struct {
	webhookURL string
}

// New builds a SlackNotifier. An empty webhookURL disables posting
// silently (NotifyRunCompleted becomes a no-op), so callers can
// construct one unconditionally.
func New(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// NotifyRunCompleted posts a one-message summary of the run: run ID,
// overall status, and completed/failed dashboard counts.
func (n *SlackNotifier) NotifyRunCompleted(ctx context.Context, runID string, snapshot model.ProgressState) error {
	if n.webhookURL == "" {
		return nil
	}

	text := fmt.Sprintf(
		"Extraction run `%s` finished: *%s* — %d completed, %d failed dashboards.",
		runID, snapshot.OverallStatus, snapshot.CompletedCount, snapshot.FailedCount,
	)

	msg := &slack.WebhookMessage{Text: text}
	return slack.PostWebhookContext(ctx, n.webhookURL, msg)
}
