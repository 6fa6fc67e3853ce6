package notify

import (
	"context"
	"testing"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

func TestNotifyRunCompleted_EmptyURLIsNoOp(t *testing.T) {
	n := New("")
	err := n.NotifyRunCompleted(context.Background(), "run-1", model.ProgressState{OverallStatus: model.OverallCompleted})
	if err != nil {
		t.Fatalf("NotifyRunCompleted() error = %v, want nil for disabled notifier", err)
	}
}
