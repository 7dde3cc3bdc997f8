package mail

import (
	"testing"
	"time"
)

func TestShouldPrune(t *testing.T) {
	now := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	old := Report{SentAt: now.Add(-48 * time.Hour)}
	fresh := Report{SentAt: now.Add(-1 * time.Hour)}

	if !ShouldPrune(old, now, 24*time.Hour) {
		t.Fatal("expected old report to be pruned")
	}
	if ShouldPrune(fresh, now, 24*time.Hour) {
		t.Fatal("expected fresh report to survive")
	}
}
