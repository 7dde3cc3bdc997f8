package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunJobRunsImmediatelyWhenRequested(t *testing.T) {
	s := &Scheduler{stop: make(chan struct{})}
	var runs atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	go s.runJob(ctx, Job{
		RunImmediately: true,
		Interval:       time.Hour,
		Fn:             func(context.Context) { runs.Add(1) },
	})

	time.Sleep(10 * time.Millisecond)
	if runs.Load() != 1 {
		t.Fatalf("expected exactly one immediate run, got %d", runs.Load())
	}
}

func TestBuildBeaconFormat(t *testing.T) {
	s := BuildBeacon(BeaconConfig{Alias: "N0CALL", ToCall: "APRS", Lat: 50.5, Lon: 9.25, Symbol: "/-", AltFeet: 100})
	if s == "" {
		t.Fatal("expected non-empty beacon payload")
	}
	if s[:7] != "N0CALL>" {
		t.Fatalf("unexpected prefix: %s", s)
	}
}

func TestBuildBulletinsOrderAndPadding(t *testing.T) {
	out := BuildBulletins("N0CALL", "APRS", [3]string{"a", "b", "c"})
	if len(out) != 3 {
		t.Fatalf("expected 3 bulletins, got %d", len(out))
	}
	want := "N0CALL>APRS::BLN0     :a"
	if out[0] != want {
		t.Fatalf("got %q want %q", out[0], want)
	}
}
