package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNextTrigger(t *testing.T) {
	t.Parallel()

	shanghai := time.FixedZone("CST", 8*3600)
	d, err := NewDailyScheduler("09:30", shanghai, false)
	if err != nil {
		t.Fatalf("NewDailyScheduler: %v", err)
	}

	before := time.Date(2025, time.March, 10, 9, 0, 0, 0, shanghai)
	if got := d.Next(before); !got.Equal(time.Date(2025, time.March, 10, 9, 30, 0, 0, shanghai)) {
		t.Fatalf("unexpected next before trigger: %v", got)
	}

	at := time.Date(2025, time.March, 10, 9, 30, 0, 0, shanghai)
	if got := d.Next(at); !got.Equal(time.Date(2025, time.March, 11, 9, 30, 0, 0, shanghai)) {
		t.Fatalf("trigger time itself must roll to next day, got %v", got)
	}

	utcEvening := time.Date(2025, time.March, 10, 23, 0, 0, 0, time.UTC)
	if got := d.Next(utcEvening); !got.Equal(time.Date(2025, time.March, 11, 9, 30, 0, 0, shanghai)) {
		t.Fatalf("next must be computed in the scheduler zone, got %v", got)
	}
}

func TestParseClockRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "25:00", "9h30", "09:61"} {
		if _, _, err := ParseClock(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestStartRunNowAndStop(t *testing.T) {
	t.Parallel()

	d, err := NewDailyScheduler("03:00", time.UTC, true)
	if err != nil {
		t.Fatalf("NewDailyScheduler: %v", err)
	}

	fired := make(chan time.Time, 1)
	if err := d.Start(context.Background(), func(t time.Time) { fired <- t }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("runNow job did not fire")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
