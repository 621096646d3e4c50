package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NewsCatcher/internal/ports"
)

// DailyScheduler fires a job once a day at a fixed wall-clock time.
type DailyScheduler struct {
	hour     int
	minute   int
	location *time.Location
	runNow   bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses an "HH:MM" clock time in the given location.
// When runNow is set the job also fires immediately on Start.
func NewDailyScheduler(at string, loc *time.Location, runNow bool) (*DailyScheduler, error) {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{hour: hour, minute: minute, location: loc, runNow: runNow}, nil
}

// ParseClock validates an "HH:MM" string.
func ParseClock(at string) (int, int, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid daily time %q: %w", at, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Next returns the first trigger strictly after now.
func (d *DailyScheduler) Next(now time.Time) time.Time {
	local := now.In(d.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start runs the job on its own goroutine until ctx ends or Stop is called.
// Runs never overlap: the next trigger is computed after the job returns.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done

	go func() {
		defer close(done)
		if d.runNow {
			job(time.Now().In(d.location))
		}
		for {
			next := d.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case t := <-timer.C:
				job(t.In(d.location))
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the timer goroutine and waits for a running job to return.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
