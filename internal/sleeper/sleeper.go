package sleeper

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidDuration happens when the initial delay is not positive
	// or the cap is below the initial delay.
	ErrInvalidDuration = errors.New("invalid sleep duration")
)

// exponentialBackoffSleeper doubles the delay after every sleep,
// never exceeding the cap.
type exponentialBackoffSleeper struct {
	initial       time.Duration
	max           time.Duration
	sleepDuration time.Duration

	after func(d time.Duration) <-chan time.Time
}

// NewExponentialSleeper creates a sleeper that starts with the initial delay.
// A zero max leaves the delay uncapped.
func NewExponentialSleeper(initial, max time.Duration) (*exponentialBackoffSleeper, error) {
	if initial <= 0 || (max != 0 && max < initial) {
		return nil, ErrInvalidDuration
	}

	return &exponentialBackoffSleeper{
		initial:       initial,
		max:           max,
		sleepDuration: initial,
		after:         time.After,
	}, nil
}

// Sleep waits for the current delay or until the context is done.
func (e *exponentialBackoffSleeper) Sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-e.after(e.sleepDuration):
	}

	e.sleepDuration += e.sleepDuration
	if e.max != 0 && e.sleepDuration > e.max {
		e.sleepDuration = e.max
	}
}

// Reset
func (e *exponentialBackoffSleeper) Reset() {
	e.sleepDuration = e.initial
}
