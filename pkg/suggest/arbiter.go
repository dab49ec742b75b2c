// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package suggest

import (
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultWindowSize is the number of smoothed readings evaluated per
	// suggestion decision.
	DefaultWindowSize = 5
	// DefaultLowFocusThreshold is the mean smoothed value below which
	// sustained low engagement is assumed.
	DefaultLowFocusThreshold = 40.0
	// DefaultCooldown is the minimum time between two suggestion prompts.
	DefaultCooldown = 60 * time.Second
)

// ErrNotSuggesting is returned when Confirm or Dismiss is called while no
// suggestion is pending.
var ErrNotSuggesting = errors.New("no suggestion pending")

// State is the arbiter's position in its two-state machine.
type State int

const (
	// StateIdle means no suggestion prompt is open.
	StateIdle State = iota
	// StateSuggesting means a prompt is open and awaiting confirm/dismiss.
	StateSuggesting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSuggesting:
		return "suggesting"
	default:
		return "unknown"
	}
}

// Config tunes the arbiter's debounce behavior.
type Config struct {
	WindowSize        int
	LowFocusThreshold float64
	Cooldown          time.Duration
}

// DefaultConfig returns the standard arbiter tuning.
func DefaultConfig() Config {
	return Config{
		WindowSize:        DefaultWindowSize,
		LowFocusThreshold: DefaultLowFocusThreshold,
		Cooldown:          DefaultCooldown,
	}
}

// Arbiter decides when to prompt the viewer to switch content formats.
// It keeps its own rolling window of already-rounded smoothed readings and
// raises a suggestion when the window mean stays below the low-focus
// threshold, subject to a cooldown so the viewer is not interrupted
// repeatedly. The window intentionally averages rounded integers; the
// resulting double rounding matches the historical behavior this engine
// replaces.
//
// An Arbiter is not safe for concurrent use; the owning session serializes
// access to it.
type Arbiter struct {
	cfg   Config
	clock Clock

	history         []int
	state           State
	candidate       int
	lastSuggestedAt time.Time
}

// New creates an arbiter. Zero config fields fall back to defaults; a nil
// clock falls back to the system clock.
func New(cfg Config, clock Clock) *Arbiter {
	if cfg.WindowSize < 1 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.LowFocusThreshold <= 0 {
		cfg.LowFocusThreshold = DefaultLowFocusThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Arbiter{
		cfg:     cfg,
		clock:   clock,
		history: make([]int, 0, cfg.WindowSize),
		state:   StateIdle,
	}
}

// Observe records a smoothed reading and evaluates readiness.
// Returns true exactly when this reading transitions the arbiter from Idle
// to Suggesting. While Suggesting, readings keep sliding through the window
// but no further transition fires until the open prompt is resolved.
func (a *Arbiter) Observe(smoothed int) bool {
	a.history = append(a.history, smoothed)
	if len(a.history) > a.cfg.WindowSize {
		a.history = a.history[1:]
	}

	if a.state != StateIdle {
		return false
	}
	if len(a.history) < a.cfg.WindowSize {
		return false
	}

	mean := a.windowMean()
	if mean >= a.cfg.LowFocusThreshold {
		return false
	}
	if !a.cooldownElapsed() {
		logrus.Debugf("low engagement detected (mean=%.1f) but suggestion cooldown active", mean)
		return false
	}

	a.state = StateSuggesting
	a.candidate = int(math.Round(mean))
	logrus.Infof("suggestion raised: window mean %.1f below threshold %.1f (candidate=%d)",
		mean, a.cfg.LowFocusThreshold, a.candidate)
	return true
}

// State returns the current arbiter state.
func (a *Arbiter) State() State {
	return a.state
}

// Candidate returns the average focus score frozen at the moment the open
// suggestion was raised. Only meaningful while Suggesting.
func (a *Arbiter) Candidate() int {
	return a.candidate
}

// LastSuggestedAt returns when the most recent suggestion was resolved.
// The zero time means no suggestion has been resolved yet.
func (a *Arbiter) LastSuggestedAt() time.Time {
	return a.lastSuggestedAt
}

// Confirm resolves the open suggestion as accepted and returns the candidate
// score the caller should re-classify with. Stamps the cooldown and returns
// to Idle.
func (a *Arbiter) Confirm() (int, error) {
	if a.state != StateSuggesting {
		return 0, ErrNotSuggesting
	}
	a.resolve()
	return a.candidate, nil
}

// Dismiss resolves the open suggestion as declined. Stamps the cooldown and
// returns to Idle; nothing further is signalled.
func (a *Arbiter) Dismiss() error {
	if a.state != StateSuggesting {
		return ErrNotSuggesting
	}
	a.resolve()
	return nil
}

// Reset clears all arbiter state for a restarted session.
func (a *Arbiter) Reset() {
	a.history = a.history[:0]
	a.state = StateIdle
	a.candidate = 0
	a.lastSuggestedAt = time.Time{}
}

func (a *Arbiter) resolve() {
	a.lastSuggestedAt = a.clock.Now()
	a.state = StateIdle
}

func (a *Arbiter) cooldownElapsed() bool {
	if a.lastSuggestedAt.IsZero() {
		return true
	}
	return a.clock.Now().Sub(a.lastSuggestedAt) > a.cfg.Cooldown
}

func (a *Arbiter) windowMean() float64 {
	sum := 0
	for _, v := range a.history {
		sum += v
	}
	return float64(sum) / float64(len(a.history))
}
