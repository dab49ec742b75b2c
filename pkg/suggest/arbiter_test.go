// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package suggest

import (
	"errors"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for deterministic cooldown tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func observeAll(a *Arbiter, readings []int) bool {
	raised := false
	for _, r := range readings {
		if a.Observe(r) {
			raised = true
		}
	}
	return raised
}

func TestObserveRequiresFullWindow(t *testing.T) {
	a := New(DefaultConfig(), newFakeClock())

	// Four very low readings: the window is not full yet, no suggestion.
	for i, r := range []int{5, 5, 5, 5} {
		if a.Observe(r) {
			t.Fatalf("Observe fired on reading %d before the window was full", i+1)
		}
	}

	if !a.Observe(5) {
		t.Fatal("Observe did not fire once the window filled with low readings")
	}
	if a.State() != StateSuggesting {
		t.Errorf("state = %s, expected suggesting", a.State())
	}
	if a.Candidate() != 5 {
		t.Errorf("candidate = %d, expected 5", a.Candidate())
	}
}

func TestObserveFiresOnLowMean(t *testing.T) {
	tests := []struct {
		name      string
		readings  []int
		raised    bool
		candidate int
	}{
		{
			name:      "uniform low readings",
			readings:  []int{10, 10, 10, 10, 10},
			raised:    true,
			candidate: 10,
		},
		{
			name:      "mixed readings with low mean",
			readings:  []int{15, 18, 12, 20, 10},
			raised:    true,
			candidate: 15,
		},
		{
			name:     "mean exactly at threshold does not fire",
			readings: []int{40, 40, 40, 40, 40},
			raised:   false,
		},
		{
			name:      "mean just below threshold fires",
			readings:  []int{40, 40, 40, 40, 39},
			raised:    true,
			candidate: 40, // 39.8 rounds up
		},
		{
			name:     "high readings never fire",
			readings: []int{90, 85, 88, 92, 91},
			raised:   false,
		},
		{
			name:      "relapse fires as soon as the sliding mean dips",
			readings:  []int{80, 80, 80, 80, 80, 10, 10, 10},
			raised:    true,
			candidate: 38, // window [80 80 10 10 10], mean 38.0
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(DefaultConfig(), newFakeClock())
			raised := observeAll(a, tt.readings)
			if raised != tt.raised {
				t.Fatalf("raised = %v, expected %v", raised, tt.raised)
			}
			if tt.raised && a.Candidate() != tt.candidate {
				t.Errorf("candidate = %d, expected %d", a.Candidate(), tt.candidate)
			}
		})
	}
}

func TestObserveWhileSuggestingDoesNotRefire(t *testing.T) {
	a := New(DefaultConfig(), newFakeClock())
	if !observeAll(a, []int{10, 10, 10, 10, 10}) {
		t.Fatal("expected initial suggestion")
	}

	// More low readings while the prompt is open: the window keeps sliding
	// but the candidate stays frozen and nothing re-fires.
	for _, r := range []int{1, 2, 3} {
		if a.Observe(r) {
			t.Fatal("Observe fired while a suggestion was already open")
		}
	}
	if a.Candidate() != 10 {
		t.Errorf("candidate drifted to %d, expected frozen at 10", a.Candidate())
	}
}

func TestCooldownBlocksRetrigger(t *testing.T) {
	clock := newFakeClock()
	a := New(DefaultConfig(), clock)

	low := []int{10, 10, 10, 10, 10}
	if !observeAll(a, low) {
		t.Fatal("expected initial suggestion")
	}
	if err := a.Dismiss(); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}

	// Still inside the cooldown: sustained low focus must stay quiet.
	clock.Advance(30 * time.Second)
	if observeAll(a, low) {
		t.Fatal("suggestion re-fired inside the cooldown")
	}

	// Exactly at the cooldown boundary: elapsed must be strictly greater.
	clock.Advance(30 * time.Second)
	if a.Observe(10) {
		t.Fatal("suggestion fired exactly at the cooldown boundary")
	}

	clock.Advance(time.Millisecond)
	if !a.Observe(10) {
		t.Fatal("suggestion did not fire after the cooldown elapsed")
	}
}

func TestConfirmStampsCooldown(t *testing.T) {
	clock := newFakeClock()
	a := New(DefaultConfig(), clock)

	if !observeAll(a, []int{10, 10, 10, 10, 10}) {
		t.Fatal("expected initial suggestion")
	}

	resolvedAt := clock.Now()
	candidate, err := a.Confirm()
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if candidate != 10 {
		t.Errorf("Confirm() candidate = %d, expected 10", candidate)
	}
	if a.State() != StateIdle {
		t.Errorf("state after confirm = %s, expected idle", a.State())
	}
	if !a.LastSuggestedAt().Equal(resolvedAt) {
		t.Errorf("LastSuggestedAt = %v, expected %v", a.LastSuggestedAt(), resolvedAt)
	}

	// The cooldown applies after a confirm just like after a dismiss.
	clock.Advance(10 * time.Second)
	if observeAll(a, []int{10, 10, 10, 10, 10}) {
		t.Error("suggestion re-fired inside the post-confirm cooldown")
	}
}

func TestResolveWithoutSuggestion(t *testing.T) {
	a := New(DefaultConfig(), newFakeClock())

	if _, err := a.Confirm(); !errors.Is(err, ErrNotSuggesting) {
		t.Errorf("Confirm() error = %v, expected ErrNotSuggesting", err)
	}
	if err := a.Dismiss(); !errors.Is(err, ErrNotSuggesting) {
		t.Errorf("Dismiss() error = %v, expected ErrNotSuggesting", err)
	}
	if !a.LastSuggestedAt().IsZero() {
		t.Error("failed resolution stamped the cooldown")
	}
}

func TestCandidateDoubleRounding(t *testing.T) {
	a := New(DefaultConfig(), newFakeClock())

	// Window [15 18 12 20 10]: mean 15.0, candidate 15.
	if !observeAll(a, []int{15, 18, 12, 20, 10}) {
		t.Fatal("expected suggestion")
	}
	if a.Candidate() != 15 {
		t.Errorf("candidate = %d, expected 15", a.Candidate())
	}
}

func TestReset(t *testing.T) {
	clock := newFakeClock()
	a := New(DefaultConfig(), clock)

	observeAll(a, []int{10, 10, 10, 10, 10})
	if err := a.Dismiss(); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}

	a.Reset()
	if a.State() != StateIdle {
		t.Errorf("state after reset = %s, expected idle", a.State())
	}
	if !a.LastSuggestedAt().IsZero() {
		t.Error("reset did not clear the cooldown stamp")
	}

	// A fresh low window fires immediately: the cooldown is gone and the
	// history starts empty.
	if observeAll(a, []int{10, 10, 10, 10}) {
		t.Fatal("fired before the window refilled")
	}
	if !a.Observe(10) {
		t.Fatal("did not fire after reset with a fresh low window")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	a := New(Config{}, nil)

	if a.cfg.WindowSize != DefaultWindowSize {
		t.Errorf("WindowSize = %d, expected %d", a.cfg.WindowSize, DefaultWindowSize)
	}
	if a.cfg.LowFocusThreshold != DefaultLowFocusThreshold {
		t.Errorf("LowFocusThreshold = %v, expected %v", a.cfg.LowFocusThreshold, DefaultLowFocusThreshold)
	}
	if a.cfg.Cooldown != DefaultCooldown {
		t.Errorf("Cooldown = %v, expected %v", a.cfg.Cooldown, DefaultCooldown)
	}
	if a.clock == nil {
		t.Error("clock not defaulted")
	}
}
