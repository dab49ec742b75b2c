// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/adaptlearn/focus-engine/pkg/suggest"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadySelected is returned when SelectInitial is called twice.
	ErrAlreadySelected = errors.New("initial content already selected")
	// ErrNoContent is returned when a switch is applied before any content
	// was selected.
	ErrNoContent = errors.New("no content selected yet")
)

// Controller owns the single content State for a session and arbitrates
// when a format switch is applied versus merely suggested. Attention updates
// flow through the controller into the arbiter, but only an explicit viewer
// confirmation ever mutates the active format; an attention dip alone never
// switches content silently.
//
// A Controller is not safe for concurrent use; the owning session serializes
// events so every transition runs to completion before the next.
type Controller struct {
	source     Source
	classifier *classify.Classifier
	arbiter    *suggest.Arbiter
	clock      suggest.Clock
	documentID string

	state *State

	// closed is atomic because teardown may race an in-flight fetch: the
	// session serializes events, but Close comes from the manager.
	closed atomic.Bool
}

// NewController creates a controller for one document in one session.
func NewController(source Source, classifier *classify.Classifier, arbiter *suggest.Arbiter, clock suggest.Clock, documentID string) *Controller {
	if clock == nil {
		clock = suggest.SystemClock()
	}
	return &Controller{
		source:     source,
		classifier: classifier,
		arbiter:    arbiter,
		clock:      clock,
		documentID: documentID,
	}
}

// SelectInitial classifies the signal, fetches the matching payload and
// commits the first content state. Called once when the content source
// becomes available. A failed fetch leaves the controller without state;
// retry policy belongs to the caller.
//
// A nil state with a nil error means the session was torn down while the
// fetch was in flight and the result was discarded.
func (c *Controller) SelectInitial(ctx context.Context, signal int) (*State, error) {
	if c.closed.Load() {
		return nil, nil
	}
	if c.state != nil {
		return nil, ErrAlreadySelected
	}

	format := c.classifier.Classify(signal)
	payload, err := c.source.Fetch(ctx, c.documentID, format)
	if err != nil {
		return nil, &FetchError{DocumentID: c.documentID, Format: format, Err: err}
	}
	if c.closed.Load() {
		logrus.Debugf("discarding stale initial fetch for document %s (%s): session torn down", c.documentID, format)
		return nil, nil
	}

	c.state = &State{
		Format:                format,
		Payload:               payload,
		FocusScoreAtSelection: signal,
		SelectedAt:            c.clock.Now(),
	}
	logrus.Infof("initial content selected for document %s: format=%s signal=%d", c.documentID, format, signal)
	return c.snapshot(), nil
}

// OnAttentionUpdate feeds a smoothed signal into the arbiter. It never
// mutates the content state itself. Returns true when this update raised a
// new suggestion prompt.
func (c *Controller) OnAttentionUpdate(smoothed int) bool {
	if c.closed.Load() {
		return false
	}
	return c.arbiter.Observe(smoothed)
}

// ConfirmSwitch resolves an open suggestion as accepted and re-classifies
// using the candidate average the suggestion was raised with.
func (c *Controller) ConfirmSwitch(ctx context.Context) (*State, error) {
	candidate, err := c.arbiter.Confirm()
	if err != nil {
		return nil, err
	}
	return c.ApplySwitch(ctx, candidate)
}

// DismissSuggestion resolves an open suggestion as declined. The cooldown is
// stamped; nothing else changes.
func (c *Controller) DismissSuggestion() error {
	return c.arbiter.Dismiss()
}

// ApplySwitch recomputes the classification for the signal and, if it
// differs from the active format, fetches the new payload and commits the
// new state. Re-classifying into the already-active format is a pure no-op:
// no fetch, no state change, the existing state is returned as-is. A failed
// fetch leaves the previous state untouched.
//
// Only invoked after an explicit viewer confirmation.
func (c *Controller) ApplySwitch(ctx context.Context, signal int) (*State, error) {
	if c.closed.Load() {
		return nil, nil
	}
	if c.state == nil {
		return nil, ErrNoContent
	}

	format := c.classifier.Classify(signal)
	if format == c.state.Format {
		logrus.Debugf("switch no-op for document %s: signal %d still classifies as %s", c.documentID, signal, format)
		return c.snapshot(), nil
	}

	payload, err := c.source.Fetch(ctx, c.documentID, format)
	if err != nil {
		return nil, &FetchError{DocumentID: c.documentID, Format: format, Err: err}
	}
	if c.closed.Load() {
		logrus.Debugf("discarding stale switch fetch for document %s (%s): session torn down", c.documentID, format)
		return nil, nil
	}

	c.state = &State{
		Format:                format,
		Payload:               payload,
		FocusScoreAtSelection: signal,
		SelectedAt:            c.clock.Now(),
	}
	logrus.Infof("content switched for document %s: format=%s signal=%d", c.documentID, format, signal)
	return c.snapshot(), nil
}

// Current returns a copy of the active content state, or false if no
// content has been selected yet.
func (c *Controller) Current() (State, bool) {
	if c.state == nil {
		return State{}, false
	}
	return *c.state, true
}

// Suggesting reports whether a suggestion prompt is currently open.
func (c *Controller) Suggesting() bool {
	return c.arbiter.State() == suggest.StateSuggesting
}

// Candidate returns the average focus score of the open suggestion.
func (c *Controller) Candidate() int {
	return c.arbiter.Candidate()
}

// DocumentID returns the document this controller serves.
func (c *Controller) DocumentID() string {
	return c.documentID
}

// Close tears the controller down. Fetches still in flight commit nothing
// once the controller is closed; their results are discarded silently.
func (c *Controller) Close() {
	c.closed.Store(true)
}

func (c *Controller) snapshot() *State {
	st := *c.state
	return &st
}
