// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/adaptlearn/focus-engine/pkg/attention"
	"github.com/adaptlearn/focus-engine/pkg/content"
	"github.com/adaptlearn/focus-engine/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when an event arrives for a torn-down session.
var ErrClosed = errors.New("session closed")

// Session owns one viewer's Smoother/Arbiter/Controller triple. Every event
// (sample, confirm, dismiss) executes to completion under the session mutex
// before the next event is processed, which gives each session the
// single-threaded, run-to-completion semantics the decision core assumes.
// Nothing is shared across sessions.
type Session struct {
	id         string
	documentID string

	mu         sync.Mutex
	smoother   *attention.Smoother
	controller *content.Controller
	notifier   Notifier
	log        *logrus.Entry
	closed     bool
}

func newSession(id, documentID string, smoother *attention.Smoother, controller *content.Controller) *Session {
	return &Session{
		id:         id,
		documentID: documentID,
		smoother:   smoother,
		controller: controller,
		notifier:   NopNotifier{},
		log:        logrus.WithField("session_id", id),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// DocumentID returns the document this session is viewing.
func (s *Session) DocumentID() string {
	return s.documentID
}

// SetNotifier attaches the host notifier, typically when the viewer's
// WebSocket connects. Passing nil detaches it again.
func (s *Session) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
}

// Start performs the initial content selection for the session.
func (s *Session) Start(ctx context.Context, initialFocus int) (*content.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	st, err := s.controller.SelectInitial(ctx, initialFocus)
	if err != nil {
		return nil, err
	}
	if st == nil {
		// Torn down while the fetch was in flight; discarded by contract.
		return nil, ErrClosed
	}
	return st, nil
}

// HandleSample ingests one attention sample and returns the resulting
// one-shot update. Malformed samples are dropped with a *ValidationError;
// the smoothing window and all downstream state stay untouched.
func (s *Session) HandleSample(ctx context.Context, sample attention.Sample) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Update{}, ErrClosed
	}

	smoothed, err := s.smoother.Ingest(sample)
	if err != nil {
		metrics.SamplesRejected.Inc()
		s.log.Debugf("dropping malformed sample: %v", err)
		return Update{}, err
	}
	metrics.SamplesIngested.Inc()

	raised := s.controller.OnAttentionUpdate(smoothed.Value)

	update := Update{
		AttentionLevel:      smoothed.Value,
		ShouldSwitchContent: s.controller.Suggesting(),
	}
	if update.ShouldSwitchContent {
		update.CandidateScore = s.controller.Candidate()
	}

	s.notifier.AttentionChanged(s.id, update)
	if raised {
		metrics.SuggestionsRaised.Inc()
		s.log.Infof("suggestion prompt opened with candidate score %d", update.CandidateScore)
		s.notifier.SuggestionOpened(s.id, update.CandidateScore)
	}

	return update, nil
}

// Confirm resolves the open suggestion as accepted, applies the switch and
// returns the resulting content state. When the candidate re-classifies to
// the already-active format the state is returned unchanged and no fetch
// happens.
func (s *Session) Confirm(ctx context.Context) (*content.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	before, _ := s.controller.Current()

	st, err := s.controller.ConfirmSwitch(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrClosed
	}

	s.notifier.SuggestionResolved(s.id, true)
	metrics.SuggestionsResolved.WithLabelValues("confirmed").Inc()

	if st.Format != before.Format {
		metrics.SwitchesApplied.WithLabelValues(string(st.Format)).Inc()
		s.notifier.ContentChanged(s.id, *st)
	}
	return st, nil
}

// Dismiss resolves the open suggestion as declined.
func (s *Session) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if err := s.controller.DismissSuggestion(); err != nil {
		return err
	}

	s.notifier.SuggestionResolved(s.id, false)
	metrics.SuggestionsResolved.WithLabelValues("dismissed").Inc()
	return nil
}

// Current returns the session's active content state.
func (s *Session) Current() (content.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Current()
}

// Close tears the session down. The controller's closed flag is flipped
// outside the event mutex on purpose: an in-flight fetch holds the mutex,
// and its result must be discarded when it resolves after teardown.
func (s *Session) Close() {
	s.controller.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.notifier = NopNotifier{}
	s.log.Info("session closed")
}
