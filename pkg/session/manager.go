// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/adaptlearn/focus-engine/pkg/attention"
	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/adaptlearn/focus-engine/pkg/content"
	"github.com/adaptlearn/focus-engine/pkg/metrics"
	"github.com/adaptlearn/focus-engine/pkg/suggest"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dependencies holds everything the manager needs to assemble a session's
// Smoother/Arbiter/Controller triple.
type Dependencies struct {
	Source        content.Source
	Classifier    *classify.Classifier
	Clock         suggest.Clock
	SmootherSize  int
	ArbiterConfig suggest.Config
}

// Manager creates, looks up and tears down viewing sessions. Each session
// gets an independent triple; no decision state is shared across sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Dependencies
}

// NewManager creates a session manager.
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("session manager requires a content source")
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.NewDefault()
	}
	if deps.Clock == nil {
		deps.Clock = suggest.SystemClock()
	}
	if deps.SmootherSize < 1 {
		deps.SmootherSize = attention.DefaultWindowSize
	}

	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
	}, nil
}

// Create assembles a new session for a document and runs the initial
// content selection. On fetch failure no session is retained; the caller
// may retry with a fresh Create.
func (m *Manager) Create(ctx context.Context, documentID string, initialFocus int) (*Session, *content.State, error) {
	id := uuid.NewString()

	arbiter := suggest.New(m.deps.ArbiterConfig, m.deps.Clock)
	controller := content.NewController(m.deps.Source, m.deps.Classifier, arbiter, m.deps.Clock, documentID)
	smoother := attention.NewSmoother(m.deps.SmootherSize)

	sess := newSession(id, documentID, smoother, controller)

	st, err := sess.Start(ctx, initialFocus)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	logrus.Infof("created session %s for document %s (initial format %s)", id, documentID, st.Format)
	return sess, st, nil
}

// Get returns a live session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close tears down a session. Returns false when the session is unknown.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	sess.Close()
	metrics.ActiveSessions.Dec()
	return true
}

// CloseAll tears down every live session, e.g. at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
	logrus.Infof("closed %d sessions", len(sessions))
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
