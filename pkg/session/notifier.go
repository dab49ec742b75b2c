// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package session

import "github.com/adaptlearn/focus-engine/pkg/content"

// Update is the one-shot result of ingesting one attention sample. It is
// returned from HandleSample and forwarded to the host UI at most once per
// event; no callback closes over session state.
type Update struct {
	AttentionLevel      int  `json:"attentionLevel"`
	ShouldSwitchContent bool `json:"shouldSwitchContent"`
	CandidateScore      int  `json:"candidateScore,omitempty"`
}

// Notifier receives the observable notifications a session emits to its
// host: the per-update attention signal, the suggestion-prompt lifecycle,
// and committed content changes. Implementations must not block; the ws
// transport buffers writes on its own.
type Notifier interface {
	AttentionChanged(sessionID string, update Update)
	SuggestionOpened(sessionID string, candidate int)
	SuggestionResolved(sessionID string, confirmed bool)
	ContentChanged(sessionID string, state content.State)
}

// NopNotifier discards all notifications. Sessions start with it until a
// viewer socket attaches.
type NopNotifier struct{}

func (NopNotifier) AttentionChanged(string, Update)      {}
func (NopNotifier) SuggestionOpened(string, int)         {}
func (NopNotifier) SuggestionResolved(string, bool)      {}
func (NopNotifier) ContentChanged(string, content.State) {}
