// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/adaptlearn/focus-engine/pkg/suggest"
)

// fakeSource records fetches and serves a canned payload per format.
type fakeSource struct {
	fetches []classify.Format
	fail    bool
}

func (s *fakeSource) Fetch(_ context.Context, documentID string, format classify.Format) (json.RawMessage, error) {
	s.fetches = append(s.fetches, format)
	if s.fail {
		return nil, errors.New("backend down")
	}
	return json.RawMessage(fmt.Sprintf(`{"doc":%q,"format":%q}`, documentID, format)), nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestController(source Source) *Controller {
	arbiter := suggest.New(suggest.DefaultConfig(), &fixedClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)})
	return NewController(source, classify.NewDefault(), arbiter, &fixedClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}, "doc-1")
}

func TestSelectInitial(t *testing.T) {
	source := &fakeSource{}
	c := newTestController(source)

	st, err := c.SelectInitial(context.Background(), 85)
	if err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}
	if st.Format != classify.FormatText {
		t.Errorf("format = %s, expected %s", st.Format, classify.FormatText)
	}
	if st.FocusScoreAtSelection != 85 {
		t.Errorf("FocusScoreAtSelection = %d, expected 85", st.FocusScoreAtSelection)
	}
	if st.SelectedAt.IsZero() {
		t.Error("SelectedAt not stamped")
	}
	if len(source.fetches) != 1 || source.fetches[0] != classify.FormatText {
		t.Errorf("fetches = %v, expected one text fetch", source.fetches)
	}

	cur, ok := c.Current()
	if !ok {
		t.Fatal("Current() reported no state after selection")
	}
	if cur.Format != classify.FormatText {
		t.Errorf("Current() format = %s, expected %s", cur.Format, classify.FormatText)
	}
}

func TestSelectInitialTwice(t *testing.T) {
	c := newTestController(&fakeSource{})

	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}
	if _, err := c.SelectInitial(context.Background(), 85); !errors.Is(err, ErrAlreadySelected) {
		t.Errorf("second SelectInitial() error = %v, expected ErrAlreadySelected", err)
	}
}

func TestSelectInitialFetchFailure(t *testing.T) {
	source := &fakeSource{fail: true}
	c := newTestController(source)

	_, err := c.SelectInitial(context.Background(), 85)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("SelectInitial() error = %v, expected *FetchError", err)
	}
	if fetchErr.Format != classify.FormatText {
		t.Errorf("FetchError format = %s, expected %s", fetchErr.Format, classify.FormatText)
	}

	if _, ok := c.Current(); ok {
		t.Error("controller holds state after a failed initial fetch")
	}

	// The failed selection is retryable.
	source.fail = false
	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Errorf("retried SelectInitial() error = %v", err)
	}
}

func TestApplySwitchChangesFormat(t *testing.T) {
	source := &fakeSource{}
	c := newTestController(source)

	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}

	st, err := c.ApplySwitch(context.Background(), 15)
	if err != nil {
		t.Fatalf("ApplySwitch() error = %v", err)
	}
	if st.Format != classify.FormatInteractive {
		t.Errorf("format = %s, expected %s", st.Format, classify.FormatInteractive)
	}
	if st.FocusScoreAtSelection != 15 {
		t.Errorf("FocusScoreAtSelection = %d, expected 15", st.FocusScoreAtSelection)
	}
	if len(source.fetches) != 2 {
		t.Errorf("fetch count = %d, expected 2", len(source.fetches))
	}
}

func TestApplySwitchSameFormatIsNoOp(t *testing.T) {
	source := &fakeSource{}
	c := newTestController(source)

	before, err := c.SelectInitial(context.Background(), 85)
	if err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}

	// 90 still classifies as text: no fetch, state byte-for-byte identical.
	st, err := c.ApplySwitch(context.Background(), 90)
	if err != nil {
		t.Fatalf("ApplySwitch() error = %v", err)
	}
	if st.Format != before.Format {
		t.Errorf("format changed to %s", st.Format)
	}
	if st.FocusScoreAtSelection != before.FocusScoreAtSelection {
		t.Errorf("FocusScoreAtSelection changed to %d", st.FocusScoreAtSelection)
	}
	if !st.SelectedAt.Equal(before.SelectedAt) {
		t.Errorf("SelectedAt changed to %v", st.SelectedAt)
	}
	if len(source.fetches) != 1 {
		t.Errorf("fetch count = %d, expected 1 (no-op must not fetch)", len(source.fetches))
	}
}

func TestApplySwitchFetchFailureKeepsState(t *testing.T) {
	source := &fakeSource{}
	c := newTestController(source)

	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}

	source.fail = true
	_, err := c.ApplySwitch(context.Background(), 15)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("ApplySwitch() error = %v, expected *FetchError", err)
	}

	cur, ok := c.Current()
	if !ok {
		t.Fatal("state lost after failed switch")
	}
	if cur.Format != classify.FormatText {
		t.Errorf("format = %s, expected untouched %s", cur.Format, classify.FormatText)
	}
}

func TestApplySwitchBeforeSelection(t *testing.T) {
	c := newTestController(&fakeSource{})
	if _, err := c.ApplySwitch(context.Background(), 15); !errors.Is(err, ErrNoContent) {
		t.Errorf("ApplySwitch() error = %v, expected ErrNoContent", err)
	}
}

// blockingSource parks fetches until released, to simulate a slow backend
// racing session teardown.
type blockingSource struct {
	release chan struct{}
}

func (s *blockingSource) Fetch(ctx context.Context, documentID string, format classify.Format) (json.RawMessage, error) {
	select {
	case <-s.release:
		return json.RawMessage(`{}`), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestStaleFetchDiscardedAfterClose(t *testing.T) {
	source := &blockingSource{release: make(chan struct{})}
	c := newTestController(source)

	done := make(chan struct{})
	var st *State
	var err error
	go func() {
		st, err = c.SelectInitial(context.Background(), 85)
		close(done)
	}()

	// Tear down while the fetch is parked, then let it resolve.
	c.Close()
	close(source.release)
	<-done

	if err != nil {
		t.Fatalf("SelectInitial() error = %v, expected silent discard", err)
	}
	if st != nil {
		t.Fatalf("SelectInitial() = %+v, expected nil state after teardown", st)
	}
	if _, ok := c.Current(); ok {
		t.Error("stale fetch committed state after teardown")
	}
}

func TestClosedControllerIgnoresEvents(t *testing.T) {
	c := newTestController(&fakeSource{})
	c.Close()

	if st, err := c.SelectInitial(context.Background(), 85); st != nil || err != nil {
		t.Errorf("SelectInitial() after close = (%v, %v), expected (nil, nil)", st, err)
	}
	if c.OnAttentionUpdate(10) {
		t.Error("OnAttentionUpdate() raised a suggestion after close")
	}
}

func TestConfirmSwitchFlow(t *testing.T) {
	source := &fakeSource{}
	c := newTestController(source)

	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}

	raised := false
	for _, v := range []int{15, 18, 12, 20, 10} {
		if c.OnAttentionUpdate(v) {
			raised = true
		}
	}
	if !raised {
		t.Fatal("sustained low attention did not raise a suggestion")
	}
	if !c.Suggesting() {
		t.Fatal("Suggesting() = false with an open prompt")
	}
	if c.Candidate() != 15 {
		t.Fatalf("Candidate() = %d, expected 15", c.Candidate())
	}

	st, err := c.ConfirmSwitch(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSwitch() error = %v", err)
	}
	if st.Format != classify.FormatInteractive {
		t.Errorf("format = %s, expected %s", st.Format, classify.FormatInteractive)
	}
	if c.Suggesting() {
		t.Error("still Suggesting after confirm")
	}
}

func TestDismissKeepsFormat(t *testing.T) {
	source := &fakeSource{}
	c := newTestController(source)

	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}
	for _, v := range []int{10, 10, 10, 10, 10} {
		c.OnAttentionUpdate(v)
	}
	if !c.Suggesting() {
		t.Fatal("expected open suggestion")
	}

	if err := c.DismissSuggestion(); err != nil {
		t.Fatalf("DismissSuggestion() error = %v", err)
	}

	cur, _ := c.Current()
	if cur.Format != classify.FormatText {
		t.Errorf("format = %s, expected unchanged %s", cur.Format, classify.FormatText)
	}
	if len(source.fetches) != 1 {
		t.Errorf("fetch count = %d, dismiss must not fetch", len(source.fetches))
	}
}

func TestConfirmWithoutSuggestion(t *testing.T) {
	c := newTestController(&fakeSource{})
	if _, err := c.SelectInitial(context.Background(), 85); err != nil {
		t.Fatalf("SelectInitial() error = %v", err)
	}
	if _, err := c.ConfirmSwitch(context.Background()); !errors.Is(err, suggest.ErrNotSuggesting) {
		t.Errorf("ConfirmSwitch() error = %v, expected ErrNotSuggesting", err)
	}
}
