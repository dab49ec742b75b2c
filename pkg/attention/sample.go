// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package attention

import (
	"fmt"
	"math"
	"time"
)

// Sample is a single momentary attention reading for a viewer.
// Samples are produced by an external measurement subsystem and are
// immutable once received.
type Sample struct {
	Value      int       `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
}

// ValidationError reports a malformed sample. Malformed samples are dropped
// before they reach the smoothing window; they are never fatal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid attention sample: %s %s", e.Field, e.Reason)
}

// Validate checks that the sample can enter a smoothing window.
func (s Sample) Validate() error {
	if s.Value < 0 || s.Value > 100 {
		return &ValidationError{Field: "value", Reason: fmt.Sprintf("%d out of range [0,100]", s.Value)}
	}
	return nil
}

// SampleFromScore builds a Sample from a raw transport-level focus score.
// Scores arrive as JSON numbers, so fractional or non-finite values are
// rejected here rather than silently truncated.
func SampleFromScore(score float64, observedAt time.Time) (Sample, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Sample{}, &ValidationError{Field: "value", Reason: "not a finite number"}
	}
	if score != math.Trunc(score) {
		return Sample{}, &ValidationError{Field: "value", Reason: fmt.Sprintf("%v is not an integer", score)}
	}

	s := Sample{Value: int(score), ObservedAt: observedAt}
	if err := s.Validate(); err != nil {
		return Sample{}, err
	}
	return s, nil
}
