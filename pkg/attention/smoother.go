// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package attention

import "math"

// DefaultWindowSize is the number of recent samples averaged into the
// smoothed signal.
const DefaultWindowSize = 5

// Smoothed is the stable attention signal derived from the most recent
// samples: the rounded arithmetic mean of the window contents.
type Smoothed struct {
	Value int `json:"value"`
}

// Smoother maintains a bounded rolling window of raw attention samples and
// produces a stable averaged signal. The window is pure FIFO: insertion
// order defines recency, the oldest sample is evicted first, and values are
// never reordered.
//
// A Smoother is not safe for concurrent use; the owning session serializes
// access to it.
type Smoother struct {
	window []int
	size   int
}

// NewSmoother creates a smoother with the given window size.
// Sizes below 1 fall back to DefaultWindowSize.
func NewSmoother(size int) *Smoother {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Smoother{
		window: make([]int, 0, size),
		size:   size,
	}
}

// Ingest validates the sample, slides it into the window and returns the
// recomputed smoothed signal. Malformed samples are rejected with a
// *ValidationError and leave the window untouched. With fewer samples than
// the window size the mean is taken over the available samples only.
func (s *Smoother) Ingest(sample Sample) (Smoothed, error) {
	if err := sample.Validate(); err != nil {
		return Smoothed{}, err
	}

	s.window = append(s.window, sample.Value)
	if len(s.window) > s.size {
		s.window = s.window[1:]
	}

	return Smoothed{Value: s.mean()}, nil
}

// Len returns the number of samples currently in the window.
func (s *Smoother) Len() int {
	return len(s.window)
}

// Reset clears the window, e.g. when a viewing session restarts.
func (s *Smoother) Reset() {
	s.window = s.window[:0]
}

func (s *Smoother) mean() int {
	sum := 0
	for _, v := range s.window {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(s.window))))
}
