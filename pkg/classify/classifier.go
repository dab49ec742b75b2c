// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package classify

import "fmt"

// Band maps a range of attention signals to a format. A band matches when
// the signal is strictly greater than Above, so a band with Above=80 covers
// 81..100 and the value 80 itself falls through to the next band.
type Band struct {
	Above  int
	Format Format
}

// Classifier maps an attention signal (0-100) to a content format using an
// ordered threshold table. Evaluation is top-down, first match wins; signals
// matching no band get the fallback format.
type Classifier struct {
	bands    []Band
	fallback Format
}

// DefaultBands returns the standard threshold table:
//
//	>80  text
//	>60  flip_card
//	>40  short_form
//	>20  quiz
//	else interactive
//
// Boundary values 80, 60, 40 and 20 land in the lower band. This is strict
// greater-than on purpose; a borderline viewer sees the leaner format.
func DefaultBands() []Band {
	return []Band{
		{Above: 80, Format: FormatText},
		{Above: 60, Format: FormatFlipCard},
		{Above: 40, Format: FormatShortForm},
		{Above: 20, Format: FormatQuiz},
	}
}

// NewDefault creates a classifier with the standard threshold table.
func NewDefault() *Classifier {
	c, err := New(DefaultBands(), FormatInteractive)
	if err != nil {
		// Default table is static and always valid.
		panic(err)
	}
	return c
}

// New creates a classifier from a custom band table and fallback format.
// Bands must be ordered by strictly descending threshold, every threshold
// must lie within [0,100), and every format must be known.
func New(bands []Band, fallback Format) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("classifier requires at least one band")
	}
	if !fallback.Valid() {
		return nil, fmt.Errorf("invalid fallback format: %q", fallback)
	}

	prev := 101
	for i, b := range bands {
		if b.Above < 0 || b.Above > 99 {
			return nil, fmt.Errorf("band %d: threshold %d out of range [0,99]", i, b.Above)
		}
		if b.Above >= prev {
			return nil, fmt.Errorf("band %d: threshold %d not strictly descending", i, b.Above)
		}
		if !b.Format.Valid() {
			return nil, fmt.Errorf("band %d: invalid format %q", i, b.Format)
		}
		prev = b.Above
	}

	c := &Classifier{
		bands:    make([]Band, len(bands)),
		fallback: fallback,
	}
	copy(c.bands, bands)
	return c, nil
}

// Classify maps an attention signal to a content format.
// Pure, total and deterministic; signals are clamped to [0,100] first so the
// function never fails on out-of-range input from an upstream bug.
func (c *Classifier) Classify(signal int) Format {
	if signal < 0 {
		signal = 0
	}
	if signal > 100 {
		signal = 100
	}

	for _, b := range c.bands {
		if signal > b.Above {
			return b.Format
		}
	}
	return c.fallback
}

// Bands returns a copy of the classifier's threshold table.
func (c *Classifier) Bands() []Band {
	out := make([]Band, len(c.bands))
	copy(out, c.bands)
	return out
}
