// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package classify

import "fmt"

// Format identifies a presentation style for a piece of content.
// Exactly one format is active per viewing session at any time.
type Format string

const (
	// FormatText is long-form prose, served to highly engaged viewers.
	FormatText Format = "text"
	// FormatFlipCard is card-based review content.
	FormatFlipCard Format = "flip_card"
	// FormatShortForm is condensed, skimmable content.
	FormatShortForm Format = "short_form"
	// FormatQuiz is question-driven content to recapture attention.
	FormatQuiz Format = "quiz"
	// FormatInteractive is hands-on content for the lowest engagement band.
	FormatInteractive Format = "interactive"
)

// AllFormats returns every known format, richest first.
func AllFormats() []Format {
	return []Format{FormatText, FormatFlipCard, FormatShortForm, FormatQuiz, FormatInteractive}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatFlipCard, FormatShortForm, FormatQuiz, FormatInteractive:
		return true
	}
	return false
}

// ParseFormat converts a string into a Format.
// Returns an error for unknown format names.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown content format: %q", s)
	}
	return f, nil
}
