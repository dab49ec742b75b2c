// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adaptlearn/focus-engine/pkg/classify"
)

// Source supplies the per-format payload for a document. Fetches are
// idempotent and retryable; the Controller never retries on its own, any
// retry policy lives inside the Source implementation.
type Source interface {
	Fetch(ctx context.Context, documentID string, format classify.Format) (json.RawMessage, error)
}

// FetchError reports a failed payload fetch. A failed fetch is surfaced as a
// failed content-state transition; the previously active state stays intact.
type FetchError struct {
	DocumentID string
	Format     classify.Format
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s payload for document %s: %v", e.Format, e.DocumentID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
