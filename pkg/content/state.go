// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"encoding/json"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
)

// State is the active content for one viewing session. It is owned
// exclusively by the Controller and mutated only through the controller's
// transition API.
type State struct {
	Format                classify.Format `json:"format"`
	Payload               json.RawMessage `json:"payload"`
	FocusScoreAtSelection int             `json:"focus_score_at_selection"`
	SelectedAt            time.Time       `json:"selected_at"`
}
