// Package events publishes analysis.completed notifications after a prospectus is processed.
package events

import (
	"time"

	"github.com/google/uuid"
)

const TypeAnalysisCompleted = "analysis.completed"

// Event is the JSON body published for a processed upload.
type Event struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	RequestID  string          `json:"request_id,omitempty"`
	Key        string          `json:"key"`
	Model      string          `json:"model"`
	Source     string          `json:"source"`
	Analyses   map[string]bool `json:"analyses"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewAnalysisCompleted builds an event with a fresh id. analyses maps analyzer name to ok.
func NewAnalysisCompleted(requestID, key, model, source string, analyses map[string]bool) Event {
	if analyses == nil {
		analyses = map[string]bool{}
	}
	return Event{
		EventID:    uuid.NewString(),
		Type:       TypeAnalysisCompleted,
		RequestID:  requestID,
		Key:        key,
		Model:      model,
		Source:     source,
		Analyses:   analyses,
		OccurredAt: time.Now().UTC(),
	}
}
