// Package progress carries the push-protocol events the pruning
// pipeline emits: an ordered stream of progress/complete/error events
// terminated by a single done event. The pipeline's correctness is
// independent of any network protocol; transports (SSE, TUI) drain the
// channel and render however they like.
package progress

// EventName identifies the event kind on the wire.
type EventName string

const (
	EventProgress EventName = "progress"
	EventComplete EventName = "complete"
	EventError    EventName = "error"
	EventDone     EventName = "done"
)

// Outcome values for complete events.
const (
	OutcomeKept    = "kept"
	OutcomeDeleted = "deleted"
)

// Event is one emission; Payload is one of the payload structs below.
type Event struct {
	Name    EventName
	Payload any
}

// ProgressPayload announces that an item is about to be scored.
type ProgressPayload struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
	Scored   int    `json:"scored"`
	Deleted  int    `json:"deleted"`
	Kept     int    `json:"kept"`
}

// CompletePayload announces one item's verdict (kept or deleted).
type CompletePayload struct {
	Type          string `json:"type"` // "kept" | "deleted"
	Index         int    `json:"index"`
	CombinationID string `json:"combinationId"`
	Score         int    `json:"score"`
	Message       string `json:"message"`
	Progress      int    `json:"progress"`
	Total         int    `json:"total"`
	Scored        int    `json:"scored"`
	Deleted       int    `json:"deleted"`
	Kept          int    `json:"kept"`
}

// ErrorPayload announces a non-fatal per-item failure; the batch
// continues.
type ErrorPayload struct {
	Index         int    `json:"index"`
	CombinationID string `json:"combinationId"`
	Message       string `json:"message"`
}

// DonePayload is the terminal summary.
type DonePayload struct {
	Success           bool     `json:"success"`
	Message           string   `json:"message"`
	TotalCombinations int      `json:"totalCombinations"`
	Scored            int      `json:"scored"`
	Deleted           int      `json:"deleted"`
	Kept              int      `json:"kept"`
	DeletedIDs        []string `json:"deletedIds"`
	MinScore          int      `json:"minScore"`
}
