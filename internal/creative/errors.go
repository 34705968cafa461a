package creative

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a referenced record does not exist. It is
// deliberately distinct from ErrDeployedImmutable so callers can tell
// "gone" apart from "protected".
var ErrNotFound = errors.New("record not found")

// ErrDeployedImmutable rejects any mutation or deletion of a
// Combination that has been deployed to the ad platform.
var ErrDeployedImmutable = errors.New("combination is deployed and immutable")

// EmptySelectionError reports a required component pool that the caller
// left empty.
type EmptySelectionError struct {
	Field string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("selection is missing required component: %s", e.Field)
}

// InvalidSelectionError reports selected ids that did not all resolve
// against the component store (stale or deleted ids).
type InvalidSelectionError struct {
	Field     string
	Requested int
	Resolved  int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("selection for %s resolved %d of %d ids", e.Field, e.Resolved, e.Requested)
}

// ScoringFailedError marks a single combination the oracle could not
// score. The pruning pipeline records it and moves on.
type ScoringFailedError struct {
	CombinationID string
	Reason        string
}

func (e *ScoringFailedError) Error() string {
	return fmt.Sprintf("scoring failed for combination %s: %s", e.CombinationID, e.Reason)
}

// GenerationIncompleteError surfaces the non-atomic delete-then-insert
// gap in the generator: prior combinations were already deleted when the
// bulk insert failed, leaving the adset with zero combinations. Callers
// should re-run generation.
type GenerationIncompleteError struct {
	AdSetID string
	Err     error
}

func (e *GenerationIncompleteError) Error() string {
	return fmt.Sprintf("generation incomplete for adset %s: prior combinations deleted but insert failed: %v", e.AdSetID, e.Err)
}

func (e *GenerationIncompleteError) Unwrap() error { return e.Err }
