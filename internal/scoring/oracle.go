// Package scoring computes the weighted multi-factor performance score
// for one assembled creative combination. Two interchangeable oracle
// strategies exist: a deterministic heuristic and an LLM-backed variant
// that falls back to the heuristic when the call fails. Selection is by
// configuration, never by randomness, so tests can substitute a fixed
// oracle.
package scoring

import (
	"context"
	"math"

	"adforge/internal/creative"
)

// Sub-score weights. Fixed constants of the oracle, not data; their sum
// is 1.0 and the weighted sum of 0-100 sub-scores lands on 0-100.
const (
	WeightHook      = 0.25
	WeightAlignment = 0.20
	WeightFit       = 0.20
	WeightClarity   = 0.15
	WeightMatch     = 0.20
)

// Input carries one combination's resolved components plus the
// targeting context it will run against.
type Input struct {
	Asset       *creative.Asset
	Headline    *creative.CopyItem
	Body        *creative.CopyItem
	Description *creative.CopyItem // optional
	CTA         creative.CTAType
	Targeting   *creative.AdSet
}

// Result is one oracle verdict.
type Result struct {
	Scores       creative.ScoreBreakdown
	OverallScore int     // 0-100
	PredictedCTR float64 // 0-10, two decimals
}

// Oracle is the pluggable scoring strategy.
type Oracle interface {
	// Score evaluates one combination. A combination the oracle cannot
	// evaluate (missing required component) yields a
	// *creative.ScoringFailedError, never a panic.
	Score(ctx context.Context, in Input) (*Result, error)
	// Name identifies the strategy for logs and summaries.
	Name() string
}

// Composite folds a breakdown into the overall score and predicted CTR.
func Composite(b creative.ScoreBreakdown) (int, float64) {
	weighted := WeightHook*b.Hook +
		WeightAlignment*b.Alignment +
		WeightFit*b.Fit +
		WeightClarity*b.Clarity +
		WeightMatch*b.Match

	overall := int(math.Round(clamp(weighted, 0, 100)))
	ctr := clamp(float64(overall)/10, 0, 10)
	// Two-decimal precision for the CTR estimate.
	ctr = math.Round(ctr*100) / 100
	return overall, ctr
}

// clampBreakdown forces every sub-score into [0,100].
func clampBreakdown(b creative.ScoreBreakdown) creative.ScoreBreakdown {
	return creative.ScoreBreakdown{
		Hook:      clamp(b.Hook, 0, 100),
		Alignment: clamp(b.Alignment, 0, 100),
		Fit:       clamp(b.Fit, 0, 100),
		Clarity:   clamp(b.Clarity, 0, 100),
		Match:     clamp(b.Match, 0, 100),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// validate checks the required component references.
func (in Input) validate() *creative.ScoringFailedError {
	switch {
	case in.Asset == nil:
		return &creative.ScoringFailedError{Reason: "asset reference is nil"}
	case in.Headline == nil:
		return &creative.ScoringFailedError{Reason: "headline reference is nil"}
	case in.Body == nil:
		return &creative.ScoringFailedError{Reason: "body reference is nil"}
	case in.Targeting == nil:
		return &creative.ScoringFailedError{Reason: "targeting context is nil"}
	}
	return nil
}
