package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"adforge/internal/creative"
	"adforge/internal/llm"
	"adforge/internal/logging"
)

// LLMOracle scores combinations with a Gemini call. The model's reply
// is a JSON breakdown; the composite is computed locally with the same
// weights as the heuristic so the two variants are comparable.
//
// When the call or parse fails the oracle falls back to the
// deterministic heuristic and logs the substitution; it never invents
// random scores.
type LLMOracle struct {
	client   llm.Client
	fallback *HeuristicOracle
}

// NewLLMOracle creates the LLM-backed oracle.
func NewLLMOracle(client llm.Client) *LLMOracle {
	return &LLMOracle{
		client:   client,
		fallback: NewHeuristicOracle(),
	}
}

// Name implements Oracle.
func (o *LLMOracle) Name() string { return "llm" }

// llmBreakdown is the wire shape the model is instructed to reply with.
type llmBreakdown struct {
	Hook      float64 `json:"hook"`
	Alignment float64 `json:"alignment"`
	Fit       float64 `json:"fit"`
	Clarity   float64 `json:"clarity"`
	Match     float64 `json:"match"`
}

// Score implements Oracle.
func (o *LLMOracle) Score(ctx context.Context, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	reply, err := o.client.CompleteWithSystem(ctx, scoringSystemPrompt, buildScoringPrompt(in))
	if err != nil {
		logging.Get(logging.CategoryScoring).Warn("LLM scoring failed, using heuristic fallback: %v", err)
		return o.fallback.Score(ctx, in)
	}

	breakdown, err := parseBreakdown(reply)
	if err != nil {
		logging.Get(logging.CategoryScoring).Warn("LLM reply unparseable, using heuristic fallback: %v", err)
		return o.fallback.Score(ctx, in)
	}

	overall, ctr := Composite(breakdown)
	logging.ScoringDebug("llm scored asset=%s overall=%d", in.Asset.ID, overall)
	return &Result{Scores: breakdown, OverallScore: overall, PredictedCTR: ctr}, nil
}

// parseBreakdown decodes the model reply into a clamped breakdown.
func parseBreakdown(reply string) (creative.ScoreBreakdown, error) {
	var raw llmBreakdown
	if err := json.Unmarshal([]byte(extractJSON(reply)), &raw); err != nil {
		return creative.ScoreBreakdown{}, fmt.Errorf("decoding score reply: %w", err)
	}
	return clampBreakdown(creative.ScoreBreakdown{
		Hook:      raw.Hook,
		Alignment: raw.Alignment,
		Fit:       raw.Fit,
		Clarity:   raw.Clarity,
		Match:     raw.Match,
	}), nil
}
