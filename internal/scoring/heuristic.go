package scoring

import (
	"context"
	"strings"

	"adforge/internal/creative"
	"adforge/internal/logging"
)

// HeuristicOracle is the deterministic scoring strategy: a pure
// function of its inputs with no randomness, so re-scoring an unchanged
// combination always yields the same result.
type HeuristicOracle struct{}

// NewHeuristicOracle returns the deterministic oracle.
func NewHeuristicOracle() *HeuristicOracle { return &HeuristicOracle{} }

// Name implements Oracle.
func (o *HeuristicOracle) Name() string { return "heuristic" }

// actionVerbs are the recognizable CTA action verbs the clarity
// sub-score looks for.
var actionVerbs = []string{
	"shop", "buy", "get", "start", "try", "learn", "sign", "join",
	"download", "subscribe", "book", "discover", "claim", "order",
	"contact", "save",
}

// Score implements Oracle.
func (o *HeuristicOracle) Score(ctx context.Context, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	breakdown := clampBreakdown(creative.ScoreBreakdown{
		Hook:      scoreHook(in.Asset),
		Alignment: scoreAlignment(in.Asset, in.Headline, in.Body),
		Fit:       scoreFit(in.Targeting),
		Clarity:   scoreClarity(in.CTA, in.Headline),
		Match:     scoreMatch(in.Body, in.Targeting),
	})

	overall, ctr := Composite(breakdown)
	logging.ScoringDebug("heuristic scored asset=%s overall=%d", in.Asset.ID, overall)
	return &Result{Scores: breakdown, OverallScore: overall, PredictedCTR: ctr}, nil
}

// scoreHook rates the creative's ability to interrupt scrolling.
// Motion beats stills; labeled, themed assets beat bare uploads.
func scoreHook(asset *creative.Asset) float64 {
	score := 45.0
	switch asset.Type {
	case creative.AssetVideo:
		score += 30
	case creative.AssetImage:
		score += 15
	}
	if asset.Label != "" {
		score += 5
	}
	if len(asset.Themes) > 0 {
		score += 10
	}
	return score
}

// scoreAlignment rates copy-to-visual thematic consistency: how many of
// the asset's declared themes surface in the headline or body text.
func scoreAlignment(asset *creative.Asset, headline, body *creative.CopyItem) float64 {
	if len(asset.Themes) == 0 {
		// Nothing declared to align against; middling by construction.
		return 50
	}

	copyText := strings.ToLower(headline.Text + " " + body.Text)
	matched := 0
	for _, theme := range asset.Themes {
		if theme != "" && strings.Contains(copyText, strings.ToLower(theme)) {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(asset.Themes))
	return 40 + 60*ratio
}

// scoreFit rates how well the targeting parameters narrow the audience.
// A narrow age band, interests, and locations each earn a bonus.
func scoreFit(targeting *creative.AdSet) float64 {
	score := 35.0

	if targeting.AgeMin > 0 && targeting.AgeMax >= targeting.AgeMin {
		switch band := targeting.AgeMax - targeting.AgeMin; {
		case band <= 10:
			score += 25
		case band <= 20:
			score += 15
		default:
			score += 5
		}
	}
	if len(targeting.Interests) > 0 {
		score += 20
	}
	if len(targeting.Locations) > 0 {
		score += 15
	}
	return score
}

// scoreClarity rates whether the CTA wording contains a recognizable
// action verb; a verb-led headline earns a small bonus.
func scoreClarity(cta creative.CTAType, headline *creative.CopyItem) float64 {
	label := strings.ToLower(strings.ReplaceAll(string(cta), "_", " "))
	score := 55.0
	for _, verb := range actionVerbs {
		if strings.Contains(label, verb) {
			score = 85
			break
		}
	}

	head := strings.ToLower(headline.Text)
	for _, verb := range actionVerbs {
		if strings.HasPrefix(head, verb) {
			score += 10
			break
		}
	}
	return score
}

// stageOrder places awareness stages on the funnel so adjacency can be
// measured.
var stageOrder = map[creative.AwarenessStage]int{
	creative.StageUnaware:       0,
	creative.StageProblemAware:  1,
	creative.StageSolutionAware: 2,
	creative.StageProductAware:  3,
	creative.StageMostAware:     4,
}

// scoreMatch rates message-to-audience awareness-stage consistency.
func scoreMatch(body *creative.CopyItem, targeting *creative.AdSet) float64 {
	bodyStage, okBody := stageOrder[body.Awareness]
	audStage, okAud := stageOrder[targeting.Awareness]
	if !okBody || !okAud {
		// One side undeclared: neither penalize nor reward.
		return 60
	}

	switch gap := abs(bodyStage - audStage); gap {
	case 0:
		return 90
	case 1:
		return 70
	default:
		return 45
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
