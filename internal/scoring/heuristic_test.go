package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/internal/creative"
)

func TestHeuristic_Deterministic(t *testing.T) {
	o := NewHeuristicOracle()
	in := validInput()

	first, err := o.Score(context.Background(), in)
	require.NoError(t, err)
	second, err := o.Score(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.PredictedCTR, second.PredictedCTR)
}

func TestHeuristic_SubScoresWithinRange(t *testing.T) {
	o := NewHeuristicOracle()
	res, err := o.Score(context.Background(), validInput())
	require.NoError(t, err)

	for name, v := range map[string]float64{
		"hook":      res.Scores.Hook,
		"alignment": res.Scores.Alignment,
		"fit":       res.Scores.Fit,
		"clarity":   res.Scores.Clarity,
		"match":     res.Scores.Match,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
	assert.GreaterOrEqual(t, res.OverallScore, 0)
	assert.LessOrEqual(t, res.OverallScore, 100)
}

func TestHeuristic_VideoHooksHarderThanImage(t *testing.T) {
	o := NewHeuristicOracle()

	video := validInput()
	video.Asset.Type = creative.AssetVideo
	image := validInput()
	image.Asset.Type = creative.AssetImage

	vres, err := o.Score(context.Background(), video)
	require.NoError(t, err)
	ires, err := o.Score(context.Background(), image)
	require.NoError(t, err)

	assert.Greater(t, vres.Scores.Hook, ires.Scores.Hook)
}

func TestHeuristic_ThemeOverlapRaisesAlignment(t *testing.T) {
	o := NewHeuristicOracle()

	aligned := validInput() // copy mentions "summer" and "beach"
	misaligned := validInput()
	misaligned.Headline.Text = "Flash sale today"
	misaligned.Body.Text = "Everything must go."

	ares, err := o.Score(context.Background(), aligned)
	require.NoError(t, err)
	mres, err := o.Score(context.Background(), misaligned)
	require.NoError(t, err)

	assert.Greater(t, ares.Scores.Alignment, mres.Scores.Alignment)
}

func TestHeuristic_NarrowAgeBandRaisesFit(t *testing.T) {
	o := NewHeuristicOracle()

	narrow := validInput()
	narrow.Targeting = &creative.AdSet{AgeMin: 25, AgeMax: 30}
	broad := validInput()
	broad.Targeting = &creative.AdSet{AgeMin: 18, AgeMax: 65}

	nres, err := o.Score(context.Background(), narrow)
	require.NoError(t, err)
	bres, err := o.Score(context.Background(), broad)
	require.NoError(t, err)

	assert.Greater(t, nres.Scores.Fit, bres.Scores.Fit)
}

func TestHeuristic_ActionVerbCTAScoresClarity(t *testing.T) {
	o := NewHeuristicOracle()

	verb := validInput()
	verb.CTA = creative.CTAShopNow
	verb.Headline.Text = "New arrivals"

	vague := validInput()
	vague.CTA = creative.CTAType("MORE_INFO")
	vague.Headline.Text = "New arrivals"

	vres, err := o.Score(context.Background(), verb)
	require.NoError(t, err)
	qres, err := o.Score(context.Background(), vague)
	require.NoError(t, err)

	assert.Greater(t, vres.Scores.Clarity, qres.Scores.Clarity)
}

func TestHeuristic_AwarenessStageMatch(t *testing.T) {
	o := NewHeuristicOracle()

	exact := validInput()
	exact.Body.Awareness = creative.StageSolutionAware
	exact.Targeting.Awareness = creative.StageSolutionAware

	far := validInput()
	far.Body.Awareness = creative.StageMostAware
	far.Targeting.Awareness = creative.StageUnaware

	eres, err := o.Score(context.Background(), exact)
	require.NoError(t, err)
	fres, err := o.Score(context.Background(), far)
	require.NoError(t, err)

	assert.Equal(t, 90.0, eres.Scores.Match)
	assert.Equal(t, 45.0, fres.Scores.Match)
	assert.Greater(t, eres.Scores.Match, fres.Scores.Match)
}

func TestHeuristic_MissingComponentFailsScoring(t *testing.T) {
	o := NewHeuristicOracle()

	in := validInput()
	in.Asset = nil

	_, err := o.Score(context.Background(), in)
	var sf *creative.ScoringFailedError
	assert.True(t, errors.As(err, &sf))
}

func TestHeuristic_RespectsCancelledContext(t *testing.T) {
	o := NewHeuristicOracle()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Score(ctx, validInput())
	assert.ErrorIs(t, err, context.Canceled)
}
