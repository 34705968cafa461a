package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/internal/creative"
)

// mockLLMClient implements llm.Client for testing.
type mockLLMClient struct {
	completeFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt)
	}
	return "", nil
}

func (m *mockLLMClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, userPrompt)
	}
	return "", nil
}

func TestLLMOracle_ParsesModelBreakdown(t *testing.T) {
	client := &mockLLMClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"hook": 80, "alignment": 60, "fit": 70, "clarity": 90, "match": 50}`, nil
		},
	}
	o := NewLLMOracle(client)

	res, err := o.Score(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 80.0, res.Scores.Hook)
	assert.Equal(t, 70, res.OverallScore)
	assert.InDelta(t, 7.0, res.PredictedCTR, 0.001)
}

func TestLLMOracle_StripsCodeFences(t *testing.T) {
	client := &mockLLMClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "```json\n{\"hook\": 100, \"alignment\": 100, \"fit\": 100, \"clarity\": 100, \"match\": 100}\n```", nil
		},
	}
	o := NewLLMOracle(client)

	res, err := o.Score(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 100, res.OverallScore)
}

func TestLLMOracle_ClampsOutOfRangeScores(t *testing.T) {
	client := &mockLLMClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"hook": 250, "alignment": -40, "fit": 50, "clarity": 50, "match": 50}`, nil
		},
	}
	o := NewLLMOracle(client)

	res, err := o.Score(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Scores.Hook)
	assert.Equal(t, 0.0, res.Scores.Alignment)
}

func TestLLMOracle_CallFailureFallsBackToHeuristic(t *testing.T) {
	client := &mockLLMClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	o := NewLLMOracle(client)

	got, err := o.Score(context.Background(), validInput())
	require.NoError(t, err)

	// The fallback is the deterministic heuristic, not random values.
	want, err := NewHeuristicOracle().Score(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLLMOracle_GarbageReplyFallsBackToHeuristic(t *testing.T) {
	client := &mockLLMClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "I would rate this ad quite highly overall.", nil
		},
	}
	o := NewLLMOracle(client)

	got, err := o.Score(context.Background(), validInput())
	require.NoError(t, err)

	want, err := NewHeuristicOracle().Score(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLLMOracle_MissingComponentFailsBeforeCall(t *testing.T) {
	called := false
	client := &mockLLMClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			called = true
			return "{}", nil
		},
	}
	o := NewLLMOracle(client)

	in := validInput()
	in.Body = nil
	_, err := o.Score(context.Background(), in)

	var sf *creative.ScoringFailedError
	assert.True(t, errors.As(err, &sf))
	assert.False(t, called, "oracle must not burn an API call on unscorable input")
}

func TestBuildScoringPrompt_IncludesComponents(t *testing.T) {
	prompt := buildScoringPrompt(validInput())
	assert.Contains(t, prompt, "summer splash")
	assert.Contains(t, prompt, "Get your summer started")
	assert.Contains(t, prompt, "SHOP_NOW")
	assert.Contains(t, prompt, "ages 25-34")
}
