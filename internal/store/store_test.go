package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/internal/creative"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedComponents(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.UpsertAdSet(ctx, creative.AdSet{
		ID: "adset-1", Name: "prospecting", AgeMin: 25, AgeMax: 34,
		Interests: []string{"fitness"}, Locations: []string{"US"},
		Awareness: creative.StageSolutionAware, DestinationURL: "https://example.com",
	}))
	require.NoError(t, s.UpsertAsset(ctx, creative.Asset{
		ID: "a-1", Type: creative.AssetImage, Label: "hero shot", Themes: []string{"fitness"},
	}))
	require.NoError(t, s.UpsertAsset(ctx, creative.Asset{
		ID: "a-2", Type: creative.AssetVideo, Label: "demo clip",
	}))
	require.NoError(t, s.UpsertCopyItem(ctx, creative.CopyItem{
		ID: "h-1", Kind: creative.CopyHeadline, Text: "Get fit fast",
	}))
	require.NoError(t, s.UpsertCopyItem(ctx, creative.CopyItem{
		ID: "b-1", Kind: creative.CopyBody, Text: "Train smarter with us.",
	}))
}

func testCombination(adsetID string) creative.Combination {
	return creative.Combination{
		ID:         uuid.NewString(),
		AdSetID:    adsetID,
		AssetIDs:   []string{"a-1"},
		HeadlineID: "h-1",
		BodyID:     "b-1",
		CTAType:    creative.CTALearnMore,
		URL:        "https://example.com",
	}
}

func TestComponents_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	assets, err := s.GetAssets(ctx, []string{"a-1", "a-2"})
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	// Stale ids simply resolve to fewer rows.
	assets, err = s.GetAssets(ctx, []string{"a-1", "missing"})
	require.NoError(t, err)
	assert.Len(t, assets, 1)

	heads, err := s.GetCopyItems(ctx, []string{"h-1", "b-1"}, creative.CopyHeadline)
	require.NoError(t, err)
	assert.Len(t, heads, 1, "kind filter must exclude the body")

	adset, err := s.GetAdSet(ctx, "adset-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fitness"}, adset.Interests)
	assert.Equal(t, creative.StageSolutionAware, adset.Awareness)

	_, err = s.GetAdSet(ctx, "missing")
	assert.ErrorIs(t, err, creative.ErrNotFound)
}

func TestReplaceForAdSet_ReplacesNotAppends(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	first := []creative.Combination{testCombination("adset-1"), testCombination("adset-1")}
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", first))

	second := []creative.Combination{
		testCombination("adset-1"), testCombination("adset-1"), testCombination("adset-1"),
	}
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", second))

	n, err := s.CountByAdSet(ctx, "adset-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "second generate must replace, not append")
}

func TestReplaceForAdSet_DeployedSurvivesReplace(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	deployed := testCombination("adset-1")
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", []creative.Combination{deployed}))
	require.NoError(t, s.MarkDeployed(ctx, deployed.ID))

	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", []creative.Combination{testCombination("adset-1")}))

	combos, err := s.ListByAdSet(ctx, "adset-1")
	require.NoError(t, err)
	assert.Len(t, combos, 2)

	got, err := s.GetCombination(ctx, deployed.ID)
	require.NoError(t, err)
	assert.True(t, got.Deployed)
}

func TestReplaceForAdSet_InsertFailureIsGenerationIncomplete(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	dup := testCombination("adset-1")
	combos := []creative.Combination{dup, dup} // primary key collision on second insert

	err := s.ReplaceForAdSet(ctx, "adset-1", combos)
	var gi *creative.GenerationIncompleteError
	require.True(t, errors.As(err, &gi))
	assert.Equal(t, "adset-1", gi.AdSetID)
}

func TestListByAdSet_StableOrder(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	combos := []creative.Combination{
		testCombination("adset-1"), testCombination("adset-1"), testCombination("adset-1"),
	}
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", combos))

	first, err := s.ListByAdSet(ctx, "adset-1")
	require.NoError(t, err)
	second, err := s.ListByAdSet(ctx, "adset-1")
	require.NoError(t, err)

	require.Len(t, first, 3)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestUpdateScores(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	c := testCombination("adset-1")
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", []creative.Combination{c}))

	scores := creative.ScoreBreakdown{Hook: 80, Alignment: 60, Fit: 70, Clarity: 90, Match: 50}
	require.NoError(t, s.UpdateScores(ctx, c.ID, scores, 70, 7.0))

	got, err := s.GetCombination(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, scores, got.Scores)
	assert.Equal(t, 70, got.OverallScore)
	assert.InDelta(t, 7.0, got.PredictedCTR, 0.001)

	assert.ErrorIs(t, s.UpdateScores(ctx, "missing", scores, 70, 7.0), creative.ErrNotFound)
}

func TestDeployedCombinationIsImmutable(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	c := testCombination("adset-1")
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", []creative.Combination{c}))
	require.NoError(t, s.MarkDeployed(ctx, c.ID))

	scores := creative.ScoreBreakdown{Hook: 1}
	assert.ErrorIs(t, s.UpdateScores(ctx, c.ID, scores, 1, 0.1), creative.ErrDeployedImmutable)
	assert.ErrorIs(t, s.Delete(ctx, c.ID), creative.ErrDeployedImmutable)

	// Still present.
	_, err := s.GetCombination(ctx, c.ID)
	assert.NoError(t, err)
}

func TestDelete_NotFoundDistinctFromImmutable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, creative.ErrNotFound)
	assert.NotErrorIs(t, err, creative.ErrDeployedImmutable)
}

func TestBulkDelete_SkipsDeployed(t *testing.T) {
	s := openTestStore(t)
	seedComponents(t, s)
	ctx := context.Background()

	a := testCombination("adset-1")
	b := testCombination("adset-1")
	c := testCombination("adset-1")
	require.NoError(t, s.ReplaceForAdSet(ctx, "adset-1", []creative.Combination{a, b, c}))
	require.NoError(t, s.MarkDeployed(ctx, b.ID))

	deleted, err := s.BulkDelete(ctx, []string{a.ID, b.ID, c.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// Deployed row survives.
	_, err = s.GetCombination(ctx, b.ID)
	assert.NoError(t, err)
}

func TestMigrations_Idempotent(t *testing.T) {
	s := openTestStore(t)
	// A second pass over an up-to-date schema must be a no-op.
	require.NoError(t, s.applyMigrations())
}
