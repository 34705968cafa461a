package pruning

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"adforge/internal/creative"
	"adforge/internal/progress"
	"adforge/internal/scoring"
)

func TestMain(m *testing.M) {
	// opencensus starts a background worker at package init that can
	// never be stopped; ignore it so goleak only flags our goroutines.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// mockStore implements CombinationStore and ComponentResolver over
// in-memory state.
type mockStore struct {
	combos  []creative.Combination
	adset   *creative.AdSet
	deleted []string
	updated map[string]int

	updateErr error
	deleteErr error
}

func newMockStore(adset *creative.AdSet, combos ...creative.Combination) *mockStore {
	return &mockStore{combos: combos, adset: adset, updated: make(map[string]int)}
}

func (m *mockStore) ListByAdSet(ctx context.Context, adsetID string) ([]creative.Combination, error) {
	var out []creative.Combination
	for _, c := range m.combos {
		if c.AdSetID == adsetID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateScores(ctx context.Context, id string, scores creative.ScoreBreakdown, overall int, predictedCTR float64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated[id] = overall
	return nil
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockStore) GetAsset(ctx context.Context, id string) (*creative.Asset, error) {
	return &creative.Asset{ID: id, Type: creative.AssetImage}, nil
}

func (m *mockStore) GetCopyItem(ctx context.Context, id string) (*creative.CopyItem, error) {
	return &creative.CopyItem{ID: id, Kind: creative.CopyHeadline, Text: "text"}, nil
}

func (m *mockStore) GetAdSet(ctx context.Context, id string) (*creative.AdSet, error) {
	if m.adset == nil || m.adset.ID != id {
		return nil, creative.ErrNotFound
	}
	return m.adset, nil
}

// fixedOracle returns a canned score per combination id, keyed by the
// headline id the pipeline resolves.
type fixedOracle struct {
	scores map[string]int   // headline id -> overall
	fail   map[string]error // headline id -> scoring error
	calls  int
}

func (f *fixedOracle) Score(ctx context.Context, in scoring.Input) (*scoring.Result, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.fail[in.Headline.ID]; ok {
		return nil, err
	}
	overall := f.scores[in.Headline.ID]
	return &scoring.Result{
		Scores:       creative.ScoreBreakdown{Hook: float64(overall), Alignment: float64(overall), Fit: float64(overall), Clarity: float64(overall), Match: float64(overall)},
		OverallScore: overall,
		PredictedCTR: float64(overall) / 10,
	}, nil
}

func (f *fixedOracle) Name() string { return "fixed" }

func testCombo(id, adsetID, headlineID string) creative.Combination {
	return creative.Combination{
		ID:         id,
		AdSetID:    adsetID,
		AssetIDs:   []string{"asset-1"},
		HeadlineID: headlineID,
		BodyID:     "body-1",
		CTAType:    creative.DefaultCTA,
	}
}

func drain(ch *progress.Channel) []progress.Event {
	var events []progress.Event
	for ev := range ch.Events() {
		events = append(events, ev)
	}
	return events
}

func runPrune(t *testing.T, p *Pipeline, adsetID string, minScore int) (*Summary, []progress.Event, error) {
	t.Helper()
	ch := progress.NewChannel(256)
	summary, err := p.Prune(context.Background(), adsetID, minScore, ch)
	return summary, drain(ch), err
}

func TestPrune_DeletesBelowThreshold(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset,
		testCombo("combo-1", "adset-1", "h-1"),
		testCombo("combo-2", "adset-1", "h-2"),
		testCombo("combo-3", "adset-1", "h-3"),
	)
	oracle := &fixedOracle{scores: map[string]int{"h-1": 90, "h-2": 50, "h-3": 71}}

	summary, events, err := runPrune(t, New(store, store, oracle), "adset-1", 70)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Scored)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 2, summary.Kept)
	assert.Equal(t, []string{"combo-2"}, summary.DeletedIDs)
	assert.Equal(t, summary.Scored, summary.Deleted+summary.Kept)

	assert.Equal(t, []string{"combo-2"}, store.deleted)
	// Scores persist for every scored combination, deleted ones included.
	assert.Equal(t, map[string]int{"combo-1": 90, "combo-2": 50, "combo-3": 71}, store.updated)

	// Event shape: progress+complete per item, one terminal done.
	require.Len(t, events, 7)
	last := events[len(events)-1]
	assert.Equal(t, progress.EventDone, last.Name)
	done := last.Payload.(progress.DonePayload)
	assert.True(t, done.Success)
	assert.Equal(t, 70, done.MinScore)
	assert.Equal(t, []string{"combo-2"}, done.DeletedIDs)

	deleted := events[3].Payload.(progress.CompletePayload)
	assert.Equal(t, progress.OutcomeDeleted, deleted.Type)
	assert.Equal(t, "combo-2", deleted.CombinationID)
	assert.Equal(t, 50, deleted.Score)
}

func TestPrune_ScoringFailureIsNonFatal(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset,
		testCombo("combo-1", "adset-1", "h-1"),
		testCombo("combo-2", "adset-1", "h-2"),
		testCombo("combo-3", "adset-1", "h-3"),
	)
	oracle := &fixedOracle{
		scores: map[string]int{"h-1": 80, "h-3": 85},
		fail:   map[string]error{"h-2": &creative.ScoringFailedError{Reason: "model unavailable"}},
	}

	summary, events, err := runPrune(t, New(store, store, oracle), "adset-1", 70)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Scored)
	assert.Equal(t, 0, summary.Deleted)
	assert.Equal(t, 2, summary.Kept)
	assert.Equal(t, summary.Scored, summary.Deleted+summary.Kept)

	var errEvents []progress.ErrorPayload
	for _, ev := range events {
		if ev.Name == progress.EventError {
			errEvents = append(errEvents, ev.Payload.(progress.ErrorPayload))
		}
	}
	require.Len(t, errEvents, 1)
	assert.Equal(t, 1, errEvents[0].Index)
	assert.Equal(t, "combo-2", errEvents[0].CombinationID)
	assert.Contains(t, errEvents[0].Message, "model unavailable")

	// The run still terminates with done.
	assert.Equal(t, progress.EventDone, events[len(events)-1].Name)
}

func TestPrune_EmptySetEmitsOnlyDone(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset)
	oracle := &fixedOracle{scores: map[string]int{}}

	summary, events, err := runPrune(t, New(store, store, oracle), "adset-1", 70)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Scored)
	require.Len(t, events, 1)
	assert.Equal(t, progress.EventDone, events[0].Name)
	done := events[0].Payload.(progress.DonePayload)
	assert.True(t, done.Success)
	assert.Zero(t, done.TotalCombinations)
	assert.Zero(t, oracle.calls)
}

func TestPrune_DeployedCombinationIsNeverMutated(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	deployed := testCombo("combo-live", "adset-1", "h-1")
	deployed.Deployed = true
	store := newMockStore(adset,
		deployed,
		testCombo("combo-2", "adset-1", "h-2"),
	)
	// Both score below threshold; only the undeployed one goes.
	oracle := &fixedOracle{scores: map[string]int{"h-1": 10, "h-2": 20}}

	summary, events, err := runPrune(t, New(store, store, oracle), "adset-1", 70)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scored)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 1, summary.Kept)
	assert.Equal(t, []string{"combo-2"}, store.deleted)
	assert.NotContains(t, store.updated, "combo-live")

	kept := events[1].Payload.(progress.CompletePayload)
	assert.Equal(t, progress.OutcomeKept, kept.Type)
	assert.Equal(t, "combo-live", kept.CombinationID)
}

func TestPrune_PersistFailureCountsAsError(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset, testCombo("combo-1", "adset-1", "h-1"))
	store.updateErr = errors.New("disk full")
	oracle := &fixedOracle{scores: map[string]int{"h-1": 90}}

	summary, events, err := runPrune(t, New(store, store, oracle), "adset-1", 70)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Scored)
	assert.Equal(t, 0, summary.Kept)
	assert.Equal(t, summary.Scored, summary.Deleted+summary.Kept)

	var sawError bool
	for _, ev := range events {
		if ev.Name == progress.EventError {
			sawError = true
			assert.Contains(t, ev.Payload.(progress.ErrorPayload).Message, "disk full")
		}
	}
	assert.True(t, sawError)
}

func TestPrune_DefaultMinScoreApplied(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset, testCombo("combo-1", "adset-1", "h-1"))
	oracle := &fixedOracle{scores: map[string]int{"h-1": 69}}

	summary, _, err := runPrune(t, New(store, store, oracle), "adset-1", -1)
	require.NoError(t, err)

	assert.Equal(t, DefaultMinScore, summary.MinScore)
	assert.Equal(t, 1, summary.Deleted)
}

func TestPrune_ExplicitZeroThresholdDeletesNothing(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset, testCombo("combo-1", "adset-1", "h-1"))
	oracle := &fixedOracle{scores: map[string]int{"h-1": 50}}

	summary, events, err := runPrune(t, New(store, store, oracle), "adset-1", 0)
	require.NoError(t, err)

	// 0 is a real threshold, not "use the default": every score
	// satisfies 0 <= score, so everything is kept.
	assert.Equal(t, 0, summary.MinScore)
	assert.Equal(t, 0, summary.Deleted)
	assert.Equal(t, 1, summary.Kept)
	assert.Empty(t, store.deleted)

	done := events[len(events)-1].Payload.(progress.DonePayload)
	assert.Equal(t, 0, done.MinScore)
}

func TestPrune_CancellationStopsRun(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	var combos []creative.Combination
	scores := make(map[string]int)
	for i := 0; i < 5; i++ {
		hid := fmt.Sprintf("h-%d", i)
		combos = append(combos, testCombo(fmt.Sprintf("combo-%d", i), "adset-1", hid))
		scores[hid] = 80
	}
	store := newMockStore(adset, combos...)
	oracle := &fixedOracle{scores: scores}
	p := New(store, store, oracle)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := progress.NewChannel(256)
	summary, err := p.Prune(ctx, "adset-1", 70, ch)
	drain(ch)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Scored)
	assert.Zero(t, oracle.calls)
}

func TestPrune_ChannelClosedOnReturn(t *testing.T) {
	adset := &creative.AdSet{ID: "adset-1"}
	store := newMockStore(adset)
	p := New(store, store, &fixedOracle{})

	ch := progress.NewChannel(16)
	_, err := p.Prune(context.Background(), "adset-1", 70, ch)
	require.NoError(t, err)

	drain(ch)
	_, open := <-ch.Events()
	assert.False(t, open)
}
