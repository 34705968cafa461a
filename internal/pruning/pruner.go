// Package pruning runs the score-and-filter pass over one adset's
// generated combinations: every combination is scored through the
// configured oracle, combinations below the threshold are deleted, and
// the whole run streams events through a progress channel so callers
// (SSE handler, TUI) can render it live.
package pruning

import (
	"context"
	"fmt"
	"time"

	"adforge/internal/creative"
	"adforge/internal/logging"
	"adforge/internal/progress"
	"adforge/internal/scoring"
)

// DefaultMinScore is the pruning threshold when the caller passes none.
const DefaultMinScore = 70

// DefaultItemTimeout bounds one oracle call.
const DefaultItemTimeout = 30 * time.Second

// CombinationStore is the slice of the store the pipeline reads and
// mutates. Implemented by internal/store.
type CombinationStore interface {
	ListByAdSet(ctx context.Context, adsetID string) ([]creative.Combination, error)
	UpdateScores(ctx context.Context, id string, scores creative.ScoreBreakdown, overall int, predictedCTR float64) error
	Delete(ctx context.Context, id string) error
}

// ComponentResolver resolves a combination's component references for
// the oracle. Implemented by internal/store.
type ComponentResolver interface {
	GetAsset(ctx context.Context, id string) (*creative.Asset, error)
	GetCopyItem(ctx context.Context, id string) (*creative.CopyItem, error)
	GetAdSet(ctx context.Context, id string) (*creative.AdSet, error)
}

// Summary is the terminal accounting of one prune run. The counters
// satisfy Scored == Deleted + Kept: a combination that was scored was
// either removed or retained, and scoring failures count in neither.
type Summary struct {
	AdSetID    string
	Total      int
	Scored     int
	Deleted    int
	Kept       int
	DeletedIDs []string
	MinScore   int
}

// Pipeline scores and prunes combinations strictly sequentially.
type Pipeline struct {
	store       CombinationStore
	components  ComponentResolver
	oracle      scoring.Oracle
	itemTimeout time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithItemTimeout overrides the per-item oracle timeout.
func WithItemTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.itemTimeout = d
		}
	}
}

// New creates a Pipeline.
func New(store CombinationStore, components ComponentResolver, oracle scoring.Oracle, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       store,
		components:  components,
		oracle:      oracle,
		itemTimeout: DefaultItemTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prune scores every combination of the adset in store order, deletes
// the ones below minScore, and streams events on ch. The channel is
// closed when the run ends, including on fatal errors and cancellation.
// Deployed combinations are scored for reporting but never mutated:
// their persisted scores stay untouched and they always count as kept.
//
// A negative minScore means "not specified" and takes DefaultMinScore.
// An explicit 0 is honored: every score satisfies 0 <= score, so
// nothing is deleted.
func (p *Pipeline) Prune(ctx context.Context, adsetID string, minScore int, ch *progress.Channel) (*Summary, error) {
	defer ch.Close()

	if minScore < 0 {
		minScore = DefaultMinScore
	}

	timer := logging.StartTimer(logging.CategoryPruning, "Prune")
	defer timer.Stop()

	combos, err := p.store.ListByAdSet(ctx, adsetID)
	if err != nil {
		return nil, fmt.Errorf("listing combinations for adset %s: %w", adsetID, err)
	}

	summary := &Summary{AdSetID: adsetID, Total: len(combos), MinScore: minScore}

	if len(combos) == 0 {
		p.emitDone(ch, summary, true, "no combinations to prune")
		return summary, nil
	}

	adset, err := p.components.GetAdSet(ctx, adsetID)
	if err != nil {
		return nil, fmt.Errorf("loading adset %s: %w", adsetID, err)
	}

	for i, combo := range combos {
		if err := ctx.Err(); err != nil {
			logging.Pruning("prune of adset %s cancelled at item %d/%d", adsetID, i, len(combos))
			return summary, err
		}

		ch.Emit(progress.Event{Name: progress.EventProgress, Payload: progress.ProgressPayload{
			Type:     "progress",
			Message:  fmt.Sprintf("Scoring combination %d of %d", i+1, len(combos)),
			Progress: i + 1,
			Total:    len(combos),
			Scored:   summary.Scored,
			Deleted:  summary.Deleted,
			Kept:     summary.Kept,
		}})

		result, err := p.scoreOne(ctx, adset, &combo)
		if err != nil {
			logging.Pruning("scoring %s failed: %v", combo.ID, err)
			ch.Emit(progress.Event{Name: progress.EventError, Payload: progress.ErrorPayload{
				Index:         i,
				CombinationID: combo.ID,
				Message:       err.Error(),
			}})
			continue
		}
		summary.Scored++

		if combo.Deployed {
			// Deployed rows are immutable; report the fresh score but
			// leave the row alone.
			summary.Kept++
			p.emitComplete(ch, summary, i, combo.ID, result.OverallScore, progress.OutcomeKept,
				fmt.Sprintf("Kept deployed combination (score %d)", result.OverallScore))
			continue
		}

		if err := p.store.UpdateScores(ctx, combo.ID, result.Scores, result.OverallScore, result.PredictedCTR); err != nil {
			summary.Scored--
			ch.Emit(progress.Event{Name: progress.EventError, Payload: progress.ErrorPayload{
				Index:         i,
				CombinationID: combo.ID,
				Message:       fmt.Sprintf("persisting scores: %v", err),
			}})
			continue
		}

		if result.OverallScore < minScore {
			if err := p.store.Delete(ctx, combo.ID); err != nil {
				summary.Scored--
				ch.Emit(progress.Event{Name: progress.EventError, Payload: progress.ErrorPayload{
					Index:         i,
					CombinationID: combo.ID,
					Message:       fmt.Sprintf("deleting combination: %v", err),
				}})
				continue
			}
			summary.Deleted++
			summary.DeletedIDs = append(summary.DeletedIDs, combo.ID)
			p.emitComplete(ch, summary, i, combo.ID, result.OverallScore, progress.OutcomeDeleted,
				fmt.Sprintf("Deleted combination (score %d below threshold %d)", result.OverallScore, minScore))
		} else {
			summary.Kept++
			p.emitComplete(ch, summary, i, combo.ID, result.OverallScore, progress.OutcomeKept,
				fmt.Sprintf("Kept combination (score %d)", result.OverallScore))
		}
	}

	logging.Pruning("pruned adset %s: total=%d scored=%d deleted=%d kept=%d min=%d oracle=%s",
		adsetID, summary.Total, summary.Scored, summary.Deleted, summary.Kept, minScore, p.oracle.Name())
	p.emitDone(ch, summary, true,
		fmt.Sprintf("Pruning complete: %d scored, %d deleted, %d kept", summary.Scored, summary.Deleted, summary.Kept))
	return summary, nil
}

// scoreOne resolves the combination's components and runs the oracle
// under the per-item timeout.
func (p *Pipeline) scoreOne(ctx context.Context, adset *creative.AdSet, combo *creative.Combination) (*scoring.Result, error) {
	in := scoring.Input{CTA: combo.CTAType, Targeting: adset}

	if len(combo.AssetIDs) > 0 {
		asset, err := p.components.GetAsset(ctx, combo.AssetIDs[0])
		if err != nil {
			return nil, fmt.Errorf("resolving asset %s: %w", combo.AssetIDs[0], err)
		}
		in.Asset = asset
	}
	headline, err := p.components.GetCopyItem(ctx, combo.HeadlineID)
	if err != nil {
		return nil, fmt.Errorf("resolving headline %s: %w", combo.HeadlineID, err)
	}
	in.Headline = headline

	body, err := p.components.GetCopyItem(ctx, combo.BodyID)
	if err != nil {
		return nil, fmt.Errorf("resolving body %s: %w", combo.BodyID, err)
	}
	in.Body = body

	if combo.DescriptionID != "" {
		desc, err := p.components.GetCopyItem(ctx, combo.DescriptionID)
		if err != nil {
			return nil, fmt.Errorf("resolving description %s: %w", combo.DescriptionID, err)
		}
		in.Description = desc
	}

	scoreCtx, cancel := context.WithTimeout(ctx, p.itemTimeout)
	defer cancel()
	return p.oracle.Score(scoreCtx, in)
}

func (p *Pipeline) emitComplete(ch *progress.Channel, s *Summary, index int, comboID string, score int, outcome, msg string) {
	ch.Emit(progress.Event{Name: progress.EventComplete, Payload: progress.CompletePayload{
		Type:          outcome,
		Index:         index,
		CombinationID: comboID,
		Score:         score,
		Message:       msg,
		Progress:      index + 1,
		Total:         s.Total,
		Scored:        s.Scored,
		Deleted:       s.Deleted,
		Kept:          s.Kept,
	}})
}

func (p *Pipeline) emitDone(ch *progress.Channel, s *Summary, success bool, msg string) {
	ch.Emit(progress.Event{Name: progress.EventDone, Payload: progress.DonePayload{
		Success:           success,
		Message:           msg,
		TotalCombinations: s.Total,
		Scored:            s.Scored,
		Deleted:           s.Deleted,
		Kept:              s.Kept,
		DeletedIDs:        s.DeletedIDs,
		MinScore:          s.MinScore,
	}})
}
