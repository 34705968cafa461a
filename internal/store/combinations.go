package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adforge/internal/creative"
	"adforge/internal/logging"
)

// ReplaceForAdSet deletes all prior combinations for the adset, then
// bulk-inserts the new set (replace-all semantics, not additive).
// Deployed combinations are immutable and survive the replace.
//
// The delete and the inserts are deliberately not one transaction: the
// upstream contract documents the crash window between them. An insert
// failure after the delete is surfaced as GenerationIncompleteError so
// operators can detect and re-run instead of silently losing the set.
func (s *Store) ReplaceForAdSet(ctx context.Context, adsetID string, combos []creative.Combination) error {
	timer := logging.StartTimer(logging.CategoryStore, "ReplaceForAdSet")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM combinations WHERE adset_id = ? AND deployed = 0", adsetID)
	if err != nil {
		return fmt.Errorf("deleting prior combinations for adset %s: %w", adsetID, err)
	}
	if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
		logging.Store("replaced %d prior combinations for adset %s", deleted, adsetID)
	}

	for i := range combos {
		if err := s.insertCombination(ctx, &combos[i]); err != nil {
			return &creative.GenerationIncompleteError{AdSetID: adsetID, Err: err}
		}
	}
	return nil
}

func (s *Store) insertCombination(ctx context.Context, c *creative.Combination) error {
	assetIDs, err := json.Marshal(c.AssetIDs)
	if err != nil {
		return fmt.Errorf("encoding asset ids: %w", err)
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO combinations (
			id, adset_id, asset_ids, headline_id, body_id, description_id,
			cta_type, url,
			score_hook, score_alignment, score_fit, score_clarity, score_match,
			overall_score, predicted_ctr, deployed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AdSetID, string(assetIDs), c.HeadlineID, c.BodyID, c.DescriptionID,
		string(c.CTAType), c.URL,
		c.Scores.Hook, c.Scores.Alignment, c.Scores.Fit, c.Scores.Clarity, c.Scores.Match,
		c.OverallScore, c.PredictedCTR, boolToInt(c.Deployed), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting combination %s: %w", c.ID, err)
	}
	return nil
}

// ListByAdSet returns all combinations for an adset in insertion order.
// The pruning pipeline depends on this order being stable run to run.
func (s *Store) ListByAdSet(ctx context.Context, adsetID string) ([]creative.Combination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, adset_id, asset_ids, headline_id, body_id, description_id,
			cta_type, url,
			score_hook, score_alignment, score_fit, score_clarity, score_match,
			overall_score, predicted_ctr, deployed, created_at, updated_at
		FROM combinations WHERE adset_id = ?
		ORDER BY created_at, id`, adsetID)
	if err != nil {
		return nil, fmt.Errorf("listing combinations for adset %s: %w", adsetID, err)
	}
	defer rows.Close()

	var out []creative.Combination
	for rows.Next() {
		c, err := scanCombination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetCombination returns one combination by id.
func (s *Store) GetCombination(ctx context.Context, id string) (*creative.Combination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCombinationLocked(ctx, id)
}

func (s *Store) getCombinationLocked(ctx context.Context, id string) (*creative.Combination, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, adset_id, asset_ids, headline_id, body_id, description_id,
			cta_type, url,
			score_hook, score_alignment, score_fit, score_clarity, score_match,
			overall_score, predicted_ctr, deployed, created_at, updated_at
		FROM combinations WHERE id = ?`, id)
	c, err := scanCombination(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, creative.ErrNotFound
	}
	return c, err
}

// UpdateScores persists a scoring verdict on one combination.
// Deployed combinations are immutable.
func (s *Store) UpdateScores(ctx context.Context, id string, scores creative.ScoreBreakdown, overall int, predictedCTR float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getCombinationLocked(ctx, id)
	if err != nil {
		return err
	}
	if existing.Deployed {
		return creative.ErrDeployedImmutable
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE combinations SET
			score_hook = ?, score_alignment = ?, score_fit = ?,
			score_clarity = ?, score_match = ?,
			overall_score = ?, predicted_ctr = ?, updated_at = ?
		WHERE id = ?`,
		scores.Hook, scores.Alignment, scores.Fit, scores.Clarity, scores.Match,
		overall, predictedCTR, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating scores for combination %s: %w", id, err)
	}
	return nil
}

// Delete removes one combination. Deployed combinations are rejected
// with ErrDeployedImmutable, never conflated with ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getCombinationLocked(ctx, id)
	if err != nil {
		return err
	}
	if existing.Deployed {
		return creative.ErrDeployedImmutable
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM combinations WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting combination %s: %w", id, err)
	}
	return nil
}

// BulkDelete removes the given combinations, silently skipping any that
// are deployed or already gone. Returns the count actually deleted.
func (s *Store) BulkDelete(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM combinations WHERE id = ? AND deployed = 0", id)
		if err != nil {
			return deleted, fmt.Errorf("bulk deleting combination %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += int(n)
		}
	}
	logging.Store("bulk delete removed %d of %d combinations", deleted, len(ids))
	return deleted, nil
}

// MarkDeployed flips a combination into its terminal immutable state.
func (s *Store) MarkDeployed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE combinations SET deployed = 1, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("marking combination %s deployed: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return creative.ErrNotFound
	}
	return nil
}

// CountByAdSet returns how many combinations the adset currently has.
func (s *Store) CountByAdSet(ctx context.Context, adsetID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM combinations WHERE adset_id = ?", adsetID).Scan(&n)
	return n, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCombination(row scanner) (*creative.Combination, error) {
	var c creative.Combination
	var assetIDs, ctaType string
	var deployed int
	err := row.Scan(
		&c.ID, &c.AdSetID, &assetIDs, &c.HeadlineID, &c.BodyID, &c.DescriptionID,
		&ctaType, &c.URL,
		&c.Scores.Hook, &c.Scores.Alignment, &c.Scores.Fit, &c.Scores.Clarity, &c.Scores.Match,
		&c.OverallScore, &c.PredictedCTR, &deployed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(assetIDs), &c.AssetIDs); err != nil {
		return nil, fmt.Errorf("decoding asset ids for combination %s: %w", c.ID, err)
	}
	c.CTAType = creative.CTAType(ctaType)
	c.Deployed = deployed != 0
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
