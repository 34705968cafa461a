package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"adforge/internal/creative"
)

// UpsertAsset inserts or replaces an asset.
func (s *Store) UpsertAsset(ctx context.Context, a creative.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	themes, err := json.Marshal(a.Themes)
	if err != nil {
		return fmt.Errorf("encoding themes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assets (id, type, url, label, themes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type, url = excluded.url,
			label = excluded.label, themes = excluded.themes`,
		a.ID, string(a.Type), a.URL, a.Label, string(themes))
	if err != nil {
		return fmt.Errorf("upserting asset %s: %w", a.ID, err)
	}
	return nil
}

// GetAssets resolves the given ids. Missing ids are simply absent from
// the result; callers compare counts to detect stale selections.
func (s *Store) GetAssets(ctx context.Context, ids []string) ([]creative.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(
		"SELECT id, type, url, label, themes FROM assets WHERE id IN (%s)",
		placeholders(len(ids)))
	rows, err := s.db.QueryContext(ctx, query, toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var out []creative.Asset
	for rows.Next() {
		var a creative.Asset
		var atype, themes string
		if err := rows.Scan(&a.ID, &atype, &a.URL, &a.Label, &themes); err != nil {
			return nil, err
		}
		a.Type = creative.AssetType(atype)
		if err := json.Unmarshal([]byte(themes), &a.Themes); err != nil {
			return nil, fmt.Errorf("decoding themes for asset %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAsset resolves a single asset id.
func (s *Store) GetAsset(ctx context.Context, id string) (*creative.Asset, error) {
	assets, err := s.GetAssets(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, creative.ErrNotFound
	}
	return &assets[0], nil
}

// UpsertCopyItem inserts or replaces a copy item.
func (s *Store) UpsertCopyItem(ctx context.Context, c creative.CopyItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO copy_items (id, kind, text, awareness)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind, text = excluded.text,
			awareness = excluded.awareness`,
		c.ID, string(c.Kind), c.Text, string(c.Awareness))
	if err != nil {
		return fmt.Errorf("upserting copy item %s: %w", c.ID, err)
	}
	return nil
}

// GetCopyItems resolves the given ids, restricted to one kind. Missing
// or wrong-kind ids are absent from the result.
func (s *Store) GetCopyItems(ctx context.Context, ids []string, kind creative.CopyKind) ([]creative.CopyItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(
		"SELECT id, kind, text, awareness FROM copy_items WHERE kind = ? AND id IN (%s)",
		placeholders(len(ids)))
	args := append([]any{string(kind)}, toAnySlice(ids)...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying copy items: %w", err)
	}
	defer rows.Close()

	var out []creative.CopyItem
	for rows.Next() {
		var c creative.CopyItem
		var ckind, awareness string
		if err := rows.Scan(&c.ID, &ckind, &c.Text, &awareness); err != nil {
			return nil, err
		}
		c.Kind = creative.CopyKind(ckind)
		c.Awareness = creative.AwarenessStage(awareness)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCopyItem resolves a single copy item id regardless of kind.
func (s *Store) GetCopyItem(ctx context.Context, id string) (*creative.CopyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c creative.CopyItem
	var kind, awareness string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, kind, text, awareness FROM copy_items WHERE id = ?", id).
		Scan(&c.ID, &kind, &c.Text, &awareness)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, creative.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying copy item %s: %w", id, err)
	}
	c.Kind = creative.CopyKind(kind)
	c.Awareness = creative.AwarenessStage(awareness)
	return &c, nil
}

// UpsertAdSet inserts or replaces an adset targeting context.
func (s *Store) UpsertAdSet(ctx context.Context, a creative.AdSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	interests, err := json.Marshal(a.Interests)
	if err != nil {
		return fmt.Errorf("encoding interests: %w", err)
	}
	locations, err := json.Marshal(a.Locations)
	if err != nil {
		return fmt.Errorf("encoding locations: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO adsets (id, campaign_id, name, age_min, age_max, interests, locations, awareness, destination_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			campaign_id = excluded.campaign_id, name = excluded.name,
			age_min = excluded.age_min, age_max = excluded.age_max,
			interests = excluded.interests, locations = excluded.locations,
			awareness = excluded.awareness, destination_url = excluded.destination_url`,
		a.ID, a.CampaignID, a.Name, a.AgeMin, a.AgeMax,
		string(interests), string(locations), string(a.Awareness), a.DestinationURL)
	if err != nil {
		return fmt.Errorf("upserting adset %s: %w", a.ID, err)
	}
	return nil
}

// GetAdSet resolves an adset id.
func (s *Store) GetAdSet(ctx context.Context, id string) (*creative.AdSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a creative.AdSet
	var interests, locations, awareness string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, campaign_id, name, age_min, age_max, interests, locations, awareness, destination_url
		FROM adsets WHERE id = ?`, id).
		Scan(&a.ID, &a.CampaignID, &a.Name, &a.AgeMin, &a.AgeMax,
			&interests, &locations, &awareness, &a.DestinationURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, creative.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying adset %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(interests), &a.Interests); err != nil {
		return nil, fmt.Errorf("decoding interests: %w", err)
	}
	if err := json.Unmarshal([]byte(locations), &a.Locations); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}
	a.Awareness = creative.AwarenessStage(awareness)
	return &a, nil
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
