package meta

import (
	"context"
	"fmt"

	"adforge/internal/cache"
)

// CachedClient wraps the raw client with per-resource-class TTLs.
// Concurrent misses may both hit the API (the cache has no
// single-flight); the Graph API tolerates that and the window is small.
type CachedClient struct {
	client *Client
	cache  *cache.Cache
}

// NewCachedClient wraps client with ttl caching.
func NewCachedClient(client *Client, c *cache.Cache) *CachedClient {
	return &CachedClient{client: client, cache: c}
}

// ListCampaigns returns the account's campaigns, cached 5 minutes.
func (c *CachedClient) ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	key := fmt.Sprintf("meta:campaigns:%s", accountID)
	data, err := c.cache.GetOrFetch(key, cache.TTLCampaigns, func() (any, error) {
		return c.client.ListCampaigns(ctx, accountID)
	})
	if err != nil {
		return nil, err
	}
	return data.([]Campaign), nil
}

// ListAdSets returns the campaign's adsets, cached 5 minutes.
func (c *CachedClient) ListAdSets(ctx context.Context, campaignID string) ([]AdSet, error) {
	key := fmt.Sprintf("meta:adsets:%s", campaignID)
	data, err := c.cache.GetOrFetch(key, cache.TTLAdSets, func() (any, error) {
		return c.client.ListAdSets(ctx, campaignID)
	})
	if err != nil {
		return nil, err
	}
	return data.([]AdSet), nil
}

// AccountInsights returns account insights, cached 2 minutes. Insights
// move fast enough that anything longer shows stale spend numbers.
func (c *CachedClient) AccountInsights(ctx context.Context, accountID, datePreset string) ([]Insights, error) {
	key := fmt.Sprintf("meta:insights:%s:%s", accountID, datePreset)
	data, err := c.cache.GetOrFetch(key, cache.TTLInsights, func() (any, error) {
		return c.client.AccountInsights(ctx, accountID, datePreset)
	})
	if err != nil {
		return nil, err
	}
	return data.([]Insights), nil
}

// ListPages returns the connected pages, cached 60 minutes.
func (c *CachedClient) ListPages(ctx context.Context, userKey string) ([]Page, error) {
	key := fmt.Sprintf("meta:pages:%s", userKey)
	data, err := c.cache.GetOrFetch(key, cache.TTLPages, func() (any, error) {
		return c.client.ListPages(ctx)
	})
	if err != nil {
		return nil, err
	}
	return data.([]Page), nil
}

// InvalidateAccount drops every cached read for the account. Called on
// token refresh, when everything cached under the old token is suspect.
func (c *CachedClient) InvalidateAccount(accountID string) int {
	n := c.cache.InvalidatePrefix(fmt.Sprintf("meta:campaigns:%s", accountID))
	n += c.cache.InvalidatePrefix(fmt.Sprintf("meta:insights:%s", accountID))
	return n
}

// InvalidateAll drops every cached Graph API read.
func (c *CachedClient) InvalidateAll() int {
	return c.cache.InvalidatePrefix("meta:")
}
