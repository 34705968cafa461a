// Package meta is a read-only client for the Meta Graph API surface the
// tool consumes: campaign and adset structure, account insights, and
// connected pages. All reads go through a TTL-cached wrapper so the UI
// can poll freely without burning rate limit.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"adforge/internal/logging"
)

// Client talks to the Graph API directly, no caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	token      string
}

// Config for a raw Graph API client.
type Config struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
}

// NewClient creates a Graph API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v19.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		token:      cfg.AccessToken,
	}
}

// Campaign is one ad campaign's structure fields.
type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Objective string `json:"objective"`
}

// AdSet is one remote adset's structure fields.
type AdSet struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	CampaignID string `json:"campaign_id"`
}

// Insights is one account-level insights row.
type Insights struct {
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Spend       string `json:"spend"`
	CTR         string `json:"ctr"`
	DateStart   string `json:"date_start"`
	DateStop    string `json:"date_stop"`
}

// Page is one connected Facebook page.
type Page struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// APIError is a non-2xx Graph API response.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error (HTTP %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// listEnvelope is the Graph API's paged list shape.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ListCampaigns returns the account's campaigns.
func (c *Client) ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	var env listEnvelope[Campaign]
	err := c.get(ctx, fmt.Sprintf("%s/campaigns", accountID), url.Values{
		"fields": {"id,name,status,objective"},
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListAdSets returns the campaign's adsets.
func (c *Client) ListAdSets(ctx context.Context, campaignID string) ([]AdSet, error) {
	var env listEnvelope[AdSet]
	err := c.get(ctx, fmt.Sprintf("%s/adsets", campaignID), url.Values{
		"fields": {"id,name,status,campaign_id"},
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// AccountInsights returns account-level insights for a date preset
// (e.g. "last_7d").
func (c *Client) AccountInsights(ctx context.Context, accountID, datePreset string) ([]Insights, error) {
	var env listEnvelope[Insights]
	err := c.get(ctx, fmt.Sprintf("%s/insights", accountID), url.Values{
		"fields":      {"impressions,clicks,spend,ctr"},
		"date_preset": {datePreset},
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListPages returns the pages the token's user manages.
func (c *Client) ListPages(ctx context.Context) ([]Page, error) {
	var env listEnvelope[Page]
	err := c.get(ctx, "me/accounts", url.Values{
		"fields": {"id,name,category"},
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// get performs one Graph API GET and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	timer := logging.StartTimer(logging.CategoryMeta, "GET "+path)
	defer timer.StopWithThreshold(time.Second)

	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.token)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    env.Error.Message,
				Type:       env.Error.Type,
				Code:       env.Error.Code,
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
