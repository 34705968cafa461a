// Package creative defines the domain model for ad creative variants:
// the component pools a user selects from (assets, copy items), the
// targeting context they are assembled against, and the Combination
// records the generator produces and the pruning pipeline scores.
package creative

import "time"

// AssetType distinguishes the two media kinds a Combination can carry.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
)

// Asset is one creative media component (an uploaded image or video).
type Asset struct {
	ID     string    `json:"id" yaml:"id"`
	Type   AssetType `json:"type" yaml:"type"`
	URL    string    `json:"url" yaml:"url"`
	Label  string    `json:"label" yaml:"label"`
	Themes []string  `json:"themes,omitempty" yaml:"themes,omitempty"`
}

// CopyKind identifies which slot of an ad a copy item fills.
type CopyKind string

const (
	CopyHeadline    CopyKind = "headline"
	CopyBody        CopyKind = "body"
	CopyDescription CopyKind = "description"
)

// AwarenessStage describes the audience funnel stage a copy item or
// adset targets. Used by the match sub-score.
type AwarenessStage string

const (
	StageUnaware        AwarenessStage = "unaware"
	StageProblemAware   AwarenessStage = "problem_aware"
	StageSolutionAware  AwarenessStage = "solution_aware"
	StageProductAware   AwarenessStage = "product_aware"
	StageMostAware      AwarenessStage = "most_aware"
)

// CopyItem is one text component (headline, body, or description).
type CopyItem struct {
	ID        string         `json:"id" yaml:"id"`
	Kind      CopyKind       `json:"kind" yaml:"kind"`
	Text      string         `json:"text" yaml:"text"`
	Awareness AwarenessStage `json:"awareness,omitempty" yaml:"awareness,omitempty"`
}

// CTAType is the call-to-action button label class.
type CTAType string

const (
	CTALearnMore  CTAType = "LEARN_MORE"
	CTAShopNow    CTAType = "SHOP_NOW"
	CTASignUp     CTAType = "SIGN_UP"
	CTAGetOffer   CTAType = "GET_OFFER"
	CTADownload   CTAType = "DOWNLOAD"
	CTASubscribe  CTAType = "SUBSCRIBE"
	CTAContactUs  CTAType = "CONTACT_US"
	CTABookNow    CTAType = "BOOK_NOW"
)

// DefaultCTA is the sentinel used when a caller selects no CTA types.
const DefaultCTA = CTALearnMore

// AdSet is the read-only targeting context a Combination is scored
// against. Persistence of campaigns/adsets is owned elsewhere; this is
// the slice of it the scoring pipeline consumes.
type AdSet struct {
	ID             string         `json:"id" yaml:"id"`
	CampaignID     string         `json:"campaign_id" yaml:"campaign_id"`
	Name           string         `json:"name" yaml:"name"`
	AgeMin         int            `json:"age_min" yaml:"age_min"`
	AgeMax         int            `json:"age_max" yaml:"age_max"`
	Interests      []string       `json:"interests,omitempty" yaml:"interests,omitempty"`
	Locations      []string       `json:"locations,omitempty" yaml:"locations,omitempty"`
	Awareness      AwarenessStage `json:"awareness,omitempty" yaml:"awareness,omitempty"`
	DestinationURL string         `json:"destination_url" yaml:"destination_url"`
}

// ScoreBreakdown holds the named sub-scores, each 0-100. The weighted
// sum produces a Combination's overall score.
type ScoreBreakdown struct {
	Hook      float64 `json:"hook,omitempty"`
	Alignment float64 `json:"alignment"`
	Fit       float64 `json:"fit"`
	Clarity   float64 `json:"clarity"`
	Match     float64 `json:"match"`
}

// Combination is one fully-assembled ad creative variant.
//
// Once Deployed is true the record is immutable: scores may not be
// rewritten and the record may not be deleted.
type Combination struct {
	ID            string         `json:"id"`
	AdSetID       string         `json:"adset_id"`
	AssetIDs      []string       `json:"asset_ids"`
	HeadlineID    string         `json:"headline_id"`
	BodyID        string         `json:"body_id"`
	DescriptionID string         `json:"description_id,omitempty"`
	CTAType       CTAType        `json:"cta_type"`
	URL           string         `json:"url"`
	Scores        ScoreBreakdown `json:"scores"`
	OverallScore  int            `json:"overall_score"`
	PredictedCTR  float64        `json:"predicted_ctr"`
	Deployed      bool           `json:"deployed_to_facebook"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SelectionSet is the canonical generator input: the component id pools
// chosen by the caller. Order is irrelevant; assets, headlines, and
// bodies must be non-empty, descriptions and CTA types are optional.
type SelectionSet struct {
	AssetIDs       []string
	HeadlineIDs    []string
	BodyIDs        []string
	DescriptionIDs []string
	CTATypes       []CTAType
}
