// Package generator expands a caller's component selection into every
// combination (cartesian product) and persists the resulting set with
// replace-all semantics.
package generator

import (
	"context"

	"github.com/google/uuid"

	"adforge/internal/creative"
	"adforge/internal/logging"
)

// ComponentStore resolves selected component ids and the targeting
// context. Implemented by internal/store.
type ComponentStore interface {
	GetAssets(ctx context.Context, ids []string) ([]creative.Asset, error)
	GetCopyItems(ctx context.Context, ids []string, kind creative.CopyKind) ([]creative.CopyItem, error)
	GetAdSet(ctx context.Context, id string) (*creative.AdSet, error)
}

// CombinationWriter persists the generated set. Implemented by
// internal/store.
type CombinationWriter interface {
	ReplaceForAdSet(ctx context.Context, adsetID string, combos []creative.Combination) error
}

// Generator builds combinations from selection sets.
type Generator struct {
	components ComponentStore
	writer     CombinationWriter
}

// New creates a Generator.
func New(components ComponentStore, writer CombinationWriter) *Generator {
	return &Generator{components: components, writer: writer}
}

// Generate validates the selection, expands the cartesian product, and
// persists it for the adset. Validation failures occur before any
// mutation. The returned set is unscored; scoring happens later in the
// pruning pipeline.
func (g *Generator) Generate(ctx context.Context, adsetID string, sel creative.SelectionSet) ([]creative.Combination, error) {
	timer := logging.StartTimer(logging.CategoryGenerator, "Generate")
	defer timer.Stop()

	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	adset, err := g.components.GetAdSet(ctx, adsetID)
	if err != nil {
		return nil, err
	}

	assets, err := g.resolveAssets(ctx, sel.AssetIDs)
	if err != nil {
		return nil, err
	}
	headlines, err := g.resolveCopy(ctx, sel.HeadlineIDs, creative.CopyHeadline, "headlines")
	if err != nil {
		return nil, err
	}
	bodies, err := g.resolveCopy(ctx, sel.BodyIDs, creative.CopyBody, "bodies")
	if err != nil {
		return nil, err
	}

	// Descriptions are optional; an empty pool contributes a single
	// nil slot to the product rather than collapsing it to zero.
	var descriptions []*creative.CopyItem
	if len(sel.DescriptionIDs) > 0 {
		resolved, err := g.resolveCopy(ctx, sel.DescriptionIDs, creative.CopyDescription, "descriptions")
		if err != nil {
			return nil, err
		}
		for i := range resolved {
			descriptions = append(descriptions, &resolved[i])
		}
	} else {
		descriptions = []*creative.CopyItem{nil}
	}

	ctaTypes := sel.CTATypes
	if len(ctaTypes) == 0 {
		ctaTypes = []creative.CTAType{creative.DefaultCTA}
	}

	combos := expand(adset, assets, headlines, bodies, descriptions, ctaTypes)

	if err := g.writer.ReplaceForAdSet(ctx, adsetID, combos); err != nil {
		return nil, err
	}

	logging.Generator("generated %d combinations for adset %s (%d assets x %d headlines x %d bodies x %d descriptions x %d ctas)",
		len(combos), adsetID, len(assets), len(headlines), len(bodies), len(descriptions), len(ctaTypes))
	return combos, nil
}

// validateSelection checks the required pools before anything mutates.
func validateSelection(sel creative.SelectionSet) error {
	if len(sel.AssetIDs) == 0 {
		return &creative.EmptySelectionError{Field: "assets"}
	}
	if len(sel.HeadlineIDs) == 0 {
		return &creative.EmptySelectionError{Field: "headlines"}
	}
	if len(sel.BodyIDs) == 0 {
		return &creative.EmptySelectionError{Field: "bodies"}
	}
	return nil
}

// resolveAssets resolves asset ids and guards against stale selections.
func (g *Generator) resolveAssets(ctx context.Context, ids []string) ([]creative.Asset, error) {
	assets, err := g.components.GetAssets(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(assets) != len(ids) {
		return nil, &creative.InvalidSelectionError{
			Field: "assets", Requested: len(ids), Resolved: len(assets),
		}
	}
	return assets, nil
}

// resolveCopy resolves copy item ids of one kind with the same stale-id
// guard.
func (g *Generator) resolveCopy(ctx context.Context, ids []string, kind creative.CopyKind, field string) ([]creative.CopyItem, error) {
	items, err := g.components.GetCopyItems(ctx, ids, kind)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, &creative.InvalidSelectionError{
			Field: field, Requested: len(ids), Resolved: len(items),
		}
	}
	return items, nil
}

// expand produces one combination per tuple of the product, with zeroed
// scores.
func expand(adset *creative.AdSet, assets []creative.Asset, headlines, bodies []creative.CopyItem, descriptions []*creative.CopyItem, ctaTypes []creative.CTAType) []creative.Combination {
	combos := make([]creative.Combination, 0,
		len(assets)*len(headlines)*len(bodies)*len(descriptions)*len(ctaTypes))

	for _, asset := range assets {
		for _, headline := range headlines {
			for _, body := range bodies {
				for _, description := range descriptions {
					for _, cta := range ctaTypes {
						c := creative.Combination{
							ID:         uuid.NewString(),
							AdSetID:    adset.ID,
							AssetIDs:   []string{asset.ID},
							HeadlineID: headline.ID,
							BodyID:     body.ID,
							CTAType:    cta,
							URL:        adset.DestinationURL,
						}
						if description != nil {
							c.DescriptionID = description.ID
						}
						combos = append(combos, c)
					}
				}
			}
		}
	}
	return combos
}
