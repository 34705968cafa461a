package creative

// SelectionRequest is the boundary payload for generation requests.
// Historic clients named the same fields differently (selectedAssets vs
// assets, primaryTexts vs bodies); every accepted alias is declared here
// and collapsed onto one canonical SelectionSet before anything touches
// the generator.
type SelectionRequest struct {
	Assets         []string `json:"assets,omitempty"`
	SelectedAssets []string `json:"selectedAssets,omitempty"`

	Headlines         []string `json:"headlines,omitempty"`
	SelectedHeadlines []string `json:"selectedHeadlines,omitempty"`

	Bodies         []string `json:"bodies,omitempty"`
	PrimaryTexts   []string `json:"primaryTexts,omitempty"`
	SelectedBodies []string `json:"selectedBodies,omitempty"`

	Descriptions         []string `json:"descriptions,omitempty"`
	SelectedDescriptions []string `json:"selectedDescriptions,omitempty"`

	CTATypes      []string `json:"ctaTypes,omitempty"`
	CallToActions []string `json:"callToActions,omitempty"`
}

// firstNonEmpty returns the first alias slice that carries values.
func firstNonEmpty(candidates ...[]string) []string {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

// Normalize collapses all accepted aliases onto a canonical
// SelectionSet. When two aliases for the same field are both populated,
// the canonical (shorter) name wins.
func (r SelectionRequest) Normalize() SelectionSet {
	sel := SelectionSet{
		AssetIDs:       firstNonEmpty(r.Assets, r.SelectedAssets),
		HeadlineIDs:    firstNonEmpty(r.Headlines, r.SelectedHeadlines),
		BodyIDs:        firstNonEmpty(r.Bodies, r.PrimaryTexts, r.SelectedBodies),
		DescriptionIDs: firstNonEmpty(r.Descriptions, r.SelectedDescriptions),
	}
	for _, cta := range firstNonEmpty(r.CTATypes, r.CallToActions) {
		sel.CTATypes = append(sel.CTATypes, CTAType(cta))
	}
	return sel
}
