package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"adforge/internal/creative"
	"adforge/internal/generator"
)

var (
	genAssets       []string
	genHeadlines    []string
	genBodies       []string
	genDescriptions []string
	genCTAs         []string
)

// generateCmd expands a component selection into combinations.
var generateCmd = &cobra.Command{
	Use:   "generate [adset-id]",
	Short: "Generate every combination from the selected components",
	Long: `Expands the cartesian product of the selected assets, headlines,
bodies, descriptions and CTA types into combinations for the adset,
replacing its previous undeployed set.

Example:
  forge generate adset-42 --assets a1,a2 --headlines h1 --bodies b1 --ctas SHOP_NOW,LEARN_MORE`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVar(&genAssets, "assets", nil, "asset ids (required)")
	generateCmd.Flags().StringSliceVar(&genHeadlines, "headlines", nil, "headline ids (required)")
	generateCmd.Flags().StringSliceVar(&genBodies, "bodies", nil, "body copy ids (required)")
	generateCmd.Flags().StringSliceVar(&genDescriptions, "descriptions", nil, "description ids (optional)")
	generateCmd.Flags().StringSliceVar(&genCTAs, "ctas", nil, "CTA types (default LEARN_MORE)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	adsetID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sel := creative.SelectionSet{
		AssetIDs:       genAssets,
		HeadlineIDs:    genHeadlines,
		BodyIDs:        genBodies,
		DescriptionIDs: genDescriptions,
	}
	for _, cta := range genCTAs {
		sel.CTATypes = append(sel.CTATypes, creative.CTAType(cta))
	}

	ctx, cancel := signalContext()
	defer cancel()

	combos, err := generator.New(st, st).Generate(ctx, adsetID, sel)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d combinations for adset %s\n", len(combos), adsetID)
	return nil
}
