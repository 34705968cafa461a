package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"adforge/internal/creative"
)

// importCmd seeds components from a yaml file.
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import assets, copy and adsets from a yaml file",
	Long: `Upserts components from a yaml file into the local store.

File shape:
  adsets:
    - id: adset-1
      campaign_id: camp-1
      name: Prospecting 25-34
      destination_url: https://example.com/shop
  assets:
    - id: a-1
      type: video
      url: https://cdn.example.com/hero.mp4
  copy:
    - id: h-1
      kind: headline
      text: Discover speed that lasts`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// importFile is the yaml shape of a component seed file.
type importFile struct {
	AdSets []creative.AdSet   `yaml:"adsets"`
	Assets []creative.Asset   `yaml:"assets"`
	Copy   []creative.CopyItem `yaml:"copy"`
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var file importFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	for _, a := range file.AdSets {
		if err := st.UpsertAdSet(ctx, a); err != nil {
			return fmt.Errorf("upserting adset %s: %w", a.ID, err)
		}
	}
	for _, a := range file.Assets {
		if err := st.UpsertAsset(ctx, a); err != nil {
			return fmt.Errorf("upserting asset %s: %w", a.ID, err)
		}
	}
	for _, c := range file.Copy {
		if err := st.UpsertCopyItem(ctx, c); err != nil {
			return fmt.Errorf("upserting copy item %s: %w", c.ID, err)
		}
	}

	fmt.Printf("Imported %d adsets, %d assets, %d copy items\n",
		len(file.AdSets), len(file.Assets), len(file.Copy))
	return nil
}
