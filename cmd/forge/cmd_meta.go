package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"adforge/internal/config"
	"adforge/internal/meta"
)

var metaDatePreset string

// metaCmd groups read-only Meta Graph API lookups.
var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Read-only Meta Graph API lookups (campaigns, adsets, insights, pages)",
}

var metaCampaignsCmd = &cobra.Command{
	Use:   "campaigns [account-id]",
	Short: "List the account's campaigns",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetaCampaigns,
}

var metaAdSetsCmd = &cobra.Command{
	Use:   "adsets [campaign-id]",
	Short: "List a campaign's adsets",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetaAdSets,
}

var metaInsightsCmd = &cobra.Command{
	Use:   "insights [account-id]",
	Short: "Show account-level insights",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetaInsights,
}

var metaPagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the connected pages",
	RunE:  runMetaPages,
}

func init() {
	metaInsightsCmd.Flags().StringVar(&metaDatePreset, "date-preset", "last_7d", "Graph API date preset")

	metaCmd.AddCommand(metaCampaignsCmd)
	metaCmd.AddCommand(metaAdSetsCmd)
	metaCmd.AddCommand(metaInsightsCmd)
	metaCmd.AddCommand(metaPagesCmd)
}

// newMetaClient builds the cached Graph API client from config.
func newMetaClient() (*meta.CachedClient, error) {
	if cfg.Meta.AccessToken == "" {
		return nil, fmt.Errorf("no Meta access token configured (set META_ACCESS_TOKEN)")
	}
	client := meta.NewClient(meta.Config{
		BaseURL:     cfg.Meta.BaseURL,
		APIVersion:  cfg.Meta.APIVersion,
		AccessToken: cfg.Meta.AccessToken,
		Timeout:     config.ParseDuration(cfg.Meta.Timeout, 0),
	})
	return meta.NewCachedClient(client, newCache()), nil
}

func runMetaCampaigns(cmd *cobra.Command, args []string) error {
	client, err := newMetaClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	campaigns, err := client.ListCampaigns(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tOBJECTIVE")
	for _, c := range campaigns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, c.Objective)
	}
	return w.Flush()
}

func runMetaAdSets(cmd *cobra.Command, args []string) error {
	client, err := newMetaClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	adsets, err := client.ListAdSets(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCAMPAIGN")
	for _, a := range adsets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Status, a.CampaignID)
	}
	return w.Flush()
}

func runMetaInsights(cmd *cobra.Command, args []string) error {
	client, err := newMetaClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	rows, err := client.AccountInsights(ctx, args[0], metaDatePreset)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IMPRESSIONS\tCLICKS\tSPEND\tCTR\tFROM\tTO")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Impressions, r.Clicks, r.Spend, r.CTR, r.DateStart, r.DateStop)
	}
	return w.Flush()
}

func runMetaPages(cmd *cobra.Command, args []string) error {
	client, err := newMetaClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pages, err := client.ListPages(ctx, "me")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY")
	for _, p := range pages {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Category)
	}
	return w.Flush()
}
