package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// combosCmd groups combination management subcommands.
var combosCmd = &cobra.Command{
	Use:   "combos",
	Short: "Inspect and delete generated combinations",
}

var combosListCmd = &cobra.Command{
	Use:   "list [adset-id]",
	Short: "List an adset's combinations with their scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runCombosList,
}

var combosRmCmd = &cobra.Command{
	Use:   "rm [combination-id...]",
	Short: "Delete combinations by id (deployed ones are skipped)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCombosRm,
}

func init() {
	combosCmd.AddCommand(combosListCmd)
	combosCmd.AddCommand(combosRmCmd)
}

func runCombosList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	combos, err := st.ListByAdSet(ctx, args[0])
	if err != nil {
		return err
	}
	if len(combos) == 0 {
		fmt.Printf("No combinations for adset %s\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHEADLINE\tBODY\tCTA\tSCORE\tCTR\tDEPLOYED")
	for _, c := range combos {
		deployed := ""
		if c.Deployed {
			deployed = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%s\n",
			c.ID, c.HeadlineID, c.BodyID, c.CTAType, c.OverallScore, c.PredictedCTR, deployed)
	}
	return w.Flush()
}

func runCombosRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	count, err := st.BulkDelete(ctx, args)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d of %d combinations\n", count, len(args))
	if count < len(args) {
		fmt.Println("Skipped ids were deployed or already gone.")
	}
	return nil
}
