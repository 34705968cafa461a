package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"adforge/cmd/forge/ui"
	"adforge/internal/config"
	"adforge/internal/progress"
	"adforge/internal/pruning"
)

var (
	pruneMinScore int
	prunePlain    bool
)

// pruneCmd scores and prunes an adset's combinations.
var pruneCmd = &cobra.Command{
	Use:   "prune [adset-id]",
	Short: "Score all combinations and delete the ones below threshold",
	Long: `Runs every combination of the adset through the configured scoring
oracle, persists the scores, and deletes combinations scoring below the
threshold. Deployed combinations are never touched.

Renders an interactive progress view by default; --plain prints one
line per event for scripting.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&pruneMinScore, "min-score", -1, "pruning threshold 0-100 (default from config)")
	pruneCmd.Flags().BoolVar(&prunePlain, "plain", false, "plain line output instead of the interactive view")
}

func runPrune(cmd *cobra.Command, args []string) error {
	adsetID := args[0]

	// -1 means the flag was not given; an explicit 0 is a real
	// threshold (keep everything).
	if pruneMinScore != -1 && (pruneMinScore < 0 || pruneMinScore > 100) {
		return fmt.Errorf("min-score must be within [0,100], got %d", pruneMinScore)
	}
	minScore := pruneMinScore
	if minScore == -1 {
		minScore = cfg.Scoring.MinScore
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	oracle, err := newOracle()
	if err != nil {
		return err
	}

	pipeline := pruning.New(st, st, oracle,
		pruning.WithItemTimeout(config.ParseDuration(cfg.Scoring.ItemTimeout, pruning.DefaultItemTimeout)))
	ch := progress.NewChannel(cfg.Scoring.EventBuffer)

	ctx, cancel := signalContext()
	defer cancel()

	pruneDone := make(chan error, 1)
	go func() {
		_, err := pipeline.Prune(ctx, adsetID, minScore, ch)
		pruneDone <- err
	}()

	if prunePlain {
		printPlain(ch)
		return <-pruneDone
	}

	viewErr := ui.RunPruneView(adsetID, ch)
	// The view may exit before the stream ends (user quit). Cancel the
	// run and drain so the pipeline never blocks on a full buffer.
	cancel()
	for range ch.Events() {
	}
	// A user quit cancels the run; that is not a failure.
	if err := <-pruneDone; err != nil && !errors.Is(err, context.Canceled) && viewErr == nil {
		return err
	}
	return viewErr
}

// printPlain renders one line per event, for scripting and logs.
func printPlain(ch *progress.Channel) {
	for ev := range ch.Events() {
		switch p := ev.Payload.(type) {
		case progress.ProgressPayload:
			fmt.Printf("[%d/%d] %s\n", p.Progress, p.Total, p.Message)
		case progress.CompletePayload:
			fmt.Printf("[%d/%d] %s %s (score %d)\n", p.Progress, p.Total, p.Type, p.CombinationID, p.Score)
		case progress.ErrorPayload:
			fmt.Printf("error on %s: %s\n", p.CombinationID, p.Message)
		case progress.DonePayload:
			fmt.Printf("done: %d scored, %d deleted, %d kept (min score %d)\n",
				p.Scored, p.Deleted, p.Kept, p.MinScore)
		}
	}
}
