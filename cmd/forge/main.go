package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adforge/internal/cache"
	"adforge/internal/config"
	"adforge/internal/llm"
	"adforge/internal/logging"
	"adforge/internal/scoring"
	"adforge/internal/store"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Loaded once in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "adforge - ad creative combination generation and pruning",
	Long: `adforge generates every creative combination from selected components
(assets, headlines, bodies, descriptions, CTAs), scores each one through
a configurable oracle, and prunes the weak ones before deployment.

Configuration lives in .forge/config.yaml under the workspace; secrets
come from the environment (GEMINI_API_KEY, META_ACCESS_TOKEN).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = config.DefaultConfigPath(workspace)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		cfg.Workspace = workspace

		if err := logging.Initialize(workspace); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// openStore opens the sqlite store at the configured path.
func openStore() (*store.Store, error) {
	return store.Open(cfg.DatabasePath)
}

// newCache builds the TTL cache with the sweeper running.
func newCache() *cache.Cache {
	c := cache.New(cfg.Cache.MaxEntries)
	c.StartSweeper(config.ParseDuration(cfg.Cache.SweepInterval, cache.DefaultSweepInterval))
	return c
}

// newOracle builds the configured scoring oracle.
func newOracle() (scoring.Oracle, error) {
	switch cfg.Scoring.Oracle {
	case config.OracleLLM:
		client, err := llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:        cfg.LLM.APIKey,
			Model:         cfg.LLM.Model,
			Timeout:       config.ParseDuration(cfg.LLM.Timeout, 0),
			MaxConcurrent: int64(cfg.LLM.MaxConcurrent),
		})
		if err != nil {
			return nil, fmt.Errorf("building gemini client: %w", err)
		}
		return scoring.NewLLMOracle(client), nil
	default:
		return scoring.NewHeuristicOracle(), nil
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <workspace>/.forge/config.yaml)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(combosCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
