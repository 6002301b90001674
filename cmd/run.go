package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/drillbook/drillbook/internal/app"
	"github.com/drillbook/drillbook/internal/explain"
	"github.com/drillbook/drillbook/internal/llm"
	"github.com/drillbook/drillbook/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	opts := app.Options{Store: st}

	provider, err := providerFromEnv(cmd.Context(), st)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Explanations for questions without analysis will be unavailable.")
	} else {
		opts.Explainer = explain.NewService(provider, explain.DefaultConfig())
	}

	return app.Run(opts)
}

// providerFromEnv builds an LLM provider from DRILLBOOK_* variables,
// falling back to probing the standard provider API key variables.
func providerFromEnv(ctx context.Context, st *store.Store) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, st)
}
