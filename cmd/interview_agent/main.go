// Package main provides the entry point for the mock interview engine CLI and
// HTTP API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/chains"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/llm"
)

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "LLM-driven mock technical interview engine",
	Long:  "interview_agent runs rubric-driven mock interviews: it generates theory-only questions from a JD+resume sample, grades answers against the rubric, and persists every graded round.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig merges CLI flag values with an optional config file and the
// engine defaults. Flags win over the file; the file wins over defaults.
func resolveConfig(flagCfg config.Config, configPath string) (config.Config, error) {
	merged := flagCfg
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		merged = merged.MergeWithDefaults(*fileCfg)
	}
	merged = merged.MergeWithDefaults(config.Config{})

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// buildChainManager wires the LLM client and chain manager from config. The
// returned cleanup closes the client.
func buildChainManager(ctx context.Context, cfg config.Config) (*chains.Manager, func(), error) {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return nil, nil, fmt.Errorf("an API key is required: set LLM_API_KEY or GEMINI_API_KEY")
	}

	llmCfg := llm.DefaultConfig()
	if cfg.Model != "" {
		llmCfg = llmCfg.WithModel(cfg.Model)
	}

	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, nil, err
	}

	manager := chains.NewManager(client, chains.WithCallTimeout(cfg.Timeout()))
	cleanup := func() { _ = client.Close() }
	return manager, cleanup, nil
}
