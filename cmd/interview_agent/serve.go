package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/server"
)

var (
	serveAddr       string
	serveDataset    string
	serveOutfile    string
	serveRounds     int
	serveModel      string
	serveTimeoutSec int
	serveTTLMin     int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running mock interview sessions.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default \":8080\")")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "Path to the JSONL sample dataset (required)")
	serveCmd.Flags().StringVar(&serveOutfile, "outfile", "", "Path to the JSONL record sink")
	serveCmd.Flags().IntVar(&serveRounds, "rounds", 0, "Rounds per session (default 3)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "LLM model name override")
	serveCmd.Flags().IntVar(&serveTimeoutSec, "timeout", 0, "Per-call LLM timeout in seconds")
	serveCmd.Flags().IntVar(&serveTTLMin, "ttl", 0, "Idle session lifetime in minutes")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(config.Config{
		Addr:           serveAddr,
		Dataset:        serveDataset,
		Outfile:        serveOutfile,
		Rounds:         serveRounds,
		Model:          serveModel,
		TimeoutSeconds: serveTimeoutSec,
		TTLMinutes:     serveTTLMin,
	}, serveConfigPath)
	if err != nil {
		return err
	}
	if cfg.Dataset == "" {
		return fmt.Errorf("a sample dataset is required: pass --dataset or set it in the config file")
	}

	manager, cleanup, err := buildChainManager(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	thresholds := scoring.DefaultThresholds()
	if cfg.BandL2 != 0 {
		thresholds = scoring.Thresholds{L2: cfg.BandL2, L3: cfg.BandL3, L4: cfg.BandL4}
	}

	srv := server.New(server.Config{
		Addr:       cfg.Addr,
		Dataset:    cfg.Dataset,
		Outfile:    cfg.Outfile,
		Rounds:     cfg.Rounds,
		Thresholds: thresholds,
		SessionTTL: cfg.TTL(),
	}, manager)

	return srv.Start()
}
