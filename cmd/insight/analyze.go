package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/insight/internal/app"
	"github.com/newthinker/insight/internal/logger"
)

var analyzeTimeout time.Duration

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "Run a one-off analysis and print the payload as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "overall analysis timeout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	ticker := strings.ToUpper(strings.TrimSpace(args[0]))
	payload, err := a.Analyze(ctx, ticker)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", ticker, err)
	}

	log.Info("analysis complete",
		zap.String("ticker", ticker),
		zap.Int("analyses", payload.AnalysesCount),
		zap.Float64("seconds", payload.ExecutionSeconds),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
