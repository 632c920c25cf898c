package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yukiharu/aivis/internal/config"
	"github.com/yukiharu/aivis/internal/generate"
	"github.com/yukiharu/aivis/internal/report"
	"github.com/yukiharu/aivis/internal/scrape"
	"github.com/yukiharu/aivis/pkg/openai"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "aivis",
	Short: "AI visibility toolkit for hospital marketing",
	Long:  "Generates customer personas and search-style questions from hospital marketing metadata, summarizes the hospital website, and replays questions against an LLM to measure which sites surface in the answers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments use the environment directly.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// buildGenerator wires the gateway, scraper, and pipelines from config.
func buildGenerator() *generate.Generator {
	client := openai.NewClient(cfg.OpenAI.Key,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithModel(cfg.OpenAI.Model),
	)
	gw := openai.NewGateway(client, cfg.OpenAI.Model, cfg.Generate.Timeout())
	fetcher := scrape.NewFetcher(time.Duration(cfg.Scrape.TimeoutSecs)*time.Second, cfg.Scrape.MaxChars)
	return generate.New(gw, fetcher, generate.DefaultParams())
}

// buildReportRunner wires the aggregator with its shorter per-unit timeout.
func buildReportRunner() *report.Runner {
	client := openai.NewClient(cfg.OpenAI.Key,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithModel(cfg.OpenAI.Model),
	)
	gw := openai.NewGateway(client, cfg.OpenAI.Model, cfg.Report.Timeout())
	return report.NewRunner(gw, cfg.Report.Concurrency, cfg.Report.Timeout(), cfg.Report.RateLimit, report.DefaultLimits())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
