package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"review-metrics/internal/config"
	"review-metrics/internal/importance"
	"review-metrics/internal/loader"
	"review-metrics/internal/metrics"
	"review-metrics/internal/scoring"

	"review-metrics/pkg/logger/sl"
	"review-metrics/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting review-metrics", slog.String("env", cfg.Env))

	prs, roster, stats, err := loader.New(log).LoadCorpus(
		cfg.Input.PullRequestsPath,
		cfg.Input.EventsPath,
		cfg.Input.MaintainersPath,
	)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	log.Info("corpus loaded",
		slog.Int("pull_requests", stats.PullRequests),
		slog.Int("events", stats.Events),
		slog.Int("malformed", stats.MalformedRecords),
		slog.Int("orphan_events", stats.OrphanEvents),
	)

	if len(roster) > 0 {
		roster.Annotate(prs)
	}

	periods := cfg.DomainPeriods()

	scorer := scoring.NewScorer(cfg.Scoring, periods)
	aggregator := scoring.NewAggregator(scorer, cfg.Scoring)
	classifier := scoring.NewClassifier(aggregator, periods, log)
	tiers := importance.NewClassifier(cfg.Importance)

	engine := metrics.NewEngine(log, classifier, tiers, cfg.Metrics.TopN)

	result, err := engine.Run(ctx, prs)
	if err != nil {
		return fmt.Errorf("failed to run metrics engine: %w", err)
	}

	result.Diagnostics.MalformedRecords += stats.MalformedRecords

	if err := writeResult(result, cfg.Input.OutputPath); err != nil {
		log.Error("failed to write result", sl.Err(err))
		return err
	}

	log.Info("done", slog.String("run_id", result.RunID))

	return nil
}

func writeResult(result *metrics.Result, outputPath string) error {
	out := os.Stdout

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()

		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}
