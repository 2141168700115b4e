package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/riskibarqy/leaguesync/internal/app"
	"github.com/riskibarqy/leaguesync/internal/config"
	"github.com/riskibarqy/leaguesync/internal/observability"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/usecase"
)

// leagueFlags accepts -league repeated or as a comma separated list.
type leagueFlags []string

func (f *leagueFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *leagueFlags) Set(value string) error {
	for _, code := range strings.Split(value, ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			*f = append(*f, code)
		}
	}

	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var leagues leagueFlags
	flag.Var(&leagues, "league", "league code to reconcile; repeatable or comma separated (default: all discovered)")
	dryRun := flag.Bool("dry-run", false, "load and analyze without writing to the store")
	skipValidation := flag.Bool("skip-validation", false, "report orphans without repairing them")
	inputDir := flag.String("input", "", "override the snapshot input directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	if strings.TrimSpace(*inputDir) != "" {
		cfg.InputDir = *inputDir
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() { _ = a.Close() }()

	report, err := a.Runs.Run(ctx, usecase.RunOptions{
		Leagues:        leagues,
		DryRun:         *dryRun,
		SkipValidation: *skipValidation,
	})
	if err != nil {
		logger.ErrorContext(ctx, "reconciliation run failed", "error", err)
	}

	rendered, renderErr := report.Render()
	if renderErr != nil {
		logger.Error("render run report", "error", renderErr)
		return 1
	}
	fmt.Println(rendered)

	return usecase.ExitCode(report.Status)
}
