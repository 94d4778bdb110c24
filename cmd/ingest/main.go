// Command ingest fetches daily prices for every code in the ticker list and
// publishes them to the configured destination.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"jpxcli/internal/app"
	"jpxcli/internal/config"
	"jpxcli/pkg/contracts"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "config file (defaults to config.yaml, configs/config.yaml or JPX_CONFIG_FILE)")
	in := fs.String("in", "", "ticker list path (overrides ingest.ticker_list_csv)")
	destination := fs.String("destination", "", "sheets, workbook, postgres or memory (overrides publish.destination)")
	surface := fs.String("surface", "", "destination tab/sheet/table name (overrides publish.surface_name)")
	daysBack := fs.Int("days", 0, "calendar days of history (overrides ingest.days_back)")
	dryRun := fs.Bool("dry-run", false, "fetch and aggregate, publish to memory only")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return app.ExitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("ingest"))
		return app.ExitOK
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return app.ExitUsage
	}
	if *in != "" {
		cfg.Ingest.TickerListCSV = cfg.ResolvedPaths().Resolve(*in)
	}
	if *destination != "" {
		cfg.Publish.Destination = *destination
	}
	if *surface != "" {
		cfg.Publish.SurfaceName = *surface
	}
	if *daysBack < 0 {
		fmt.Fprintf(stderr, "invalid -days %d\n", *daysBack)
		return app.ExitUsage
	}
	if *daysBack > 0 {
		cfg.Ingest.DaysBack = *daysBack
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return app.ExitUsage
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "startup: %v\n", err)
		return app.ExitCode(err)
	}
	defer application.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := application.RunIngest(ctx, app.IngestOptions{DryRun: *dryRun})
	if err != nil {
		return app.ExitCode(err)
	}
	if result.Failed > 0 {
		application.Logger.Warn("Completed with failures",
			slog.Int("failed", result.Failed),
			slog.Any("codes", result.FailedCodes()))
	}
	return app.ExitOK
}

func loadConfig(file string) (*config.Config, error) {
	if file != "" {
		return config.LoadFrom(file)
	}
	return config.Load()
}
