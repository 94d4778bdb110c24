// Command tickers downloads the JPX listing and writes the ticker list CSV.
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
	fs := flag.NewFlagSet("tickers", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "config file (defaults to config.yaml, configs/config.yaml or JPX_CONFIG_FILE)")
	url := fs.String("url", "", "listing location, http(s) URL or local path (overrides listing.url)")
	mode := fs.String("mode", "", "listing mode: codes or full (overrides listing.mode)")
	out := fs.String("out", "", "ticker list output path (overrides listing.output_csv)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return app.ExitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("tickers"))
		return app.ExitOK
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return app.ExitUsage
	}
	if *url != "" {
		cfg.Listing.URL = *url
	}
	if *mode != "" {
		if *mode != config.ModeCodes && *mode != config.ModeFull {
			fmt.Fprintf(stderr, "invalid -mode %q\n", *mode)
			return app.ExitUsage
		}
		cfg.Listing.Mode = *mode
	}
	if *out != "" {
		cfg.Listing.OutputCSV = cfg.ResolvedPaths().Resolve(*out)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "startup: %v\n", err)
		return app.ExitCode(err)
	}
	defer application.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := application.RunTickers(ctx, nil)
	if err != nil {
		return app.ExitCode(err)
	}
	application.Logger.Info("Done", slog.Int("instruments", len(records)))
	return app.ExitOK
}

func loadConfig(file string) (*config.Config, error) {
	if file != "" {
		return config.LoadFrom(file)
	}
	return config.Load()
}
