package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"deephole/internal/config"
	"deephole/internal/fetch"
	"deephole/internal/locator"
	"deephole/internal/snapshot"
	"deephole/internal/tracker"
	"deephole/lib/chrono"
	"deephole/lib/restyutil"
	"deephole/lib/serviceutil"
	"deephole/lib/telemetry"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

var (
	updateOutput *string
	updateRender *bool
	updateDump   *string
)

func init() {
	updateOutput = updateCmd.Flags().StringP("output", "o", "", "Where to write the snapshot, overrides the config.")
	updateRender = updateCmd.Flags().Bool("render", false, "Escalate to a headless browser when static pages leave zones missing.")
	updateDump = updateCmd.Flags().String("dump", "", "A directory to keep every retrieved page in, it is emptied first.")
	rootCmd.AddCommand(updateCmd)
}

func setupTelemetry(ctx context.Context) func() {
	otel, err := telemetry.SetupFromEnv(ctx, "deephole")
	if errors.Is(err, os.ErrNotExist) {
		return func() {}
	}
	if err != nil {
		slog.Warn("failed to setup telemetry exporters", "err", err)
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otel.Shutdown(ctx); err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}
}

var updateCmd = &cobra.Command{
	Use:   "update [--output <path/to/today.json>] [--render] [--dump <dir>]",
	Short: "Scrapes every source and merges the countdowns into the snapshot.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(*configPath)
		telemetry.InitSlog(*verbose || cfg.Debug)
		if err != nil {
			// only a failed snapshot write ends the run
			slog.Warn("failed to read config, continuing with defaults", "path", *configPath, "err", err)
		}
		if *updateOutput != "" {
			cfg.Output = *updateOutput
		}
		if *updateRender {
			cfg.Render.Enabled = true
		}

		runID, err := random.String(8)
		if err != nil {
			serviceutil.Fatal("failed to generate run id", err)
		}
		slog.SetDefault(slog.Default().With("run", runID))

		ctx := cmd.Context()
		shutdown := setupTelemetry(ctx)
		defer shutdown()

		var dump restyutil.Output
		if *updateDump != "" {
			out, err := restyutil.NewFilesystemOutput(*updateDump)
			if err != nil {
				serviceutil.Fatal("failed to prepare dump directory", err)
			}
			dump = out
		}

		tel := telemetry.SlogAPI{}
		opts := tracker.Options{
			Sources:         cfg.Sources,
			Static:          fetch.NewStaticFetcher(tel, cfg.FetchTimeout()).WithDump(dump),
			Locator:         locator.Default(tel, cfg.LocatorOptions()),
			ProximityWindow: cfg.ProximityWindow,
			OutputPath:      cfg.Output,
			SourceName:      cfg.SourceName,
			Clock:           chrono.NewStandardImpl(),
			Tel:             tel,
		}
		var renderer *fetch.Renderer
		if cfg.Render.Enabled {
			renderOpts := cfg.RenderOptions()
			renderOpts.Dump = dump
			renderer, err = fetch.NewRenderer(tel, renderOpts)
			if err != nil {
				// static retrieval still runs without the browser
				slog.Warn("failed to start renderer", "err", err)
				renderer = nil
			} else {
				opts.Rendered = renderer
			}
		}

		t1 := time.Now()
		snap, err := tracker.New(opts).Run(ctx)
		if renderer != nil {
			if cerr := renderer.Close(); cerr != nil {
				slog.Warn("failed to close renderer", "err", cerr)
			}
		}
		if err != nil {
			shutdown()
			serviceutil.Fatal("failed to write snapshot", err)
		}

		found := 0
		for _, e := range snap.DeepHole {
			if e.Remaining != nil {
				found++
			}
			slog.Debug("zone", "zone", e.Zone, "remaining", remainingText(e), "source", e.Source)
		}
		slog.Info(
			"[ok] snapshot written",
			"path", cfg.Output,
			"date", snap.Date,
			"found", found,
			"zones", len(snap.DeepHole),
			"seconds", time.Since(t1).Seconds(),
		)
	},
}

func remainingText(e snapshot.Entry) string {
	if e.Remaining == nil {
		return "-"
	}
	return e.Remaining.String()
}
