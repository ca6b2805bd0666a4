package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artwall/harvest"
	"github.com/artwall/harvest/pkg/adapters/enex"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the source directory and process archives as they arrive",
	Long: `Watch processes every archive already present, then waits for new or updated
archives. Each one is processed once its size has been stable for the configured checks.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, opts, err := project(cmd)
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		if cfg.Source == "" || cfg.Destination == "" {
			fatal("Watch needs a source and a destination", errors.New("pass --source and --dest or set them in harvest.yaml"))
		}

		opts = append(opts, harvest.WithWatcherErrorHandler(func(err error) {
			slog.Error("watcher failure", "error", err)
		}))
		h, err := harvest.New(cfg.Destination, opts...)
		if err != nil {
			fatal("Failed to initialize harvest", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := h.Run(ctx, h.Source(cfg.Source))
		if err != nil {
			fatal("Initial run failed", err)
		}
		emit(cmd, res, false)

		slog.Info("watching for archives", "dir", cfg.Source)
		err = h.Watch(ctx, cfg.Source, func(ev enex.Event, res *harvest.Result, err error) {
			if err != nil {
				slog.Error("batch failed", "archive", ev.Path, "error", err)
				return
			}
			emit(cmd, res, false)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fatal("Watch stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&sourceDir, "source", "s", "", "Directory to watch for .enex archives")
	watchCmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory for records")
	watchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output each report in JSON format")
	watchCmd.Flags().BoolVar(&commitRecords, "commit", false, "Commit written records after every batch")
}
