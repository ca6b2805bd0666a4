package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artwall/harvest"
)

var (
	jsonOutput    bool
	commitRecords bool
	archivePaths  []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every archive in the source directory and write the records",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		res, err := process(cmd, false)
		if err != nil {
			fatal("Run failed", err)
		}
		emit(cmd, res, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the pipeline without writing; exit non-zero when any note fails",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		res, err := process(cmd, true)
		if err != nil {
			fatal("Check failed", err)
		}
		emit(cmd, res, true)
		if len(res.Report.Failed) > 0 {
			os.Exit(1)
		}
	},
}

func process(cmd *cobra.Command, dryRun bool) (*harvest.Result, error) {
	cfg, opts, err := project(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Source == "" {
		return nil, errors.New("no source directory: pass --source or set it in harvest.yaml")
	}

	dest := cfg.Destination
	if dryRun {
		opts = append(opts, harvest.WithDryRun(true))
		if dest == "" {
			dest = os.TempDir()
		}
	}
	if dest == "" {
		return nil, errors.New("no destination directory: pass --dest or set it in harvest.yaml")
	}

	h, err := harvest.New(dest, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize harvest: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return h.Run(ctx, h.Source(cfg.Source, archivePaths...))
}

func emit(cmd *cobra.Command, res *harvest.Result, dryRun bool) {
	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			fatal("Failed to encode report", err)
		}
		return
	}
	printReport(cmd.OutOrStdout(), res, dryRun)
}

func init() {
	for _, c := range []*cobra.Command{runCmd, checkCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&sourceDir, "source", "s", "", "Directory holding the .enex archives")
		c.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory for records")
		c.Flags().BoolVar(&jsonOutput, "json", false, "Output the report in JSON format")
		c.Flags().StringSliceVar(&archivePaths, "archive", nil, "Process only these archive files")
	}
	runCmd.Flags().BoolVar(&commitRecords, "commit", false, "Commit written records when the destination is a git work tree")
}
