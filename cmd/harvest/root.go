package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/artwall/harvest"
)

var (
	verbose    bool
	logFormat  string
	configPath string
	sourceDir  string
	destDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Turn note-export archives into normalized records",
	Long: `Harvest reads .enex note exports, parses the metadata block embedded in every note,
classifies and validates it, and writes one record per language plus every attachment.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(verbose, logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to harvest.yaml (default: search upwards from the working directory)")
}

func newLogger(verbose bool, format string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q, want text or json", format)
	}
}

// project merges harvest.yaml (explicit or discovered) with the command line flags.
// Flags win over the file.
func project(cmd *cobra.Command) (*harvest.Config, []harvest.Option, error) {
	cfg := harvest.DefaultConfig()

	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		found, err := harvest.FindConfig(wd)
		if err != nil && !errors.Is(err, harvest.ErrConfigNotFound) {
			return nil, nil, err
		}
		path = found
	}
	if path != "" {
		loaded, err := harvest.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
		slog.Debug("using config", "path", path)
	}

	if f := cmd.Flags().Lookup("source"); f != nil && f.Changed {
		cfg.Source = sourceDir
	}
	if f := cmd.Flags().Lookup("dest"); f != nil && f.Changed {
		cfg.Destination = destDir
	}
	if f := cmd.Flags().Lookup("commit"); f != nil && f.Changed {
		cfg.Commit = commitRecords
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, harvest.WithLogger(slog.Default()))
	return cfg, opts, nil
}
