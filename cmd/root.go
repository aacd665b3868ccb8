// Package cmd implements the CLI commands for obsidit using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/obsidit/config"
)

// Global flag variables.
var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "obsidit",
	Short: "obsidit: clip web pages, selections and threads into Obsidian notes",
	Long: `obsidit turns a web page, a selected fragment of it, or a social media
thread into a templated Markdown note and hands it to Obsidian.

Usage:
  obsidit clip <url> [flags]
  obsidit config init
  obsidit config validate`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd.ErrOrStderr(), flagLogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: user config dir/obsidit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log_level", "", "Log level: debug, info, warn or error (overrides log.level)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger installs a text handler on w as the default slog logger.
// An empty level leaves the choice to the config file.
func setupLogger(w io.Writer, level string) error {
	if level == "" {
		return nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid --log_level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// configPath returns --config or the per-user default location.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file. A missing default file yields the
// built-in defaults; a missing explicit --config is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && flagConfig == "" {
		slog.Debug("config: no config file, using defaults", "path", path)
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	if flagLogLevel == "" {
		if err := setupLogger(cmd.ErrOrStderr(), cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
