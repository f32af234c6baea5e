// Package commands implements the timeclock CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shiftworks/timeclock/config"
	"github.com/shiftworks/timeclock/timelog"
)

// rootOptions carries the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the timeclock command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "timeclock",
		Short: "Employee time tracking service",
		Long: `Timeclock tracks employee work sessions: clock-in/clock-out records,
live attendance, weekly hours, and payroll exports.

Clock events come from the CLI, the HTTP API, or hardware time clocks
(fingerprint, RFID, facial scanners) publishing to the event bus.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newClockInCmd(opts),
		newClockOutCmd(opts),
		newStatusCmd(opts),
		newExportCmd(opts),
		newReportCmd(opts),
		newVersionCmd(version),
	)
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("timeclock version %s\n", version)
		},
	}
}

// loadConfig loads and validates the effective configuration, applying
// the log level and installing the default logger.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.LoadFromFile(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg.Log.Level)
	return cfg, nil
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

// openStore opens the configured snapshot backend and restores the log.
func openStore(cfg *config.Config, logger *slog.Logger) (*timelog.Store, error) {
	path, err := cfg.SnapshotPath()
	if err != nil {
		return nil, err
	}

	var snap timelog.Snapshot
	switch cfg.Snapshot.Driver {
	case "sqlite":
		snap, err = timelog.OpenSQLiteSnapshot(path)
		if err != nil {
			return nil, err
		}
	default:
		snap = timelog.NewFileSnapshot(path)
	}

	return timelog.NewStore(snap, logger), nil
}
