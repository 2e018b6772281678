package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/glint/internal/config"
	"github.com/fakeyudi/glint/internal/status"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// logger is configured in PersistentPreRunE; it discards until then.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// logFile is the open log file, if any, closed in PersistentPostRunE.
var logFile *os.File

var rootCmd = &cobra.Command{
	Use:   "glint",
	Short: "Show what you are editing as Discord rich presence",
	Long: `glint turns the state of your editor into Discord rich presence.

The editor plugin starts 'glint serve' and feeds it editor state; 'glint watch'
does the same from filesystem changes for editors without the plugin.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// First run: no global config → run setup wizard automatically.
		// serve talks to the editor over stdin, so never prompt there.
		if !config.GlobalExists() && cmd.Name() != "serve" {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to glint! Looks like this is your first time.")
				if err := runSetup(cmd, true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue with defaults.
		}

		if err := loadConfig(); err != nil {
			return err
		}
		return setupLogging(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			err := logFile.Close()
			logFile = nil
			return err
		}
		return nil
	},
}

// loadConfig layers defaults, global, project, .env and GLINT_* variables.
func loadConfig() error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolving config directory: %w", err)
	}
	if err := config.LoadEnv(filepath.Join(dir, ".env"), ".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	global, err := config.LoadGlobal()
	if err != nil {
		return fmt.Errorf("loading global config: %w", err)
	}
	project, err := config.LoadProject()
	if err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	cfg = config.Merge(global, project)

	if err := config.ApplyEnv(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setupLogging points the logger at log_file. serve owns stdin and its
// stdout is discarded by the editor, so it falls back to glint.log in the
// data directory; every other command logs to stderr.
func setupLogging(cmd *cobra.Command) error {
	path := cfg.LogFile
	if path == "" && cmd.Name() == "serve" {
		dir, err := status.DataDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(dir, "glint.log")
	}

	var w io.Writer = cmd.ErrOrStderr()
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
		w = f
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Debug("configuration loaded",
		slog.String("command", cmd.Name()),
		slog.String("client_id", cfg.ClientID),
		slog.String("log_level", cfg.LogLevel))
	return nil
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
