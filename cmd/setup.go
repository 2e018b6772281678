package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/glint/internal/config"
	"github.com/fakeyudi/glint/internal/wizard"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure glint and install the editor plugin (re-run anytime)",
	Args:  cobra.NoArgs,
	// Bypass the normal PersistentPreRunE so setup works before any config exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd, false)
	},
}

// runSetup runs the interactive setup wizard.
// If firstRun is true, a welcome message is shown.
func runSetup(cmd *cobra.Command, firstRun bool) error {
	out := cmd.OutOrStdout()
	if firstRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Let's get you set up.")
	}

	// The current global config supplies the defaults (edit mode).
	existing := config.Defaults()
	if global, err := config.LoadGlobal(); err == nil {
		existing = config.Merge(global, nil)
	}

	ans, err := wizard.Run(cmd.InOrStdin(), out, existing)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if err := wizard.Apply(out, ans); err != nil {
		return err
	}

	fmt.Fprintln(out, "  Setup complete. Open your editor, or run 'glint watch' in a project.")
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
