package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/glint/internal/render"
	"github.com/fakeyudi/glint/internal/status"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the running glint process is publishing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		store, err := status.NewStore()
		if err != nil {
			return err
		}

		s, err := status.Current(store)
		if err != nil {
			if errors.Is(err, status.ErrNoStatus) {
				fmt.Fprintln(w, err)
				return nil
			}
			return err
		}

		if statusJSON {
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(data))
			return nil
		}

		fmt.Fprintf(w, "Mode: %s (pid %d)\n", s.Mode, s.PID)
		fmt.Fprintf(w, "Discord: %s\n", s.State)
		fmt.Fprintf(w, "Running for: %s\n", time.Since(s.StartedAt).Round(time.Second).String())
		fmt.Fprintf(w, "Last update: %s\n", s.UpdatedAt.Format(time.RFC3339))
		if s.LastError != "" {
			fmt.Fprintf(w, "Last error: %s\n", s.LastError)
		}
		if s.Activity != nil {
			fmt.Fprintln(w, render.Card(*s.Activity, time.Now()))
		} else {
			fmt.Fprintln(w, "Nothing published yet")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the raw status file")
	rootCmd.AddCommand(statusCmd)
}
