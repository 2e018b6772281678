package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/render"
	"github.com/fakeyudi/glint/internal/snapshot"
)

var (
	previewFormat   string
	previewTerminal string
	previewFileType string
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show the presence a file would produce, without contacting Discord",
	Example: `  glint preview main.go
  glint preview --format json cmd/root.go
  glint preview --terminal htop`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := render.For(previewFormat)
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		var s snapshot.Snapshot
		switch {
		case previewTerminal != "":
			s = snapshot.FromEditor(snapshot.EditorState{
				Cwd:     cwd,
				BufName: "term://" + cwd + "//1:" + previewTerminal,
				BufType: "terminal",
			})
		case len(args) == 1:
			s, err = snapshot.FromFile(args[0], cwd)
			if err != nil {
				return err
			}
		default:
			// No buffer at all: the idle case.
			s = snapshot.FromEditor(snapshot.EditorState{Cwd: cwd})
		}
		if previewFileType != "" {
			s.FileType = previewFileType
		}

		engine := presence.NewEngine(cfg, time.Now())
		out, err := r.Render(render.NewPreview(engine, s))
		if err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprint(w, string(out))
		if !strings.HasSuffix(string(out), "\n") {
			fmt.Fprintln(w)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "card", "output format: "+strings.Join(render.Formats, ", "))
	previewCmd.Flags().StringVar(&previewTerminal, "terminal", "", "preview a terminal buffer running this command")
	previewCmd.Flags().StringVar(&previewFileType, "filetype", "", "override the detected file type")
	rootCmd.AddCommand(previewCmd)
}
