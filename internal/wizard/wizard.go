// Package wizard runs the interactive first-time setup. It fills in the
// global config and picks the editor to install the plugin into.
package wizard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/glint/internal/config"
	"github.com/fakeyudi/glint/internal/editor"
)

// Answers is the outcome of one wizard run.
type Answers struct {
	Config config.Config
	// Editor is the editor to install the plugin into, or "" for none.
	Editor string
}

// Run asks the setup questions on r/w. existing supplies the default for
// each prompt (edit mode).
func Run(r io.Reader, w io.Writer, existing config.Config) (*Answers, error) {
	br := bufio.NewReader(r)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(w, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(w, "%s: ", prompt)
		}
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		return strings.ToLower(ans) == "y" || strings.ToLower(ans) == "yes", nil
	}

	ans := &Answers{Config: existing}
	cfg := &ans.Config

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(w, "  │     glint — first-time setup    │")
	fmt.Fprintln(w, "  └─────────────────────────────────┘")
	fmt.Fprintln(w)

	var err error
	ed := detectEditor()

	cfg.ClientID, err = ask("  Discord application ID", cfg.ClientID)
	if err != nil {
		return nil, err
	}

	cfg.SmallImage, err = ask("  Small image key (editor logo)", smallImageFor(ed, cfg.SmallImage))
	if err != nil {
		return nil, err
	}
	cfg.SmallText, err = ask("  Small image text", smallTextFor(ed, cfg.SmallText))
	if err != nil {
		return nil, err
	}

	hide, err := askBool("  Hide some file types from your presence", len(cfg.IgnoredFileTypes) > 0)
	if err != nil {
		return nil, err
	}
	if hide {
		list, err := ask("  File types to hide (comma separated)", strings.Join(cfg.IgnoredFileTypes, ","))
		if err != nil {
			return nil, err
		}
		cfg.IgnoredFileTypes = splitList(list)
	} else {
		cfg.IgnoredFileTypes = []string{}
	}

	install, err := askBool("  Install the editor plugin", true)
	if err != nil {
		return nil, err
	}
	if install {
		e, err := ask("  Editor (vim/nvim)", ed)
		if err != nil {
			return nil, err
		}
		ans.Editor = e
	}

	fmt.Fprintln(w)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid answers: %w", err)
	}
	return ans, nil
}

// detectEditor guesses the user's editor from $EDITOR.
func detectEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if filepath.Base(os.Getenv(env)) == "nvim" {
			return "nvim"
		}
	}
	return "vim"
}

// smallImageFor swaps the stock vim branding for neovim users.
func smallImageFor(ed, current string) string {
	if ed == "nvim" && current == "vim" {
		return "neovim"
	}
	return current
}

func smallTextFor(ed, current string) string {
	if ed == "nvim" && current == "Vim" {
		return "Neovim"
	}
	return current
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Apply saves the answers to the global config and installs the plugin.
// A failed plugin install is reported but not fatal.
func Apply(w io.Writer, ans *Answers) error {
	path, err := config.GlobalPath()
	if err != nil {
		return err
	}
	if err := config.Save(path, &ans.Config); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(w, "  ✓ Config saved to %s\n", path)

	if ans.Editor != "" {
		if err := editor.Install(w, ans.Editor); err != nil {
			fmt.Fprintf(w, "  ⚠ Plugin install failed: %v\n", err)
			fmt.Fprintln(w, "    You can retry with: glint setup")
		}
	}
	return nil
}
