package editor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Supported lists the editors the plugin can be installed into.
var Supported = []string{"vim", "nvim"}

// PluginPath returns where the plugin file for editor is written. Both
// directories are on the default runtimepath, so no rc change is needed.
func PluginPath(editor string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch editor {
	case "vim":
		return filepath.Join(home, ".vim", "plugin", "glint.vim"), nil
	case "nvim":
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, "nvim", "plugin", "glint.vim"), nil
	default:
		return "", fmt.Errorf("unsupported editor for plugin: %s (supported: vim, nvim)", editor)
	}
}

// Install writes the plugin for editor and tells the user how to load it.
func Install(w io.Writer, editor string) error {
	path, err := PluginPath(editor)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(VimPlugin), 0o644); err != nil {
		return fmt.Errorf("writing plugin file: %w", err)
	}

	fmt.Fprintf(w, "\n  ✓ Plugin written to %s\n", path)
	fmt.Fprintf(w, "\n  Restart %s, or load it now with:\n", editor)
	fmt.Fprintf(w, "    :source %s\n\n", path)
	return nil
}

// IsInstalled reports whether the plugin file exists on disk.
func IsInstalled(editor string) bool {
	path, err := PluginPath(editor)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
