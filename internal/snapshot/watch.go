package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// DefaultIgnore lists directory and file globs the watcher never reports.
var DefaultIgnore = []string{".git", "node_modules", ".hg", ".svn", "*.swp", "*.swx", "*~", "4913"}

// Watch starts a recursive fsnotify watcher on dir and calls fn with the path
// of every file that is written or created, until ctx is cancelled. fn runs on
// the watcher goroutine; callers that need serialisation hand the path off.
func Watch(ctx context.Context, dir string, ignore []string, fn func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Walk the directory tree and add a watcher for every subdirectory.
	if err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isIgnored(path, ignore) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if isIgnored(event.Name, ignore) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			// New directories are watched too; they are not an editor event.
			if info.IsDir() {
				if event.Has(fsnotify.Create) {
					_ = watcher.Add(event.Name)
				}
				continue
			}
			fn(event.Name)

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}

// isIgnored reports whether the base name of path matches any glob.
func isIgnored(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
