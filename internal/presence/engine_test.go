package presence

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/glint/internal/config"
	"github.com/fakeyudi/glint/internal/snapshot"
)

var epoch = time.Unix(1_700_000_000, 0)

func strPtr(s string) *string { return &s }

func newEngine(mutate func(*config.Config)) *Engine {
	cfg := config.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewEngine(cfg, epoch)
}

// genSnapshot draws snapshots biased towards the values the dispatch rules
// care about.
func genSnapshot(t *rapid.T) snapshot.Snapshot {
	return snapshot.Snapshot{
		Filename:        rapid.SampledFrom([]string{"", "app.py", "NERD_tree_1", "notes", "main.go", "secret.env"}).Draw(t, "filename"),
		Directory:       rapid.SampledFrom([]string{"", "project", "private", "work-private"}).Draw(t, "directory"),
		FileDirectory:   rapid.SampledFrom([]string{"", "cmd", "private"}).Draw(t, "filedir"),
		FileType:        rapid.SampledFrom([]string{"", "python", "go", "netrw", "zig", "dotenv", "help"}).Draw(t, "filetype"),
		FileExtension:   rapid.SampledFrom([]string{"", "py", "go", "env"}).Draw(t, "ext"),
		FileSizeBytes:   rapid.Int64Range(-10, 1<<32).Draw(t, "size"),
		LineCount:       rapid.IntRange(0, 10_000).Draw(t, "lines"),
		BufferKind:      rapid.SampledFrom([]snapshot.BufferKind{snapshot.BufferNormal, snapshot.BufferTerminal, snapshot.BufferOther, ""}).Draw(t, "kind"),
		TerminalCommand: rapid.SampledFrom([]string{"", "bash", "htop"}).Draw(t, "termcmd"),
		Writable:        rapid.Bool().Draw(t, "writable"),
	}
}

func TestScenarioKnownTypeRemapped(t *testing.T) {
	e := newEngine(nil)
	a, ok := e.Compute(snapshot.Snapshot{FileType: "python", Filename: "app.py", Writable: true})
	if !ok {
		t.Fatal("unexpected suppression")
	}
	if a.LargeImage != "py" {
		t.Errorf("LargeImage = %q, want py", a.LargeImage)
	}
	if a.Details != "Editing app.py" {
		t.Errorf("Details = %q, want %q", a.Details, "Editing app.py")
	}
	if a.LargeText != "Editing a python file" {
		t.Errorf("LargeText = %q", a.LargeText)
	}
}

func TestKnownTypeWithoutRemapUsesFileType(t *testing.T) {
	e := newEngine(nil)
	a, _ := e.Compute(snapshot.Snapshot{FileType: "go", Filename: "main.go", Directory: "glint"})
	if a.LargeImage != "go" {
		t.Errorf("LargeImage = %q, want go", a.LargeImage)
	}
	if a.State != "Workspace: glint" {
		t.Errorf("State = %q, want %q", a.State, "Workspace: glint")
	}
}

func TestScenarioTerminal(t *testing.T) {
	e := newEngine(nil)
	a, ok := e.Compute(snapshot.Snapshot{BufferKind: snapshot.BufferTerminal, TerminalCommand: "bash"})
	if !ok {
		t.Fatal("unexpected suppression")
	}
	if a.Details != "Running terminal" || a.State != "bash" || a.LargeImage != "sh" {
		t.Errorf("unexpected terminal activity: %+v", a)
	}
	if a.LargeText != DefaultTerminalText {
		t.Errorf("LargeText = %q", a.LargeText)
	}
}

func TestScenarioEmptySnapshotIsIdle(t *testing.T) {
	e := newEngine(nil)
	a, ok := e.Compute(snapshot.Snapshot{})
	if !ok {
		t.Fatal("unexpected suppression")
	}
	if a.Details != "Nothing" || a.LargeText != "Nothing" {
		t.Errorf("Details/LargeText = %q/%q, want Nothing", a.Details, a.LargeText)
	}
	if a.LargeImage != DefaultIdleImage {
		t.Errorf("LargeImage = %q, want %q", a.LargeImage, DefaultIdleImage)
	}
	if a.State != "   " {
		t.Errorf("State = %q, want three spaces", a.State)
	}
}

func TestIdleOverrides(t *testing.T) {
	e := newEngine(func(c *config.Config) {
		c.Templates.IdleImage = strPtr("zzz")
		c.Templates.IdleText = strPtr("Away")
		c.Templates.IdleState = strPtr("")
	})
	a, _ := e.Compute(snapshot.Snapshot{})
	if a.LargeImage != "zzz" || a.Details != "Away" || a.LargeText != "Away" || a.State != "" {
		t.Errorf("unexpected idle activity: %+v", a)
	}
}

func TestFileExplorerByTypeAndName(t *testing.T) {
	e := newEngine(nil)
	for _, s := range []snapshot.Snapshot{
		{FileType: "netrw", Filename: "whatever"},
		{Filename: "NERD_tree_1"},
	} {
		a, _ := e.Compute(s)
		if a.LargeImage != DefaultExplorerImage {
			t.Errorf("%+v: LargeImage = %q", s, a.LargeImage)
		}
		if a.LargeText != "In the file explorer" || a.Details != "Searching for files" {
			t.Errorf("%+v: unexpected explorer texts %+v", s, a)
		}
	}
}

func TestFileExplorerOverrides(t *testing.T) {
	e := newEngine(func(c *config.Config) {
		c.Templates.FileExplorerImage = strPtr("tree")
		c.Templates.FileExplorerState = strPtr("in {directory}")
	})
	a, _ := e.Compute(snapshot.Snapshot{FileType: "nerdtree", Directory: "glint"})
	if a.LargeImage != "tree" {
		t.Errorf("LargeImage = %q, want tree", a.LargeImage)
	}
	if a.State != "in glint" {
		t.Errorf("State = %q, want %q", a.State, "in glint")
	}
}

func TestWritableUnknownBuffer(t *testing.T) {
	e := newEngine(nil)
	tests := []struct {
		name string
		s    snapshot.Snapshot
		text string
	}{
		{"typed", snapshot.Snapshot{Filename: "build.zig", FileType: "zig", Writable: true}, "Editing a zig file"},
		{"extension only", snapshot.Snapshot{Filename: "data.xyz", FileExtension: "xyz", Writable: true}, "xyz"},
		{"nothing", snapshot.Snapshot{Filename: "LICENSE", Writable: true}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := e.Compute(tt.s)
			if a.LargeImage != DefaultUnknownImage {
				t.Errorf("LargeImage = %q", a.LargeImage)
			}
			if a.LargeText != tt.text {
				t.Errorf("LargeText = %q, want %q", a.LargeText, tt.text)
			}
			if a.Details != "Editing "+tt.s.Filename {
				t.Errorf("Details = %q", a.Details)
			}
		})
	}
}

func TestReadOnlyNamedBufferIsIdle(t *testing.T) {
	e := newEngine(nil)
	if c := e.Classify(snapshot.Snapshot{Filename: "help.txt", Writable: false}); c != CaseIdle {
		t.Errorf("Classify = %v, want idle", c)
	}
}

func TestCustomIconMakesTypeKnown(t *testing.T) {
	e := newEngine(func(c *config.Config) {
		c.CustomIcons = map[string]string{"zig": "zig-logo"}
	})
	a, _ := e.Compute(snapshot.Snapshot{FileType: "zig", Filename: "a.zig"})
	if a.LargeImage != "zig-logo" {
		t.Errorf("LargeImage = %q, want zig-logo", a.LargeImage)
	}
}

func TestBaselineCopiesBranding(t *testing.T) {
	e := newEngine(func(c *config.Config) {
		c.SmallImage = "nvim"
		c.SmallText = "Neovim"
		c.TimestampOffset = 300
	})
	b := e.Baseline()
	if b.Details != "Nothing" || b.State != "" || b.LargeImage != "" || b.LargeText != "" {
		t.Errorf("unexpected baseline: %+v", b)
	}
	if b.SmallImage != "nvim" || b.SmallText != "Neovim" {
		t.Errorf("branding not copied: %+v", b)
	}
	if b.Start != epoch.Unix()-300 {
		t.Errorf("Start = %d, want %d", b.Start, epoch.Unix()-300)
	}
}

// Feature: glint, Property: ignored file type without label suppresses presence
func TestIgnoredFileTypeSuppressed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genSnapshot(t)
		if s.FileType == "" {
			s.FileType = "dotenv"
		}
		e := newEngine(func(c *config.Config) {
			c.IgnoredFileTypes = []string{s.FileType}
		})
		a, ok := e.Compute(s)
		if ok {
			t.Fatalf("expected suppression for %+v, got %+v", s, a)
		}
		if a != e.Baseline() {
			t.Fatalf("suppressed result must be the baseline, got %+v", a)
		}
	})
}

// Feature: glint, Property: ignored file type with label hides the filename
func TestIgnoredFileTypeReplacedByLabel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genSnapshot(t)
		s.FileType = "dotenv"
		s.Filename = "secret-" + rapid.StringMatching(`[a-z]{3,8}`).Draw(t, "secret") + ".env"
		s.Directory = "project"
		s.FileDirectory = "cmd"

		e := newEngine(func(c *config.Config) {
			c.IgnoredFileTypes = []string{"dotenv"}
			c.IgnoredFileTypesName = strPtr("[hidden]")
		})
		a, ok := e.Compute(s)
		if !ok {
			t.Fatal("label configured: must not suppress")
		}
		if strings.Contains(a.Details, s.Filename) || strings.Contains(a.State, s.Filename) {
			t.Fatalf("original filename leaked: %+v", a)
		}
		if c := e.Classify(s); c == CaseKnownType {
			t.Fatalf("file type must be treated as empty, got case %v", c)
		}
	})
}

func TestIgnoredDirectorySuppressedWithoutLabel(t *testing.T) {
	e := newEngine(func(c *config.Config) {
		c.IgnoredDirectories = []string{"private"}
	})
	for _, s := range []snapshot.Snapshot{
		{Directory: "private", FileType: "go", Filename: "x.go"},
		{Directory: "work", FileDirectory: "private", FileType: "go", Filename: "x.go"},
	} {
		if _, ok := e.Compute(s); ok {
			t.Errorf("expected suppression for %+v", s)
		}
	}
}

func TestIgnoredDirectoryReplacedByLabel(t *testing.T) {
	cfg := config.Defaults()
	cfg.IgnoredDirectories = []string{"private"}
	cfg.IgnoredDirectoriesName = strPtr("redacted")
	cfg.Templates.EditingState = strPtr("{directory}/{filedir}")
	e := NewEngine(cfg, epoch)

	s := snapshot.Snapshot{Directory: "work-private", FileDirectory: "private", FileType: "go", Filename: "x.go"}
	a, ok := e.Compute(s)
	if !ok {
		t.Fatal("label configured: must not suppress")
	}
	if a.State != "work-redacted/redacted" {
		t.Errorf("State = %q, want %q", a.State, "work-redacted/redacted")
	}
	// The ignore list itself must be untouched for the next computation.
	if cfg.IgnoredDirectories[0] != "private" {
		t.Errorf("ignore list mutated: %v", cfg.IgnoredDirectories)
	}
	if _, ok := e.Compute(s); !ok {
		t.Error("second computation should behave the same")
	}
	if a2, _ := e.Compute(s); a2 != a {
		t.Errorf("second computation differs: %+v vs %+v", a2, a)
	}
}

func TestIgnoredDirectoryLabelIsNotRewritten(t *testing.T) {
	cfg := config.Defaults()
	// The label contains a later ignored entry; it must appear exactly once.
	cfg.IgnoredDirectories = []string{"secret", "hidden"}
	cfg.IgnoredDirectoriesName = strPtr("hidden-dir")
	cfg.Templates.EditingState = strPtr("{directory}|{filedir}")
	e := NewEngine(cfg, epoch)

	s := snapshot.Snapshot{Directory: "secret", FileDirectory: "hidden-secret", FileType: "go", Filename: "x.go"}
	a, ok := e.Compute(s)
	if !ok {
		t.Fatal("label configured: must not suppress")
	}
	if want := "hidden-dir|hidden-dir-hidden-dir"; a.State != want {
		t.Errorf("State = %q, want %q", a.State, want)
	}
}

func TestIgnoredDirectoryLongestEntryWins(t *testing.T) {
	cfg := config.Defaults()
	cfg.IgnoredDirectories = []string{"acme", "acme-internal"}
	cfg.IgnoredDirectoriesName = strPtr("client")
	cfg.Templates.EditingState = strPtr("{directory}")
	e := NewEngine(cfg, epoch)

	a, _ := e.Compute(snapshot.Snapshot{Directory: "acme-internal", FileType: "go", Filename: "x.go"})
	if a.State != "client" {
		t.Errorf("State = %q, want %q", a.State, "client")
	}
}

// Feature: glint, Property: case dispatch is total and mutually exclusive
func TestDispatchTotal(t *testing.T) {
	e := newEngine(func(c *config.Config) {
		c.IgnoredFileTypes = []string{"dotenv"}
		c.IgnoredDirectories = []string{"private"}
	})
	rapid.Check(t, func(t *rapid.T) {
		s := genSnapshot(t)
		c := e.Classify(s)
		a, ok := e.Compute(s)

		if c == CaseSuppressed {
			if ok {
				t.Fatalf("Classify says suppressed but Compute published %+v", a)
			}
			return
		}
		if !ok {
			t.Fatalf("Compute suppressed but Classify returned %v", c)
		}

		// Exactly one branch matches, identified by the fields it sets.
		switch c {
		case CaseKnownType:
			if a.LargeImage == DefaultIdleImage || a.LargeImage == DefaultExplorerImage {
				t.Fatalf("known type with neutral image: %+v", a)
			}
		case CaseFileExplorer:
			if a.LargeImage != DefaultExplorerImage || a.Details != DefaultExplorerDetails {
				t.Fatalf("explorer activity mismatch: %+v", a)
			}
		case CaseTerminal:
			if a.LargeImage != DefaultTerminalImage || a.Details != DefaultTerminalDetails {
				t.Fatalf("terminal activity mismatch: %+v", a)
			}
		case CaseWritable:
			if a.LargeImage != DefaultUnknownImage || a.Details == DefaultIdleText {
				t.Fatalf("writable activity mismatch: %+v", a)
			}
		case CaseIdle:
			if a.Details != DefaultIdleText || a.State != DefaultIdleState {
				t.Fatalf("idle activity mismatch: %+v", a)
			}
		default:
			t.Fatalf("unexpected case %v", c)
		}

		if a.SmallImage != "vim" || a.SmallText != "Vim" || a.Start != epoch.Unix() {
			t.Fatalf("branding/timestamp not copied: %+v", a)
		}
	})
}

// Feature: glint, Property: Compute is deterministic and independent of history
func TestComputeHasNoCarryOver(t *testing.T) {
	e := newEngine(nil)
	rapid.Check(t, func(t *rapid.T) {
		first := genSnapshot(t)
		second := genSnapshot(t)

		want, wantOK := e.Compute(second)
		_, _ = e.Compute(first)
		got, gotOK := e.Compute(second)
		if got != want || gotOK != wantOK {
			t.Fatalf("result depends on previous call: %+v vs %+v", got, want)
		}
	})
}
