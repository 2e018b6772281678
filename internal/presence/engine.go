package presence

import (
	"sort"
	"strings"
	"time"

	"github.com/fakeyudi/glint/internal/config"
	"github.com/fakeyudi/glint/internal/snapshot"
)

// Built-in texts and image keys used when the config has no override.
const (
	DefaultEditingDetails = "Editing {filename}"
	DefaultEditingState   = "Workspace: {directory}"
	DefaultEditingText    = "Editing a {filetype} file"

	DefaultExplorerImage   = "file-explorer"
	DefaultExplorerText    = "In the file explorer"
	DefaultExplorerDetails = "Searching for files"

	DefaultTerminalImage   = "sh"
	DefaultTerminalText    = "In the terminal"
	DefaultTerminalDetails = "Running terminal"
	DefaultTerminalState   = "{termcmds}"

	DefaultUnknownImage = "none"
	DefaultIdleImage    = "none"
	DefaultIdleText     = "Nothing"
	DefaultIdleState    = "   "

	baselineDetails = "Nothing"
)

// Engine computes activities from snapshots. All lookup tables are built once
// in NewEngine; the engine never changes after that and never touches the
// Config it was built from.
type Engine struct {
	tmpl config.Templates

	smallImage string
	smallText  string
	start      int64

	remap map[string]string
	known map[string]bool

	ignoredTypes     map[string]bool
	ignoredTypesName *string
	ignoredDirs      []string
	dirLabeler       *strings.Replacer // nil without a label

	explorers     map[string]bool
	explorerNames []string
}

// NewEngine prepares an Engine for cfg. now is the process start; the
// configured timestamp offset is subtracted from it.
func NewEngine(cfg config.Config, now time.Time) *Engine {
	remap, known := cfg.Icons()
	e := &Engine{
		tmpl:             cfg.Templates,
		smallImage:       cfg.SmallImage,
		smallText:        cfg.SmallText,
		start:            now.Unix() - cfg.TimestampOffset,
		remap:            remap,
		known:            known,
		ignoredTypes:     toSet(cfg.IgnoredFileTypes),
		ignoredTypesName: cfg.IgnoredFileTypesName,
		ignoredDirs:      append([]string(nil), cfg.IgnoredDirectories...),
		explorers:        toSet(cfg.FileExplorers),
		explorerNames:    append([]string(nil), cfg.FileExplorerNames...),
	}
	if cfg.IgnoredDirectoriesName != nil {
		e.dirLabeler = labeler(e.ignoredDirs, *cfg.IgnoredDirectoriesName)
	}
	return e
}

// labeler replaces every ignored entry with label in a single pass, so text
// the label itself introduces is never rewritten. Longer entries win where
// entries overlap.
func labeler(dirs []string, label string) *strings.Replacer {
	entries := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d != "" {
			entries = append(entries, d)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return len(entries[i]) > len(entries[j]) })
	pairs := make([]string, 0, 2*len(entries))
	for _, d := range entries {
		pairs = append(pairs, d, label)
	}
	return strings.NewReplacer(pairs...)
}

// Baseline returns the idle activity every computation starts from.
func (e *Engine) Baseline() Activity {
	return Activity{
		Details:    baselineDetails,
		State:      "",
		SmallImage: e.smallImage,
		SmallText:  e.smallText,
		Start:      e.start,
	}
}

// Compute builds the activity for s. The boolean is false when the snapshot
// is suppressed by an ignore rule without a replacement label; the returned
// activity is then the baseline.
func (e *Engine) Compute(s snapshot.Snapshot) (Activity, bool) {
	s, ok := e.sanitize(s)
	if !ok {
		return e.Baseline(), false
	}
	return e.build(s, e.dispatch(s)), true
}

// Classify reports which branch Compute takes for s.
func (e *Engine) Classify(s snapshot.Snapshot) Case {
	s, ok := e.sanitize(s)
	if !ok {
		return CaseSuppressed
	}
	return e.dispatch(s)
}

// sanitize applies the ignore rules to a copy of s. It reports false when
// presence must be suppressed.
func (e *Engine) sanitize(s snapshot.Snapshot) (snapshot.Snapshot, bool) {
	if s.FileType != "" && e.ignoredTypes[s.FileType] {
		if e.ignoredTypesName == nil {
			return s, false
		}
		s.Filename = *e.ignoredTypesName
		s.FileType = ""
	}

	if e.dirIgnored(s.Directory) || e.dirIgnored(s.FileDirectory) {
		if e.dirLabeler == nil {
			return s, false
		}
		s.Directory = e.dirLabeler.Replace(s.Directory)
		s.FileDirectory = e.dirLabeler.Replace(s.FileDirectory)
	}
	return s, true
}

func (e *Engine) dirIgnored(dir string) bool {
	return dir != "" && MatchesAny(dir, e.ignoredDirs)
}

// dispatch picks the first matching case; the order is significant.
func (e *Engine) dispatch(s snapshot.Snapshot) Case {
	switch {
	case s.FileType != "" && e.hasIcon(s.FileType):
		return CaseKnownType
	case e.explorers[s.FileType] || MatchesAny(s.Filename, e.explorerNames):
		return CaseFileExplorer
	case s.BufferKind == snapshot.BufferTerminal:
		return CaseTerminal
	case s.Writable && s.Filename != "":
		return CaseWritable
	default:
		return CaseIdle
	}
}

func (e *Engine) hasIcon(fileType string) bool {
	_, remapped := e.remap[fileType]
	return remapped || e.known[fileType]
}

func (e *Engine) build(s snapshot.Snapshot, c Case) Activity {
	f := fieldsOf(s)
	t := e.tmpl
	details := Resolve(pick(t.EditingDetails, DefaultEditingDetails), f)
	state := Resolve(pick(t.EditingState, DefaultEditingState), f)
	text := Resolve(pick(t.EditingText, DefaultEditingText), f)

	a := e.Baseline()
	switch c {
	case CaseKnownType:
		a.LargeImage = s.FileType
		if icon, ok := e.remap[s.FileType]; ok {
			a.LargeImage = icon
		}
		a.LargeText = text
		a.Details = details
		a.State = state

	case CaseFileExplorer:
		a.LargeImage = pick(t.FileExplorerImage, DefaultExplorerImage)
		a.LargeText = Resolve(pick(t.FileExplorerText, DefaultExplorerText), f)
		a.Details = Resolve(pick(t.FileExplorerDetails, DefaultExplorerDetails), f)
		a.State = state
		if t.FileExplorerState != nil {
			a.State = Resolve(*t.FileExplorerState, f)
		}

	case CaseTerminal:
		a.LargeImage = pick(t.TerminalImage, DefaultTerminalImage)
		a.LargeText = Resolve(pick(t.TerminalText, DefaultTerminalText), f)
		a.Details = Resolve(pick(t.TerminalDetails, DefaultTerminalDetails), f)
		a.State = Resolve(pick(t.TerminalState, DefaultTerminalState), f)

	case CaseWritable:
		a.LargeImage = pick(t.UnknownImage, DefaultUnknownImage)
		switch {
		case s.FileType != "":
			a.LargeText = text
		case s.FileExtension != "":
			a.LargeText = s.FileExtension
		default:
			a.LargeText = "Unknown"
		}
		a.Details = details
		a.State = state

	default:
		a.LargeImage = pick(t.IdleImage, DefaultIdleImage)
		idle := Resolve(pick(t.IdleText, DefaultIdleText), f)
		a.Details = idle
		a.LargeText = idle
		a.State = Resolve(pick(t.IdleState, DefaultIdleState), f)
	}
	return a
}

func pick(override *string, def string) string {
	if override != nil {
		return *override
	}
	return def
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		if it != "" {
			set[it] = true
		}
	}
	return set
}
