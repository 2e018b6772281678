// Package render formats a computed activity for humans and scripts.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/snapshot"
)

// Preview is one engine run: the input snapshot and what came out of it.
type Preview struct {
	Snapshot   snapshot.Snapshot `json:"snapshot"`
	Case       string            `json:"case"`
	Suppressed bool              `json:"suppressed"`
	Activity   presence.Activity `json:"activity"`
}

// NewPreview runs e over s.
func NewPreview(e *presence.Engine, s snapshot.Snapshot) *Preview {
	a, ok := e.Compute(s)
	return &Preview{
		Snapshot:   s,
		Case:       e.Classify(s).String(),
		Suppressed: !ok,
		Activity:   a,
	}
}

// Renderer serializes a Preview to bytes.
type Renderer interface {
	Render(p *Preview) ([]byte, error)
}

// Formats accepted by For.
var Formats = []string{"card", "json", "markdown"}

// For returns the renderer for format.
func For(format string) (Renderer, error) {
	switch format {
	case "card", "":
		return &CardRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// JSONRenderer renders a Preview as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(p *Preview) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// MarkdownRenderer renders a Preview as a Markdown report.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(p *Preview) ([]byte, error) {
	var sb strings.Builder
	a := p.Activity

	title := p.Snapshot.Filename
	if title == "" {
		title = "(no file)"
	}
	fmt.Fprintf(&sb, "# glint preview: %s\n\n", title)

	sb.WriteString("## Activity\n\n")
	if p.Suppressed {
		sb.WriteString("_Suppressed by an ignore rule; the idle baseline is sent._\n\n")
	}
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	row := func(k, v string) { fmt.Fprintf(&sb, "| %s | %s |\n", k, mdCell(v)) }
	row("case", p.Case)
	row("details", a.Details)
	row("state", a.State)
	row("large image", a.LargeImage)
	row("large text", a.LargeText)
	row("small image", a.SmallImage)
	row("small text", a.SmallText)
	row("start", time.Unix(a.Start, 0).UTC().Format("2006-01-02 15:04:05 MST"))
	sb.WriteString("\n")

	s := p.Snapshot
	sb.WriteString("## Snapshot\n\n")
	fmt.Fprintf(&sb, "- Directory: %s\n", orNone(s.Directory))
	fmt.Fprintf(&sb, "- File directory: %s\n", orNone(s.FileDirectory))
	fmt.Fprintf(&sb, "- File type: %s\n", orNone(s.FileType))
	fmt.Fprintf(&sb, "- Size: %s (%d lines)\n", presence.HumanSize(s.FileSizeBytes), s.LineCount)
	fmt.Fprintf(&sb, "- Buffer: %s\n", orNone(string(s.BufferKind)))
	if s.BufferKind == snapshot.BufferTerminal {
		fmt.Fprintf(&sb, "- Command: `%s`\n", s.TerminalCommand)
	}
	fmt.Fprintf(&sb, "- Writable: %t\n", s.Writable)

	return []byte(sb.String()), nil
}

// mdCell keeps a value inside one table cell. Whitespace-only values are
// quoted so they stay visible.
func mdCell(v string) string {
	if v != "" && strings.TrimSpace(v) == "" {
		return fmt.Sprintf("%q", v)
	}
	return strings.ReplaceAll(v, "|", `\|`)
}

func orNone(v string) string {
	if v == "" {
		return "_none_"
	}
	return v
}
