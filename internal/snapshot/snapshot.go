// Package snapshot describes the editor state sampled at the start of one
// presence update and the probes that build it.
package snapshot

import (
	"path"
	"strings"
)

// BufferKind classifies the active buffer.
type BufferKind string

const (
	BufferNormal   BufferKind = "normal"
	BufferTerminal BufferKind = "terminal"
	BufferOther    BufferKind = "other"
)

// Snapshot is a read-only view of the editor, captured once per update cycle.
type Snapshot struct {
	Filename        string     `json:"filename"`
	Directory       string     `json:"directory"`
	FileDirectory   string     `json:"file_directory"`
	FileType        string     `json:"file_type"`
	FileExtension   string     `json:"file_extension"`
	FileSizeBytes   int64      `json:"file_size_bytes"`
	LineCount       int        `json:"line_count"`
	BufferKind      BufferKind `json:"buffer_kind"`
	TerminalCommand string     `json:"terminal_command,omitempty"`
	Writable        bool       `json:"writable"`
}

// EditorState is the raw state reported by the editor plugin. Paths are sent
// whole; Snapshot derives the segments it needs.
type EditorState struct {
	Cwd        string `json:"cwd"`
	Path       string `json:"path"`
	BufName    string `json:"bufname"`
	FileType   string `json:"filetype"`
	BufType    string `json:"buftype"`
	Modifiable bool   `json:"modifiable"`
	Lines      int    `json:"lines"`
	Size       int64  `json:"size"`
}

// FromEditor normalises raw editor state into a Snapshot. Malformed values
// degrade to zero rather than failing.
func FromEditor(st EditorState) Snapshot {
	s := Snapshot{
		Directory:     LastSegment(st.Cwd),
		FileType:      st.FileType,
		FileSizeBytes: max(st.Size, 0),
		LineCount:     max(st.Lines, 0),
		Writable:      st.Modifiable,
	}

	p := normalise(st.Path)
	if p != "" {
		s.Filename = path.Base(p)
		s.FileExtension = strings.TrimPrefix(path.Ext(s.Filename), ".")
	}
	s.FileDirectory = parentSegment(p)
	if s.FileDirectory == "" {
		s.FileDirectory = s.Directory
	}

	switch st.BufType {
	case "":
		s.BufferKind = BufferNormal
	case "terminal":
		s.BufferKind = BufferTerminal
		name := st.BufName
		if name == "" {
			name = s.Filename
		}
		s.TerminalCommand = TerminalCommand(LastSegment(name))
		if s.Filename == "" {
			s.Filename = LastSegment(name)
		}
	default:
		s.BufferKind = BufferOther
	}
	return s
}

// LastSegment returns the final element of a slash- or backslash-separated
// path, ignoring trailing separators.
func LastSegment(p string) string {
	p = strings.TrimRight(normalise(p), "/")
	if p == "" {
		return ""
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// parentSegment returns the last element of p's parent directory, or "" when
// p has no parent.
func parentSegment(p string) string {
	p = strings.TrimRight(p, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return LastSegment(p[:i])
}

// TerminalCommand strips the job prefix the editor puts on terminal buffer
// names: "1234:/bin/bash" becomes "/bin/bash" and "!bash" becomes "bash".
func TerminalCommand(name string) string {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i < len(name) && name[i] == ':' {
		name = name[i+1:]
	}
	return strings.TrimPrefix(name, "!")
}

func normalise(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
