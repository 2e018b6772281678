package presence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fakeyudi/glint/internal/snapshot"
)

// Fields are the placeholder values available to templates.
type Fields struct {
	Filename  string
	Directory string
	FileDir   string
	FileType  string
	FileSize  string // human readable
	FileSizeB string // raw bytes
	FileLine  string
	TermCmds  string
}

// fieldsOf builds the placeholder values for s.
func fieldsOf(s snapshot.Snapshot) Fields {
	return Fields{
		Filename:  s.Filename,
		Directory: s.Directory,
		FileDir:   s.FileDirectory,
		FileType:  s.FileType,
		FileSize:  HumanSize(s.FileSizeBytes),
		FileSizeB: strconv.FormatInt(max(s.FileSizeBytes, 0), 10),
		FileLine:  strconv.Itoa(max(s.LineCount, 0)),
		TermCmds:  s.TerminalCommand,
	}
}

// Resolve substitutes every recognised placeholder in tmpl. Unknown
// placeholders are left as written.
func Resolve(tmpl string, f Fields) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	return strings.NewReplacer(
		"{filename}", f.Filename,
		"{directory}", f.Directory,
		"{filedir}", f.FileDir,
		"{filetype}", f.FileType,
		"{filesize}", f.FileSize,
		"{filesizeb}", f.FileSizeB,
		"{fileline}", f.FileLine,
		"{termcmds}", f.TermCmds,
	).Replace(tmpl)
}

var sizeUnits = [...]string{"B", "KB", "MB", "GB"}

// HumanSize formats a byte count with one decimal place, stepping up a unit
// once the value reaches 1024: 1024 → "1.0KB", 1536 → "1.5KB". Zero and
// negative counts format as "0B".
func HumanSize(n int64) string {
	if n <= 0 {
		return "0B"
	}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f%s", size, sizeUnits[i])
}

// MatchesAny reports whether any non-empty pattern is a substring of name.
// Matching is case-sensitive.
func MatchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(name, p) {
			return true
		}
	}
	return false
}
