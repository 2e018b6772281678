package snapshot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extFileTypes maps file extensions to the type tags Vim assigns them. Only
// used by the filesystem probe, where no editor is around to ask.
var extFileTypes = map[string]string{
	"c":     "c",
	"h":     "c",
	"cc":    "cpp",
	"cpp":   "cpp",
	"hpp":   "cpp",
	"cr":    "crystal",
	"cs":    "cs",
	"css":   "css",
	"ex":    "elixir",
	"exs":   "elixir",
	"f":     "fortran",
	"f90":   "fortran",
	"go":    "go",
	"hs":    "haskell",
	"html":  "html",
	"js":    "javascript",
	"jsx":   "javascriptreact",
	"json":  "json",
	"md":    "markdown",
	"ml":    "ocaml",
	"nim":   "nim",
	"py":    "python",
	"rb":    "ruby",
	"rs":    "rust",
	"sh":    "sh",
	"bash":  "sh",
	"sql":   "sql",
	"tex":   "tex",
	"ts":    "typescript",
	"tsx":   "typescriptreact",
	"vim":   "vim",
	"vue":   "vue",
	"toml":  "toml",
	"yaml":  "yaml",
	"yml":   "yaml",
	"txt":   "text",
	"proto": "proto",
}

// FileTypeForExtension returns the type tag for ext (without the dot), or ""
// when the extension is not recognised.
func FileTypeForExtension(ext string) string {
	return extFileTypes[strings.ToLower(ext)]
}

// FromFile builds a Snapshot for path as if it were open in a normal buffer
// with cwd as the working directory.
func FromFile(path, cwd string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Snapshot{}, fmt.Errorf("%s is a directory", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	lines, err := countLines(abs)
	if err != nil {
		// Unreadable content still has a name and a size.
		lines = 0
	}

	ext := strings.TrimPrefix(filepath.Ext(abs), ".")
	return FromEditor(EditorState{
		Cwd:        cwd,
		Path:       abs,
		FileType:   FileTypeForExtension(ext),
		Modifiable: info.Mode().Perm()&0o200 != 0,
		Lines:      lines,
		Size:       info.Size(),
	}), nil
}

// countLines mirrors line("$"): an empty file still has one line.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	buf := make([]byte, 32*1024)
	n := 0
	var last byte
	for {
		c, err := r.Read(buf)
		if c > 0 {
			n += bytes.Count(buf[:c], []byte{'\n'})
			last = buf[c-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		n++
	}
	return n, nil
}
