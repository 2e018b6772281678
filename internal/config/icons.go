package config

// defaultThumbnails lists file types that have an icon asset under their own
// name in the default Discord application.
var defaultThumbnails = []string{
	"c", "cr", "hs", "json", "nim", "ruby", "cpp", "go", "javascript", "markdown",
	"typescript", "python", "vim", "rust", "css", "html", "vue", "paco", "tex", "sh",
	"elixir", "cs", "f", "jsx", "tsx", "sql", "plsql", "ocaml",
}

// defaultRemap maps file types whose tag differs from the asset name.
var defaultRemap = map[string]string{
	"python":          "py",
	"markdown":        "md",
	"ruby":            "rb",
	"rust":            "rs",
	"typescript":      "ts",
	"javascript":      "js",
	"snippets":        "vim",
	"typescriptreact": "ts",
	"javascriptreact": "js",
	"ocaml":           "ml",
	"fortran":         "f",
}

// Icons returns the file type → icon remap (built-ins overlaid with
// custom_icons) and the set of file types known to have an icon. Custom icon
// values are added to the known set.
func (c *Config) Icons() (remap map[string]string, known map[string]bool) {
	remap = make(map[string]string, len(defaultRemap)+len(c.CustomIcons))
	for k, v := range defaultRemap {
		remap[k] = v
	}
	for k, v := range c.CustomIcons {
		remap[k] = v
	}

	known = make(map[string]bool, len(defaultThumbnails)+len(c.CustomIcons))
	for _, t := range defaultThumbnails {
		known[t] = true
	}
	for _, v := range c.CustomIcons {
		known[v] = true
	}
	return remap, known
}
