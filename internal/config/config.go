package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultClientID is the Discord application that ships the default icons.
const DefaultClientID = "439476230543245312"

// Config holds all configurable glint settings. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	ClientID        string `json:"client_id" toml:"client_id" yaml:"client_id"`
	SmallImage      string `json:"small_image" toml:"small_image" yaml:"small_image"`
	SmallText       string `json:"small_text" toml:"small_text" yaml:"small_text"`
	TimestampOffset int64  `json:"timestamp_offset" toml:"timestamp_offset" yaml:"timestamp_offset"` // seconds

	IgnoredFileTypes       []string `json:"ignored_file_types" toml:"ignored_file_types" yaml:"ignored_file_types"`
	IgnoredFileTypesName   *string  `json:"ignored_file_types_name,omitempty" toml:"ignored_file_types_name" yaml:"ignored_file_types_name"`
	IgnoredDirectories     []string `json:"ignored_directories" toml:"ignored_directories" yaml:"ignored_directories"`
	IgnoredDirectoriesName *string  `json:"ignored_directories_name,omitempty" toml:"ignored_directories_name" yaml:"ignored_directories_name"`

	Templates   Templates         `json:"templates" toml:"templates" yaml:"templates"`
	CustomIcons map[string]string `json:"custom_icons" toml:"custom_icons" yaml:"custom_icons"`

	FileExplorers     []string `json:"file_explorers" toml:"file_explorers" yaml:"file_explorers"`
	FileExplorerNames []string `json:"file_explorer_names" toml:"file_explorer_names" yaml:"file_explorer_names"`

	LogLevel string `json:"log_level" toml:"log_level" yaml:"log_level"` // "debug" | "info" | "warn" | "error"
	LogFile  string `json:"log_file" toml:"log_file" yaml:"log_file"`
}

// Templates holds the per-context text overrides. A nil field means "use the
// built-in default"; an empty string is a deliberate override.
type Templates struct {
	EditingDetails *string `json:"editing_details,omitempty" toml:"editing_details" yaml:"editing_details"`
	EditingState   *string `json:"editing_state,omitempty" toml:"editing_state" yaml:"editing_state"`
	EditingText    *string `json:"editing_text,omitempty" toml:"editing_text" yaml:"editing_text"`

	IdleImage *string `json:"idle_image,omitempty" toml:"idle_image" yaml:"idle_image"`
	IdleText  *string `json:"idle_text,omitempty" toml:"idle_text" yaml:"idle_text"`
	IdleState *string `json:"idle_state,omitempty" toml:"idle_state" yaml:"idle_state"`

	TerminalImage   *string `json:"terminal_image,omitempty" toml:"terminal_image" yaml:"terminal_image"`
	TerminalText    *string `json:"terminal_text,omitempty" toml:"terminal_text" yaml:"terminal_text"`
	TerminalDetails *string `json:"terminal_details,omitempty" toml:"terminal_details" yaml:"terminal_details"`
	TerminalState   *string `json:"terminal_state,omitempty" toml:"terminal_state" yaml:"terminal_state"`

	FileExplorerImage   *string `json:"file_explorer_image,omitempty" toml:"file_explorer_image" yaml:"file_explorer_image"`
	FileExplorerText    *string `json:"file_explorer_text,omitempty" toml:"file_explorer_text" yaml:"file_explorer_text"`
	FileExplorerDetails *string `json:"file_explorer_details,omitempty" toml:"file_explorer_details" yaml:"file_explorer_details"`
	FileExplorerState   *string `json:"file_explorer_state,omitempty" toml:"file_explorer_state" yaml:"file_explorer_state"`

	UnknownImage *string `json:"unknown_image,omitempty" toml:"unknown_image" yaml:"unknown_image"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		ClientID:           DefaultClientID,
		SmallImage:         "vim",
		SmallText:          "Vim",
		IgnoredFileTypes:   []string{},
		IgnoredDirectories: []string{},
		CustomIcons:        map[string]string{},
		FileExplorers:      []string{"nerdtree", "vimfiler", "netrw"},
		FileExplorerNames:  []string{"vimfiler:default", "NERD_tree_", "NetrwTreeListing"},
		LogLevel:           "info",
	}
}

// Dir returns the glint config directory.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "glint"), nil
}

// GlobalPath returns the preferred global config file path.
func GlobalPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// globalNames lists the global config files in lookup order.
var globalNames = []string{"config.json", "config.toml", "config.yaml", "config.yml"}

// GlobalExists reports whether any global config file is present.
func GlobalExists() bool {
	dir, err := Dir()
	if err != nil {
		return false
	}
	for _, name := range globalNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// LoadGlobal reads the first of config.json, config.toml, config.yaml found
// in the glint config directory. Returns defaults if none is present.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	for _, name := range globalNames {
		cfg, err := loadFile(filepath.Join(dir, name), false)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			return cfg, nil
		}
	}
	d := Defaults()
	return &d, nil
}

// LoadProject reads .glintconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".glintconfig", false)
}

// LoadFile reads a single config file; the format follows the extension and
// defaults to JSON.
func LoadFile(path string) (*Config, error) {
	return loadFile(path, true)
}

// loadFile reads and parses a config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Save writes cfg as indented JSON to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	apply(&result, global)
	apply(&result, project)
	return result
}

func apply(dst *Config, src *Config) {
	if src == nil {
		return
	}
	if src.ClientID != "" {
		dst.ClientID = src.ClientID
	}
	if src.SmallImage != "" {
		dst.SmallImage = src.SmallImage
	}
	if src.SmallText != "" {
		dst.SmallText = src.SmallText
	}
	if src.TimestampOffset != 0 {
		dst.TimestampOffset = src.TimestampOffset
	}
	if len(src.IgnoredFileTypes) > 0 {
		dst.IgnoredFileTypes = src.IgnoredFileTypes
	}
	if src.IgnoredFileTypesName != nil {
		dst.IgnoredFileTypesName = src.IgnoredFileTypesName
	}
	if len(src.IgnoredDirectories) > 0 {
		dst.IgnoredDirectories = src.IgnoredDirectories
	}
	if src.IgnoredDirectoriesName != nil {
		dst.IgnoredDirectoriesName = src.IgnoredDirectoriesName
	}
	if len(src.FileExplorers) > 0 {
		dst.FileExplorers = src.FileExplorers
	}
	if len(src.FileExplorerNames) > 0 {
		dst.FileExplorerNames = src.FileExplorerNames
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}

	// Icons merge key-wise so a project file can add one remap without
	// repeating the global table.
	if len(src.CustomIcons) > 0 {
		icons := make(map[string]string, len(dst.CustomIcons)+len(src.CustomIcons))
		for k, v := range dst.CustomIcons {
			icons[k] = v
		}
		for k, v := range src.CustomIcons {
			icons[k] = v
		}
		dst.CustomIcons = icons
	}

	dst.Templates.merge(src.Templates)
}

func (t *Templates) merge(src Templates) {
	pick := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	pick(&t.EditingDetails, src.EditingDetails)
	pick(&t.EditingState, src.EditingState)
	pick(&t.EditingText, src.EditingText)
	pick(&t.IdleImage, src.IdleImage)
	pick(&t.IdleText, src.IdleText)
	pick(&t.IdleState, src.IdleState)
	pick(&t.TerminalImage, src.TerminalImage)
	pick(&t.TerminalText, src.TerminalText)
	pick(&t.TerminalDetails, src.TerminalDetails)
	pick(&t.TerminalState, src.TerminalState)
	pick(&t.FileExplorerImage, src.FileExplorerImage)
	pick(&t.FileExplorerText, src.FileExplorerText)
	pick(&t.FileExplorerDetails, src.FileExplorerDetails)
	pick(&t.FileExplorerState, src.FileExplorerState)
	pick(&t.UnknownImage, src.UnknownImage)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
