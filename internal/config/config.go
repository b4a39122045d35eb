// Package config loads assetpatch settings.
//
// Settings are layered: built-in defaults, then a TOML file, then
// ASSETPATCH_* environment variables. Command-line flags are applied by
// the caller on top of the result.
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[backup]
//	suffix = ".orig"
//
//	[resolver]
//	meta_root = "Assets"
//	manifest = "assets.json"
//
//	[watch]
//	debounce = "500ms"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/vfs"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "assetpatch.toml"

// Config holds all settings.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Backup   BackupConfig   `toml:"backup"`
	Resolver ResolverConfig `toml:"resolver"`
	Interp   InterpConfig   `toml:"interp"`
	Output   OutputConfig   `toml:"output"`
	Watch    WatchConfig    `toml:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives log output instead of stderr when set.
	File string `toml:"file"`
	JSON bool   `toml:"json"`
}

// BackupConfig configures the copy made before a target is overwritten.
type BackupConfig struct {
	Suffix  string `toml:"suffix"`
	Enabled bool   `toml:"enabled"`
}

// ResolverConfig configures target lookup.
type ResolverConfig struct {
	// MetaRoot is scanned for .meta files mapping GUIDs to paths.
	MetaRoot string `toml:"meta_root"`
	// Manifest is a JSON file of explicit id to path entries.
	Manifest string `toml:"manifest"`
}

// InterpConfig configures the interpreter.
type InterpConfig struct {
	StrictMarks bool `toml:"strict_marks"`
}

// OutputConfig configures terminal output.
type OutputConfig struct {
	Color bool   `toml:"color"`
	Diff  bool   `toml:"diff"`
	Style string `toml:"style"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `toml:"debounce"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Backup: BackupConfig{Suffix: ".bak", Enabled: true},
		Output: OutputConfig{Color: true, Style: "monokai"},
		Watch:  WatchConfig{Debounce: "200ms"},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error.
func Load(fsys vfs.VFS, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := cfg.parse(path, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		msg := err.Error()
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			msg = fmt.Sprintf("line %d, column %d: %s", row, col, derr.String())
		}
		return &ParseError{Path: source, Message: msg, Err: err}
	}
	return nil
}

// Validate resets invalid values to their defaults and returns one
// error per reset value.
func (c *Config) Validate() []error {
	def := Default()
	var errs []error

	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
		c.Log.Level = def.Log.Level
	}
	if strings.TrimSpace(c.Backup.Suffix) == "" || strings.ContainsAny(c.Backup.Suffix, `/\`) {
		errs = append(errs, fmt.Errorf("backup.suffix: invalid suffix %q", c.Backup.Suffix))
		c.Backup.Suffix = def.Backup.Suffix
	}
	if c.Output.Style == "" {
		c.Output.Style = def.Output.Style
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: invalid duration %q", c.Watch.Debounce))
		c.Watch.Debounce = def.Watch.Debounce
	}

	return errs
}

// DebounceDelay returns the parsed watch debounce, or the default when
// the setting does not parse.
func (c *Config) DebounceDelay() time.Duration {
	if d, err := time.ParseDuration(c.Watch.Debounce); err == nil && d >= 0 {
		return d
	}
	d, _ := time.ParseDuration(Default().Watch.Debounce)
	return d
}

// LoggerConfig returns the logger settings. The caller sets Output.
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(c.Log.Level)
	cfg.JSON = c.Log.JSON
	return cfg
}
