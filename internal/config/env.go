package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "ASSETPATCH_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// envSetters maps environment variables to the setting they override.
var envSetters = map[string]func(c *Config, v string) error{
	"LOG_LEVEL":          func(c *Config, v string) error { c.Log.Level = v; return nil },
	"LOG_FILE":           func(c *Config, v string) error { c.Log.File = v; return nil },
	"LOG_JSON":           boolSetter(func(c *Config) *bool { return &c.Log.JSON }),
	"BACKUP_SUFFIX":      func(c *Config, v string) error { c.Backup.Suffix = v; return nil },
	"BACKUP_ENABLED":     boolSetter(func(c *Config) *bool { return &c.Backup.Enabled }),
	"RESOLVER_META_ROOT": func(c *Config, v string) error { c.Resolver.MetaRoot = v; return nil },
	"RESOLVER_MANIFEST":  func(c *Config, v string) error { c.Resolver.Manifest = v; return nil },
	"INTERP_STRICT_MARKS": boolSetter(func(c *Config) *bool {
		return &c.Interp.StrictMarks
	}),
	"OUTPUT_COLOR":   boolSetter(func(c *Config) *bool { return &c.Output.Color }),
	"OUTPUT_DIFF":    boolSetter(func(c *Config) *bool { return &c.Output.Diff }),
	"OUTPUT_STYLE":   func(c *Config, v string) error { c.Output.Style = v; return nil },
	"WATCH_DEBOUNCE": func(c *Config, v string) error { c.Watch.Debounce = v; return nil },
}

// ApplyEnv overrides settings from ASSETPATCH_* variables. A nil lookup
// uses os.LookupEnv. Empty values count as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, set := range envSetters {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
	}
	return nil
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// parseBool accepts the spellings people use in shells.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
