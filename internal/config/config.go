// Package config loads and watches rnr's persistent configuration: default
// flag values, ignore patterns, editor preference, and color preference.
package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	apperrors "github.com/xuanyiying/rnr/pkg/errors"
)

// Defaults holds the default value of every top-level flag shared across
// subcommands, so a user who always wants --recursive --hidden doesn't have
// to type them every invocation. Color is loaded and saved, but the CLI
// does not read it: output color follows the --color flag alone.
type Defaults struct {
	Backup      bool   `yaml:"backup" mapstructure:"backup"`
	Hidden      bool   `yaml:"hidden" mapstructure:"hidden"`
	IncludeDirs bool   `yaml:"includeDirs" mapstructure:"includeDirs"`
	Recursive   bool   `yaml:"recursive" mapstructure:"recursive"`
	Color       string `yaml:"color" mapstructure:"color"`
}

// Config is the full set of persisted rnr settings.
type Config struct {
	Defaults          Defaults `yaml:"defaults" mapstructure:"defaults"`
	Ignore            []string `yaml:"ignore" mapstructure:"ignore"`
	Editor            string   `yaml:"editor" mapstructure:"editor"`
	DumpDir           string   `yaml:"dumpDir" mapstructure:"dumpDir"`
	WalkRatePerSecond int      `yaml:"walkRatePerSecond" mapstructure:"walkRatePerSecond"`
	// UndoRemoveEmptyParents is loaded and saved but not read by any
	// command: `from-file --undo` never removes directories.
	UndoRemoveEmptyParents bool `yaml:"undoRemoveEmptyParents" mapstructure:"undoRemoveEmptyParents"`
}

// Manager loads rnr's config file through viper and optionally watches it
// for edits made while an `rnr editor` session is open.
type Manager struct {
	v    *viper.Viper
	path string
}

// DefaultPath returns the conventional config file location, honoring
// XDG_CONFIG_HOME and falling back to ~/.config/rnr/config.yaml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rnr", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "rnr-config.yaml"
	}
	return filepath.Join(home, ".config", "rnr", "config.yaml")
}

// NewManager creates a configuration manager rooted at path. An empty path
// resolves to DefaultPath().
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	return &Manager{v: viper.New(), path: path}
}

// Load reads the config file if present, merging it over built-in defaults.
// A missing file is not an error: built-in defaults are returned as-is.
func (m *Manager) Load() (*Config, error) {
	m.setDefaults()

	if _, err := os.Stat(m.path); err == nil {
		m.v.SetConfigFile(m.path)
		m.v.SetConfigType("yaml")
		if err := m.v.ReadInConfig(); err != nil {
			return nil, apperrors.WrapKind(apperrors.KindInput, err, "read config %s", m.path)
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.WrapKind(apperrors.KindInput, err, "unmarshal config %s", m.path)
	}
	return &cfg, nil
}

// Save persists cfg to the manager's path, creating parent directories.
func (m *Manager) Save(cfg *Config) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.WrapKind(apperrors.KindInput, err, "create config dir %s", dir)
	}

	m.v.Set("defaults", cfg.Defaults)
	m.v.Set("ignore", cfg.Ignore)
	m.v.Set("editor", cfg.Editor)
	m.v.Set("dumpDir", cfg.DumpDir)
	m.v.Set("walkRatePerSecond", cfg.WalkRatePerSecond)
	m.v.Set("undoRemoveEmptyParents", cfg.UndoRemoveEmptyParents)

	if err := m.v.WriteConfigAs(m.path); err != nil {
		return apperrors.WrapKind(apperrors.KindInput, err, "write config %s", m.path)
	}
	return nil
}

// Watch registers onChange to be called whenever the config file is edited
// on disk, so a long-running `rnr editor` session can pick up a changed
// editor preference or dump directory without restarting; ignore patterns
// edited this way do not affect an already-collected list. onChange
// receives the freshly reloaded Config; unmarshal failures are passed to
// onError instead.
func (m *Manager) Watch(onChange func(*Config), onError func(error)) {
	m.v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := m.v.Unmarshal(&cfg); err != nil {
			if onError != nil {
				onError(apperrors.WrapKind(apperrors.KindInput, err, "reload config %s", m.path))
			}
			return
		}
		if onChange != nil {
			onChange(&cfg)
		}
	})
	m.v.WatchConfig()
}

func (m *Manager) setDefaults() {
	m.v.SetDefault("defaults.backup", false)
	m.v.SetDefault("defaults.hidden", false)
	m.v.SetDefault("defaults.includeDirs", false)
	m.v.SetDefault("defaults.recursive", false)
	m.v.SetDefault("defaults.color", "auto")

	m.v.SetDefault("ignore", []string{".git", "node_modules"})
	m.v.SetDefault("editor", "")
	m.v.SetDefault("dumpDir", ".")
	m.v.SetDefault("walkRatePerSecond", 0)
	m.v.SetDefault("undoRemoveEmptyParents", false)
}
