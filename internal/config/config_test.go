package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Property: round-tripping a saved configuration through Load SHALL produce
// an equivalent configuration.
func TestConfigurationRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := generateRandomConfig(t)

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "rnr.yaml")

		manager := NewManager(configPath)
		require.NoError(t, manager.Save(cfg))

		loaded, err := NewManager(configPath).Load()
		require.NoError(t, err)

		assert.Equal(t, cfg.Defaults, loaded.Defaults)
		assert.Equal(t, cfg.Ignore, loaded.Ignore)
		assert.Equal(t, cfg.Editor, loaded.Editor)
		assert.Equal(t, cfg.WalkRatePerSecond, loaded.WalkRatePerSecond)
		assert.Equal(t, cfg.UndoRemoveEmptyParents, loaded.UndoRemoveEmptyParents)
	})
}

func TestDefaultConfiguration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nonexistent.yaml")

	manager := NewManager(configPath)
	cfg, err := manager.Load()

	require.NoError(t, err)
	assert.False(t, cfg.Defaults.Backup)
	assert.Equal(t, "auto", cfg.Defaults.Color)
	assert.Equal(t, []string{".git", "node_modules"}, cfg.Ignore)
	assert.False(t, cfg.UndoRemoveEmptyParents)
}

func TestConfigurationPersistence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "rnr.yaml")

	cfg := &Config{
		Defaults: Defaults{Backup: true, Recursive: true, Color: "never"},
		Ignore:   []string{".git", "dist"},
		Editor:   "nvim",
	}

	manager := NewManager(configPath)
	require.NoError(t, manager.Save(cfg))

	_, err := os.Stat(configPath)
	require.NoError(t, err)

	loaded, err := manager.Load()
	require.NoError(t, err)
	assert.True(t, loaded.Defaults.Backup)
	assert.Equal(t, "nvim", loaded.Editor)
	assert.Equal(t, []string{".git", "dist"}, loaded.Ignore)
}

// TestManager_WatchReloadsOnFileChange exercises the hot-reload path a
// long-running `rnr editor` session relies on (SPEC_FULL.md §4.7): a
// config file edited on disk after Load/Watch must reach the onChange
// callback without restarting the process.
func TestManager_WatchReloadsOnFileChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "rnr.yaml")

	manager := NewManager(configPath)
	require.NoError(t, manager.Save(&Config{Editor: "vi"}))

	_, err := manager.Load()
	require.NoError(t, err)

	var mu sync.Mutex
	var reloaded *Config
	var reloadErr error
	manager.Watch(func(cfg *Config) {
		mu.Lock()
		reloaded = cfg
		mu.Unlock()
	}, func(err error) {
		mu.Lock()
		reloadErr = err
		mu.Unlock()
	})

	require.NoError(t, manager.Save(&Config{Editor: "nvim"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reloaded != nil && reloaded.Editor == "nvim"
	}, 2*time.Second, 10*time.Millisecond, "expected Watch's onChange to observe the rewritten config")

	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, reloadErr)
}

func TestDefaultPathHonorsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg-home")
	assert.Equal(t, filepath.Join("/xdg-home", "rnr", "config.yaml"), DefaultPath())
}

func generateRandomConfig(t *rapid.T) *Config {
	color := rapid.SampledFrom([]string{"always", "auto", "never"}).Draw(t, "color")
	ignoreCount := rapid.IntRange(0, 4).Draw(t, "ignoreCount")
	ignore := make([]string, ignoreCount)
	for i := range ignore {
		ignore[i] = rapid.StringMatching(`[a-z_\-]{1,12}`).Draw(t, "ignorePattern")
	}

	return &Config{
		Defaults: Defaults{
			Backup:      rapid.Bool().Draw(t, "backup"),
			Hidden:      rapid.Bool().Draw(t, "hidden"),
			IncludeDirs: rapid.Bool().Draw(t, "includeDirs"),
			Recursive:   rapid.Bool().Draw(t, "recursive"),
			Color:       color,
		},
		Ignore:                 ignore,
		Editor:                 rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "editor"),
		DumpDir:                ".",
		WalkRatePerSecond:      rapid.IntRange(0, 1000).Draw(t, "walkRate"),
		UndoRemoveEmptyParents: rapid.Bool().Draw(t, "undoRemoveEmptyParents"),
	}
}
