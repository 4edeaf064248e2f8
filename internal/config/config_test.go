// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TERMFOLIO_HOME", dir)
	return dir
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(3)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()

		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}

	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() properly initializes
// the config on first access.
func TestConfig_GlobalInitialization(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()

	cfg := Global()
	require.NotNil(t, cfg)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, "visitor@portfolio:~$", cfg.Terminal.Prompt)

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)
	assert.Equal(t, "custom-version", Global().Version)
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Millisecond, cfg.Terminal.BannerDelay())
	assert.Equal(t, 5*time.Millisecond, cfg.Terminal.TypingDelay())
	assert.Equal(t, 100*time.Millisecond, cfg.Terminal.NavigationDelay())
	assert.Equal(t, 30*time.Minute, cfg.Server.IdleTimeout())
	assert.Equal(t, filepath.Join(dir, "prefs.db"), cfg.Storage.Path)
	assert.True(t, cfg.Terminal.OpenBrowser)
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"valid default config", func(c *Config) {}, ""},
		{"memory backend needs no path", func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Path = "" }, ""},
		{"instant typing", func(c *Config) { c.Terminal.TypingDelayMs = 0 }, ""},
		{"negative typing delay", func(c *Config) { c.Terminal.TypingDelayMs = -1 }, "terminal.typing_delay_ms"},
		{"slow banner", func(c *Config) { c.Terminal.BannerDelayMs = 5000 }, "terminal.banner_delay_ms"},
		{"navigation delay too long", func(c *Config) { c.Terminal.NavigationDelayMs = 60000 }, "terminal.navigation_delay_ms"},
		{"narrow wrap", func(c *Config) { c.Terminal.WordWrap = 5 }, "terminal.word_wrap"},
		{"missing content file", func(c *Config) { c.Content.Path = "/does/not/exist.toml" }, "content.path"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"bad address", func(c *Config) { c.Server.Addr = "8080" }, "server.addr"},
		{"negative max sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "server.max_sessions"},
		{"short idle timeout", func(c *Config) { c.Server.IdleTimeoutSecs = 1 }, "server.idle_timeout_secs"},
		{"zero rate", func(c *Config) { c.Server.RatePerSecond = 0 }, "server.rate_per_second"},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }, "server.rate_burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "want ValidateErrors, got %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFromPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[terminal]
typing_delay_ms = 0
prompt = "guest@folio:~$"

[server]
addr = "127.0.0.1:9000"
allowed_origins = ["https://folio.example"]
`), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Terminal.TypingDelayMs)
	assert.Equal(t, "guest@folio:~$", cfg.Terminal.Prompt)
	assert.Equal(t, 30, cfg.Terminal.BannerDelayMs, "unset fields keep defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://folio.example"}, cfg.Server.AllowedOrigins)

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr, "Load reads the default path")
}

func TestLoadFromPath_Errors(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", "[terminal\n"},
		{"unknown key", "[terminal]\ncolour = \"red\"\n"},
		{"invalid value", "[storage]\nbackend = \"floppy\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadFromPath(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadFromPath(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TERMFOLIO_ADDR", "0.0.0.0:80")
	t.Setenv("TERMFOLIO_STORAGE", "MEMORY")
	t.Setenv("TERMFOLIO_DB_PATH", "/tmp/x.db")
	t.Setenv("TERMFOLIO_TYPING_DELAY_MS", "12")
	t.Setenv("TERMFOLIO_LOG_FILE", "/tmp/t.log")
	t.Setenv("TERMFOLIO_NO_BROWSER", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "0.0.0.0:80", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.Path)
	assert.Equal(t, 12, cfg.Terminal.TypingDelayMs)
	assert.Equal(t, "/tmp/t.log", cfg.Log.File)
	assert.False(t, cfg.Terminal.OpenBrowser)

	t.Setenv("TERMFOLIO_TYPING_DELAY_MS", "fast")
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 12, cfg.Terminal.TypingDelayMs, "unparseable values are ignored")
}

func TestSaveTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default()
	cfg.Terminal.TypingDelayMs = 9
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# termfolio configuration file")

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Terminal.TypingDelayMs)
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	isolate(t)
	cfg := Default()

	val, err := cfg.Get("terminal.typing_delay_ms")
	require.NoError(t, err)
	assert.Equal(t, 5, val)

	require.NoError(t, cfg.Set("terminal.typing_delay_ms", "7"))
	assert.Equal(t, 7, cfg.Terminal.TypingDelayMs)

	require.NoError(t, cfg.Set("terminal.open_browser", "no"))
	assert.False(t, cfg.Terminal.OpenBrowser)

	require.NoError(t, cfg.Set("server.rate_per_second", "2.5"))
	assert.Equal(t, 2.5, cfg.Server.RatePerSecond)

	require.NoError(t, cfg.Set("server.allowed_origins", "https://a.example, https://b.example"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)

	assert.Error(t, cfg.Set("terminal.word_wrap", "wide"))
	_, err = cfg.Get("invalid.key")
	assert.Error(t, err)
	_, err = cfg.Get("server.addr.port")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)

	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	isolate(t)
	original := Default()
	original.Server.AllowedOrigins = []string{"https://a.example"}

	clone := original.Clone()
	clone.Version = "cloned"
	clone.Server.AllowedOrigins[0] = "https://evil.example"

	assert.Equal(t, CurrentVersion, original.Version)
	assert.Equal(t, "https://a.example", original.Server.AllowedOrigins[0])
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(c *Config) { changes <- c }, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.Terminal.TypingDelayMs = 42
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-changes:
		assert.Equal(t, 42, got.Terminal.TypingDelayMs)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestWatch_IgnoresInvalidEdits(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(c *Config) { changes <- c }, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[storage]\nbackend = \"floppy\"\n"), 0644))

	select {
	case <-changes:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(DefaultWatchDebounce + 300*time.Millisecond):
	}
	require.NoError(t, w.Close())
}
