// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/termfolio/internal/util"
)

// CurrentVersion is the config file format version.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete termfolio configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Terminal behavior shared by every front end
	Terminal TerminalConfig `toml:"terminal" json:"terminal"`

	// Portfolio content
	Content ContentConfig `toml:"content" json:"content"`

	// Preference storage
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Web server
	Server ServerConfig `toml:"server" json:"server"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`
}

// TerminalConfig contains the display and interaction settings.
type TerminalConfig struct {
	// Prompt is shown before every input line
	Prompt string `toml:"prompt" json:"prompt"`
	// BannerDelayMs is the per-character typing delay of the welcome banner
	BannerDelayMs int `toml:"banner_delay_ms" json:"banner_delay_ms"`
	// TypingDelayMs is the per-character typing delay of command output (0 = instant)
	TypingDelayMs int `toml:"typing_delay_ms" json:"typing_delay_ms"`
	// NavigationDelayMs is how long navigation waits for its text to render
	NavigationDelayMs int `toml:"navigation_delay_ms" json:"navigation_delay_ms"`
	// WordWrap is the Markdown wrap width for terminal output
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// OpenBrowser lets terminal front ends open navigation URLs
	OpenBrowser bool `toml:"open_browser" json:"open_browser"`
}

// ContentConfig selects the portfolio content.
type ContentConfig struct {
	// Path to a portfolio TOML file; empty uses the built-in content
	Path string `toml:"path" json:"path"`
}

// StorageConfig contains preference store settings.
type StorageConfig struct {
	// Backend is "sqlite" or "memory"
	Backend string `toml:"backend" json:"backend"`
	// Path is the SQLite database file
	Path string `toml:"path" json:"path"`
}

// ServerConfig contains web server settings.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `toml:"addr" json:"addr"`
	// MaxSessions caps concurrent browser sessions
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
	// IdleTimeoutSecs closes sessions without input for this long
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
	// RatePerSecond limits messages per connection
	RatePerSecond float64 `toml:"rate_per_second" json:"rate_per_second"`
	// RateBurst is the limiter burst size
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
	// AllowedOrigins lists extra WebSocket origins; same-host is always allowed
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// SecureCookies sets the Secure flag on the visitor cookie
	SecureCookies bool `toml:"secure_cookies" json:"secure_cookies"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// File receives logs from the terminal UI, which owns the screen
	File string `toml:"file" json:"file"`
	// Requests enables HTTP request logging
	Requests bool `toml:"requests" json:"requests"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".termfolio"
	}
	return &Config{
		Version: CurrentVersion,
		Terminal: TerminalConfig{
			Prompt:            "visitor@portfolio:~$",
			BannerDelayMs:     30,
			TypingDelayMs:     5,
			NavigationDelayMs: 100,
			WordWrap:          80,
			OpenBrowser:       true,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    filepath.Join(dir, "prefs.db"),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxSessions:     256,
			IdleTimeoutSecs: 1800,
			RatePerSecond:   20,
			RateBurst:       40,
		},
		Log: LogConfig{
			File:     filepath.Join(dir, "termfolio.log"),
			Requests: true,
		},
	}
}

// BannerDelay returns the banner typing delay.
func (t TerminalConfig) BannerDelay() time.Duration {
	return time.Duration(t.BannerDelayMs) * time.Millisecond
}

// TypingDelay returns the output typing delay.
func (t TerminalConfig) TypingDelay() time.Duration {
	return time.Duration(t.TypingDelayMs) * time.Millisecond
}

// NavigationDelay returns the navigation delay.
func (t TerminalConfig) NavigationDelay() time.Duration {
	return time.Duration(t.NavigationDelayMs) * time.Millisecond
}

// IdleTimeout returns the session idle timeout.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the termfolio configuration directory path.
// TERMFOLIO_HOME overrides the default ~/.termfolio.
func ConfigDir() (string, error) {
	if dir := os.Getenv("TERMFOLIO_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".termfolio"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when it does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		return finish(cfg)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Unset fields keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# termfolio configuration file")
	fmt.Fprintln(&buf, "# Generated by termfolio - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Terminal.BannerDelayMs < 0 || c.Terminal.BannerDelayMs > 1000 {
		errs = append(errs, ValidationError{"terminal.banner_delay_ms", "must be between 0 and 1000"})
	}
	if c.Terminal.TypingDelayMs < 0 || c.Terminal.TypingDelayMs > 1000 {
		errs = append(errs, ValidationError{"terminal.typing_delay_ms", "must be between 0 and 1000"})
	}
	if c.Terminal.NavigationDelayMs < 0 || c.Terminal.NavigationDelayMs > 10000 {
		errs = append(errs, ValidationError{"terminal.navigation_delay_ms", "must be between 0 and 10000"})
	}
	if c.Terminal.WordWrap < 20 || c.Terminal.WordWrap > 400 {
		errs = append(errs, ValidationError{"terminal.word_wrap", "must be between 20 and 400"})
	}

	if c.Content.Path != "" {
		if _, err := os.Stat(c.Content.Path); err != nil {
			errs = append(errs, ValidationError{"content.path", fmt.Sprintf("cannot read %q: %v", c.Content.Path, err)})
		}
	}

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, ValidationError{"storage.path", "required for the sqlite backend"})
		}
	default:
		errs = append(errs, ValidationError{"storage.backend", fmt.Sprintf("must be sqlite or memory, got %q", c.Storage.Backend)})
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, ValidationError{"server.addr", fmt.Sprintf("invalid listen address %q", c.Server.Addr)})
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, ValidationError{"server.max_sessions", "must not be negative"})
	}
	if c.Server.IdleTimeoutSecs < 10 {
		errs = append(errs, ValidationError{"server.idle_timeout_secs", "must be at least 10"})
	}
	if c.Server.RatePerSecond <= 0 {
		errs = append(errs, ValidationError{"server.rate_per_second", "must be positive"})
	}
	if c.Server.RateBurst < 1 {
		errs = append(errs, ValidationError{"server.rate_burst", "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in zero values that have no meaningful zero.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Terminal.Prompt == "" {
		c.Terminal.Prompt = defaults.Terminal.Prompt
	}
	if c.Terminal.WordWrap == 0 {
		c.Terminal.WordWrap = defaults.Terminal.WordWrap
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		c.Storage.Path = defaults.Storage.Path
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = defaults.Server.IdleTimeoutSecs
	}
	if c.Server.RatePerSecond == 0 {
		c.Server.RatePerSecond = defaults.Server.RatePerSecond
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = defaults.Server.RateBurst
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TERMFOLIO_ADDR: overrides server.addr
//   - TERMFOLIO_CONTENT: overrides content.path
//   - TERMFOLIO_STORAGE: overrides storage.backend
//   - TERMFOLIO_DB_PATH: overrides storage.path
//   - TERMFOLIO_TYPING_DELAY_MS: overrides terminal.typing_delay_ms
//   - TERMFOLIO_LOG_FILE: overrides log.file
//   - TERMFOLIO_NO_BROWSER: set to "1" or "true" to disable terminal.open_browser
func (c *Config) ApplyEnvOverrides() {
	if addr := os.Getenv("TERMFOLIO_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("TERMFOLIO_CONTENT"); path != "" {
		c.Content.Path = path
	}
	if backend := os.Getenv("TERMFOLIO_STORAGE"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if path := os.Getenv("TERMFOLIO_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if delay := os.Getenv("TERMFOLIO_TYPING_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil {
			c.Terminal.TypingDelayMs = ms
		}
	}
	if file := os.Getenv("TERMFOLIO_LOG_FILE"); file != "" {
		c.Log.File = file
	}
	if noBrowser := os.Getenv("TERMFOLIO_NO_BROWSER"); noBrowser != "" {
		c.Terminal.OpenBrowser = !(noBrowser == "1" || strings.ToLower(noBrowser) == "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.addr").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookupField(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookupField(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookupField(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent ("typing_delay_ms" -> "TypingDelayMs").
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"terminal.prompt",
		"terminal.banner_delay_ms",
		"terminal.typing_delay_ms",
		"terminal.navigation_delay_ms",
		"terminal.word_wrap",
		"terminal.open_browser",
		"content.path",
		"storage.backend",
		"storage.path",
		"server.addr",
		"server.max_sessions",
		"server.idle_timeout_secs",
		"server.rate_per_second",
		"server.rate_burst",
		"server.allowed_origins",
		"server.secure_cookies",
		"log.file",
		"log.requests",
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.AllowedOrigins != nil {
		clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	}
	return &clone
}

// String returns a JSON representation of the config for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
