// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/diycursor/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete diycursor configuration.
type Config struct {
	// Local (Ollama) daemon
	Local LocalConfig `toml:"local" json:"local"`

	// Hosted providers
	Anthropic AnthropicConfig `toml:"anthropic" json:"anthropic"`
	OpenAI    OpenAIConfig    `toml:"openai" json:"openai"`

	Workspace WorkspaceConfig `toml:"workspace" json:"workspace"`
	Editor    EditorConfig    `toml:"editor" json:"editor"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
}

// LocalConfig configures the local Ollama daemon.
type LocalConfig struct {
	OllamaURL       string `toml:"ollama_url" json:"ollama_url"`
	TimeoutSecs     int    `toml:"timeout_secs" json:"timeout_secs"`
	PullTimeoutSecs int    `toml:"pull_timeout_secs" json:"pull_timeout_secs"`
}

// AnthropicConfig configures the Anthropic messages API.
type AnthropicConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	Version     string `toml:"version" json:"version"`
	MaxTokens   int    `toml:"max_tokens" json:"max_tokens"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// OpenAIConfig configures the OpenAI chat completions API.
type OpenAIConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	MaxTokens   int    `toml:"max_tokens" json:"max_tokens"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// WorkspaceConfig locates projects and local state. Paths may start with
// "~/".
type WorkspaceConfig struct {
	ProjectsDir     string `toml:"projects_dir" json:"projects_dir"`
	StateDB         string `toml:"state_db" json:"state_db"`
	WatchDebounceMs int    `toml:"watch_debounce_ms" json:"watch_debounce_ms"`
}

// EditorConfig configures the file editor.
type EditorConfig struct {
	AutosaveDelayMs int `toml:"autosave_delay_ms" json:"autosave_delay_ms"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// Timeout returns the generation timeout.
func (c LocalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PullTimeout returns the model pull timeout.
func (c LocalConfig) PullTimeout() time.Duration {
	return time.Duration(c.PullTimeoutSecs) * time.Second
}

// Timeout returns the request timeout.
func (c AnthropicConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Timeout returns the request timeout.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// WatchDebounce returns the file watcher debounce.
func (c WorkspaceConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// AutosaveDelay returns the quiet period before an edit is written.
func (c EditorConfig) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMs) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Local: LocalConfig{
			OllamaURL:       "http://127.0.0.1:11434",
			TimeoutSecs:     300,
			PullTimeoutSecs: 3600,
		},
		Anthropic: AnthropicConfig{
			BaseURL:     "https://api.anthropic.com",
			Version:     "2023-06-01",
			MaxTokens:   4000,
			TimeoutSecs: 120,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com",
			MaxTokens:   4000,
			TimeoutSecs: 120,
		},
		Workspace: WorkspaceConfig{
			ProjectsDir:     "~/.diycursor/projects",
			StateDB:         "~/.diycursor/state.db",
			WatchDebounceMs: 200,
		},
		Editor: EditorConfig{
			AutosaveDelayMs: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "~/.diycursor/diycursor.log",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory, ~/.diycursor unless
// DIYCURSOR_HOME is set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DIYCURSOR_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".diycursor"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath resolves a leading "~/" against the configuration directory's
// parent so that "~/.diycursor/x" follows DIYCURSOR_HOME.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/")

	if dir := os.Getenv("DIYCURSOR_HOME"); dir != "" {
		if rest == ".diycursor" || strings.HasPrefix(rest, ".diycursor/") {
			return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(strings.TrimPrefix(rest, ".diycursor"), "/"))), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(rest)), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads config.toml, falling back to config.json and then to the
// defaults. Environment overrides are applied last and the result is
// validated. A file that exists but cannot be decoded is reported together
// with the usable defaults.
func Load() (*Config, error) {
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg := Default()
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg := Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads a specific file; ".json" selects JSON, anything else
// TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadFromPathOrDefault is LoadFromPath, except that a missing file yields
// the defaults so that a new path can be initialized.
func LoadFromPathOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Local.OllamaURL == "" {
		c.Local.OllamaURL = d.Local.OllamaURL
	}
	if c.Local.TimeoutSecs == 0 {
		c.Local.TimeoutSecs = d.Local.TimeoutSecs
	}
	if c.Local.PullTimeoutSecs == 0 {
		c.Local.PullTimeoutSecs = d.Local.PullTimeoutSecs
	}

	if c.Anthropic.BaseURL == "" {
		c.Anthropic.BaseURL = d.Anthropic.BaseURL
	}
	if c.Anthropic.Version == "" {
		c.Anthropic.Version = d.Anthropic.Version
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = d.Anthropic.MaxTokens
	}
	if c.Anthropic.TimeoutSecs == 0 {
		c.Anthropic.TimeoutSecs = d.Anthropic.TimeoutSecs
	}

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = d.OpenAI.BaseURL
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = d.OpenAI.MaxTokens
	}
	if c.OpenAI.TimeoutSecs == 0 {
		c.OpenAI.TimeoutSecs = d.OpenAI.TimeoutSecs
	}

	if c.Workspace.ProjectsDir == "" {
		c.Workspace.ProjectsDir = d.Workspace.ProjectsDir
	}
	if c.Workspace.StateDB == "" {
		c.Workspace.StateDB = d.Workspace.StateDB
	}
	if c.Workspace.WatchDebounceMs == 0 {
		c.Workspace.WatchDebounceMs = d.Workspace.WatchDebounceMs
	}

	if c.Editor.AutosaveDelayMs == 0 {
		c.Editor.AutosaveDelayMs = d.Editor.AutosaveDelayMs
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = d.Logging.File
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML atomically writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# diycursor configuration file\n")
	buf.WriteString("# Generated by diycursor - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON atomically writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidLogLevels are the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks every setting and returns ValidateErrors listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	checkURL := func(field, raw string) {
		u, err := url.Parse(raw)
		if err != nil {
			add(field, "invalid URL: %v", err)
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			add(field, "URL must use http or https, got %q", raw)
		} else if u.Host == "" {
			add(field, "URL has no host: %q", raw)
		}
	}
	checkPositive := func(field string, v int) {
		if v <= 0 {
			add(field, "must be positive, got %d", v)
		}
	}
	checkMaxTokens := func(field string, v int) {
		if v < 1 || v > 200000 {
			add(field, "must be 1-200000, got %d", v)
		}
	}

	checkURL("local.ollama_url", c.Local.OllamaURL)
	checkPositive("local.timeout_secs", c.Local.TimeoutSecs)
	checkPositive("local.pull_timeout_secs", c.Local.PullTimeoutSecs)

	checkURL("anthropic.base_url", c.Anthropic.BaseURL)
	if strings.TrimSpace(c.Anthropic.Version) == "" {
		add("anthropic.version", "must not be empty")
	}
	checkMaxTokens("anthropic.max_tokens", c.Anthropic.MaxTokens)
	checkPositive("anthropic.timeout_secs", c.Anthropic.TimeoutSecs)

	checkURL("openai.base_url", c.OpenAI.BaseURL)
	checkMaxTokens("openai.max_tokens", c.OpenAI.MaxTokens)
	checkPositive("openai.timeout_secs", c.OpenAI.TimeoutSecs)

	if strings.TrimSpace(c.Workspace.ProjectsDir) == "" {
		add("workspace.projects_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Workspace.StateDB) == "" {
		add("workspace.state_db", "must not be empty")
	}
	if c.Workspace.WatchDebounceMs < 10 || c.Workspace.WatchDebounceMs > 10000 {
		add("workspace.watch_debounce_ms", "must be 10-10000, got %d", c.Workspace.WatchDebounceMs)
	}

	if c.Editor.AutosaveDelayMs < 50 || c.Editor.AutosaveDelayMs > 60000 {
		add("editor.autosave_delay_ms", "must be 50-60000, got %d", c.Editor.AutosaveDelayMs)
	}

	level := strings.ToLower(c.Logging.Level)
	valid := false
	for _, l := range ValidLogLevels {
		if l == level {
			valid = true
		}
	}
	if !valid {
		add("logging.level", "invalid level '%s', must be one of: %s", c.Logging.Level, strings.Join(ValidLogLevels, ", "))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variables on top of the loaded
// settings:
//   - DIYCURSOR_OLLAMA_URL: local.ollama_url
//   - DIYCURSOR_ANTHROPIC_URL: anthropic.base_url
//   - DIYCURSOR_OPENAI_URL: openai.base_url
//   - DIYCURSOR_PROJECTS_DIR: workspace.projects_dir
//   - DIYCURSOR_LOG_LEVEL: logging.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DIYCURSOR_OLLAMA_URL"); v != "" {
		c.Local.OllamaURL = v
	}
	if v := os.Getenv("DIYCURSOR_ANTHROPIC_URL"); v != "" {
		c.Anthropic.BaseURL = v
	}
	if v := os.Getenv("DIYCURSOR_OPENAI_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("DIYCURSOR_PROJECTS_DIR"); v != "" {
		c.Workspace.ProjectsDir = v
	}
	if v := os.Getenv("DIYCURSOR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns a value by dot-notation key, e.g. "editor.autosave_delay_ms".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dot-notation key. String values are converted to
// the field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
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
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a setting", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName turns snake_case or kebab-case into a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(b)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns every setting in dot notation.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := section.Tag.Get("toml")
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
