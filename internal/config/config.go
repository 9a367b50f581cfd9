// Package config handles configuration loading and resolution for helper.
//
// User preferences live in ~/.helper/config.toml or ~/.helper/config.json
// (TOML wins when both exist). The effective run configuration is a Settings
// value produced by Resolve from flags, environment and the config file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/diogo/helper/internal/models"
)

// EnvConfigDir overrides the configuration directory
const EnvConfigDir = "HELPER_CONFIG_DIR"

const (
	configDirName  = ".helper"
	configTOMLName = "config.toml"
	configJSONName = "config.json"
	historyName    = "history.json"
)

// DefaultTimeoutSeconds bounds a single completion request
const DefaultTimeoutSeconds = 300

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `toml:"style" json:"style"`                           // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `toml:"enable_emoji" json:"enable_emoji"`             // Convert :emoji: to unicode
	PreserveNewLines bool   `toml:"preserve_newlines" json:"preserve_newlines"`   // Preserve original line breaks
	TableWrap        bool   `toml:"table_wrap" json:"table_wrap"`                 // Enable word wrap in table cells
	InlineTableLinks bool   `toml:"inline_table_links" json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration file
type Config struct {
	DefaultModel string `toml:"default_model" json:"default_model"`
	BaseURL      string `toml:"base_url" json:"base_url,omitempty"`
	// Provider selects the completion backend: "http" or "langchain"
	Provider       string `toml:"provider" json:"provider,omitempty"`
	HistoryFile    string `toml:"history_file" json:"history_file,omitempty"`
	SystemPrompt   string `toml:"system_prompt" json:"system_prompt,omitempty"`
	DefaultPersona string `toml:"default_persona" json:"default_persona,omitempty"`
	// TimeoutSeconds bounds one completion request. Zero means the default.
	TimeoutSeconds  int            `toml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	Verbose         bool           `toml:"verbose" json:"verbose"`
	CopyToClipboard bool           `toml:"copy_to_clipboard" json:"copy_to_clipboard"`
	Markdown        MarkdownConfig `toml:"markdown" json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultModel:    models.DefaultModel,
		BaseURL:         models.DefaultBaseURL,
		Provider:        models.ProviderHTTP,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		Verbose:         false,
		CopyToClipboard: false,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path of the config file in use. When no file
// exists yet the JSON path is returned, since SaveConfig writes JSON.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	tomlPath := filepath.Join(configDir, configTOMLName)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	return filepath.Join(configDir, configJSONName), nil
}

// DefaultHistoryPath returns the built-in history file location
func DefaultHistoryPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, historyName), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads a TOML or JSON config file, chosen by extension.
// A missing file yields the defaults.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk as JSON
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, configJSONName)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
