package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"webdeck/internal/launcher"
	"webdeck/internal/logo"
	"webdeck/internal/sandbox"
)

// Config holds the application configuration
type Config struct {
	SeedsFile       string   `json:"seeds_file"`       // YAML seed file (optional)
	BasePath        string   `json:"base_path"`        // Prefix for icon and page paths
	LogoDelayMS     int      `json:"logo_delay_ms"`    // Simulated logo lookup latency
	FetchTimeoutS   int      `json:"fetch_timeout_s"`  // 0 = no timeout
	ListenAddr      string   `json:"listen_addr"`      // Address for serve
	Sandbox         []string `json:"sandbox"`          // Frame capabilities, nil = all
	Browser         string   `json:"browser"`          // auto, system, firefox, chromium, chrome
	BrowserPriority []string `json:"browser_priority"` // Order for auto-detection
	LogFile         string   `json:"log_file"`         // TUI log file
	FirstRun        bool     `json:"-"`                // Is this the first run?
}

// configFileName is the name of the config file
const configFileName = "webdeck.json"

// MinLogoDelayMS is the shortest simulated logo lookup accepted
const MinLogoDelayMS = 500

// Default returns the default configuration
func Default() *Config {
	browser := launcher.DefaultConfig()
	return &Config{
		SeedsFile:       "", // Empty = use built-in defaults
		BasePath:        "",
		LogoDelayMS:     int(logo.DefaultDelay / time.Millisecond),
		FetchTimeoutS:   0,
		ListenAddr:      "127.0.0.1:8080",
		Browser:         browser.Browser,
		BrowserPriority: browser.Priority,
		LogFile:         filepath.Join(ConfigDir(), "webdeck.log"),
		FirstRun:        true,
	}
}

// ConfigDir returns the directory containing webdeck config files
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "webdeck")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// Load loads the configuration from the default location
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from path. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.FirstRun = false
	return cfg, nil
}

// Save saves the configuration to the default location
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo saves the configuration to path
func (c *Config) SaveTo(path string) error {
	// Create config directory
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that cannot be used as given
func (c *Config) Validate() error {
	if c.LogoDelayMS < MinLogoDelayMS {
		return fmt.Errorf("logo_delay_ms must be at least %d", MinLogoDelayMS)
	}
	if c.FetchTimeoutS < 0 {
		return fmt.Errorf("fetch_timeout_s must not be negative")
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /")
	}
	if _, err := sandbox.Parse(c.Sandbox); err != nil {
		return err
	}
	return nil
}

// LogoDelay returns the simulated logo lookup latency, never less than
// MinLogoDelayMS
func (c *Config) LogoDelay() time.Duration {
	return time.Duration(max(c.LogoDelayMS, MinLogoDelayMS)) * time.Millisecond
}

// FetchTimeout returns the page fetch timeout, 0 for none
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutS) * time.Second
}

// SandboxPolicy returns the capabilities granted to embedded frames
func (c *Config) SandboxPolicy() (sandbox.Policy, error) {
	return sandbox.Parse(c.Sandbox)
}

// LauncherConfig returns the browser launcher settings
func (c *Config) LauncherConfig() *launcher.Config {
	return &launcher.Config{
		Browser:  c.Browser,
		Priority: c.BrowserPriority,
	}
}

// NormalizedBasePath returns BasePath without a trailing slash
func (c *Config) NormalizedBasePath() string {
	return strings.TrimRight(c.BasePath, "/")
}
