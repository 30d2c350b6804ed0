package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webdeck/internal/sandbox"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.SeedsFile != "" {
		t.Errorf("SeedsFile should default to built-in seeds, got %q", cfg.SeedsFile)
	}
	if cfg.LogoDelay() != 600*time.Millisecond {
		t.Errorf("Expected 600ms logo delay, got %v", cfg.LogoDelay())
	}
	if cfg.FetchTimeout() != 0 {
		t.Errorf("Expected no fetch timeout, got %v", cfg.FetchTimeout())
	}
	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("Unexpected listen address %q", cfg.ListenAddr)
	}
	if cfg.Browser != "auto" {
		t.Errorf("Expected auto browser, got %q", cfg.Browser)
	}
	if !cfg.FirstRun {
		t.Error("FirstRun should be true for default config")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()

	if !strings.Contains(path, ".config") || !strings.Contains(path, "webdeck") {
		t.Errorf("ConfigPath should be under .config/webdeck, got %s", path)
	}
	if filepath.Base(path) != "webdeck.json" {
		t.Errorf("ConfigPath should end with webdeck.json, got %s", path)
	}
	if filepath.Dir(path) != ConfigDir() {
		t.Errorf("ConfigPath should be inside ConfigDir, got %s", path)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !cfg.FirstRun {
		t.Error("missing file should be a first run")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "webdeck.json")

	cfg := Default()
	cfg.SeedsFile = "/test/apps.yaml"
	cfg.BasePath = "/deck"
	cfg.LogoDelayMS = 750
	cfg.FetchTimeoutS = 5
	cfg.Sandbox = []string{"scripts", "forms"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.FirstRun {
		t.Error("FirstRun should be false after loading a file")
	}
	loaded.FirstRun = cfg.FirstRun
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadFrom_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webdeck.json")
	if err := os.WriteFile(path, []byte(`{"base_path": "/deck"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.BasePath != "/deck" {
		t.Errorf("Expected /deck, got %q", cfg.BasePath)
	}
	if cfg.LogoDelayMS != 600 || cfg.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("defaults should survive a partial file: %+v", cfg)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad json":      `{not json`,
		"negative":      `{"logo_delay_ms": -1}`,
		"zero delay":    `{"logo_delay_ms": 0}`,
		"short delay":   `{"logo_delay_ms": 499}`,
		"relative base": `{"base_path": "deck"}`,
		"bad sandbox":   `{"sandbox": ["scripts", "teleport"]}`,
		"bad timeout":   `{"fetch_timeout_s": -3}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "webdeck.json")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSandboxPolicy(t *testing.T) {
	cfg := Default()
	p, err := cfg.SandboxPolicy()
	if err != nil {
		t.Fatalf("SandboxPolicy() error = %v", err)
	}
	if len(p.Capabilities()) != len(sandbox.All) {
		t.Error("nil sandbox list should grant everything")
	}

	cfg.Sandbox = []string{}
	p, _ = cfg.SandboxPolicy()
	if p.Sandbox() != "" {
		t.Errorf("empty sandbox list should grant nothing, got %q", p.Sandbox())
	}
}

func TestLauncherConfig(t *testing.T) {
	cfg := Default()
	cfg.Browser = "firefox"

	lc := cfg.LauncherConfig()
	if lc.Browser != "firefox" {
		t.Errorf("Expected firefox, got %q", lc.Browser)
	}
	if len(lc.Priority) == 0 {
		t.Error("Expected browser priority")
	}
}

func TestNormalizedBasePath(t *testing.T) {
	for in, want := range map[string]string{"": "", "/": "", "/deck/": "/deck", "/deck": "/deck"} {
		cfg := &Config{BasePath: in}
		if got := cfg.NormalizedBasePath(); got != want {
			t.Errorf("NormalizedBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogoDelay_Floor(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{0, 500 * time.Millisecond},
		{120, 500 * time.Millisecond},
		{500, 500 * time.Millisecond},
		{900, 900 * time.Millisecond},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.LogoDelayMS = tt.ms
		if got := cfg.LogoDelay(); got != tt.want {
			t.Errorf("LogoDelay() with %dms = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestLoadFrom_MinimumDelayAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webdeck.json")
	if err := os.WriteFile(path, []byte(`{"logo_delay_ms": 500}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.LogoDelay() != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", cfg.LogoDelay())
	}
}
