package registry

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"webdeck/internal/models"
	"webdeck/internal/validate"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Seed returns the built-in default apps
func Seed() []models.App {
	apps, err := ParseSeeds(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("registry: invalid built-in defaults: %v", err))
	}
	return apps
}

// LoadSeeds reads default apps from a YAML seed file. An empty path
// returns the built-in defaults.
func LoadSeeds(path string) ([]models.App, error) {
	if strings.TrimSpace(path) == "" {
		return Seed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}
	apps, err := ParseSeeds(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return apps, nil
}

// ParseSeeds decodes and sanitizes a seed document. Every seeded app is
// a default app.
func ParseSeeds(data []byte) ([]models.App, error) {
	var cfg models.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	apps := make([]models.App, 0, len(cfg.Apps))
	seen := make(map[string]bool, len(cfg.Apps))
	for _, a := range cfg.Apps {
		a, err := sanitizeSeed(a)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(a.ID)
		if seen[key] {
			return nil, fmt.Errorf("app with id %q already exists", a.ID)
		}
		seen[key] = true
		apps = append(apps, a)
	}
	return apps, nil
}

// MarshalSeeds encodes apps in the seed file format
func MarshalSeeds(apps []models.App) ([]byte, error) {
	return yaml.Marshal(models.AppConfig{Apps: apps})
}

func sanitizeSeed(a models.App) (models.App, error) {
	a.ID = strings.TrimSpace(a.ID)
	a.Name = strings.TrimSpace(a.Name)
	a.URL = strings.TrimSpace(a.URL)
	a.Icon = strings.TrimSpace(a.Icon)

	if a.Name == "" {
		return a, fmt.Errorf("name is required")
	}
	if !validate.IsURL(a.URL) {
		return a, fmt.Errorf("app %q: invalid url %q", a.Name, a.URL)
	}
	if a.ID == "" {
		a.ID = slugify(a.Name)
	}
	if a.Icon == "" {
		a.Icon = "/images/default.svg"
	}
	a.IsDefault = true
	return a, nil
}

func slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}

	var b strings.Builder
	lastDash := false
	for _, r := range s {
		isAlphaNum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlphaNum {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "app"
	}
	return out
}
