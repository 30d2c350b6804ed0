// Package launcher opens app URLs in a top-level browser window.
package launcher

import (
	"fmt"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
)

// Browser opens URLs outside the terminal
type Browser interface {
	// Name returns the display name of the browser
	Name() string

	// IsInstalled checks if the browser is available on the system
	IsInstalled() bool

	// Open starts the browser on url without waiting for it to exit
	Open(url string) error
}

// Config holds browser configuration
type Config struct {
	// Browser specifies which opener to use: "auto", "system", "firefox",
	// "chromium", "chrome"
	Browser string `json:"browser"`

	// Priority order for auto-detection
	Priority []string `json:"browser_priority"`
}

// DefaultConfig returns the default browser configuration
func DefaultConfig() *Config {
	return &Config{
		Browser:  "auto",
		Priority: []string{"system", "firefox", "chromium", "chrome"},
	}
}

// browsersByName maps browser names to constructor functions
var browsersByName = map[string]func() Browser{
	"system":   NewSystem,
	"firefox":  NewFirefox,
	"chromium": NewChromium,
	"chrome":   NewChrome,
}

// availableBrowsers is the fallback order
var availableBrowsers = []func() Browser{
	NewSystem,
	NewFirefox,
	NewChromium,
	NewChrome,
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// Detect finds an installed browser based on priority order
func Detect(cfg *Config) (Browser, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Browser != "" && cfg.Browser != "auto" {
		if constructor, ok := browsersByName[cfg.Browser]; ok {
			b := constructor()
			if b.IsInstalled() {
				return b, nil
			}
			return nil, fmt.Errorf("browser %s is not installed", cfg.Browser)
		}
		return nil, fmt.Errorf("unknown browser: %s", cfg.Browser)
	}

	priority := cfg.Priority
	if len(priority) == 0 {
		priority = DefaultConfig().Priority
	}

	for _, name := range priority {
		if constructor, ok := browsersByName[name]; ok {
			b := constructor()
			if b.IsInstalled() {
				return b, nil
			}
		}
	}

	for _, constructor := range availableBrowsers {
		b := constructor()
		if b.IsInstalled() {
			return b, nil
		}
	}

	return nil, fmt.Errorf("no browser opener found (install xdg-utils or a browser)")
}

// ListInstalled returns all installed browsers
func ListInstalled() []Browser {
	var installed []Browser
	for _, constructor := range availableBrowsers {
		b := constructor()
		if b.IsInstalled() {
			installed = append(installed, b)
		}
	}
	return installed
}

func isCommandAvailable(name string) bool {
	_, err := lookPath(name)
	return err == nil
}

// startCommand is replaced in tests
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// baseBrowser launches a single command with the URL as last argument
type baseBrowser struct {
	name    string
	command string
	args    []string
}

func (b *baseBrowser) Name() string {
	return b.name
}

func (b *baseBrowser) IsInstalled() bool {
	return isCommandAvailable(b.command)
}

func (b *baseBrowser) Open(url string) error {
	args := append(append([]string{}, b.args...), url)
	if err := startCommand(b.command, args...); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	return nil
}

// NewSystem returns the platform's default URL opener
func NewSystem() Browser {
	switch runtime.GOOS {
	case "darwin":
		return &baseBrowser{name: "System default", command: "open"}
	case "windows":
		return &baseBrowser{name: "System default", command: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}
	default:
		return &baseBrowser{name: "System default", command: "xdg-open"}
	}
}

// NewFirefox opens URLs in a new Firefox window
func NewFirefox() Browser {
	return &baseBrowser{name: "Firefox", command: "firefox", args: []string{"--new-window"}}
}

// NewChromium opens URLs in a new Chromium window
func NewChromium() Browser {
	return &baseBrowser{name: "Chromium", command: "chromium", args: []string{"--new-window"}}
}

// NewChrome opens URLs in a new Google Chrome window
func NewChrome() Browser {
	return &baseBrowser{name: "Google Chrome", command: "google-chrome", args: []string{"--new-window"}}
}

// OpenedMsg reports the result of an Open command
type OpenedMsg struct {
	URL string
	Err error
}

// Cmd opens url with b in the background
func Cmd(b Browser, url string) tea.Cmd {
	return func() tea.Msg {
		if b == nil {
			return OpenedMsg{URL: url, Err: fmt.Errorf("no browser available")}
		}
		return OpenedMsg{URL: url, Err: b.Open(url)}
	}
}
