// Package logo maps app URLs to display icons.
package logo

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// DefaultIcon is used when no marker matches
const DefaultIcon = "/images/default.svg"

// DefaultDelay is the simulated lookup latency
const DefaultDelay = 600 * time.Millisecond

// Marker associates a hostname fragment with an icon
type Marker struct {
	Fragment string
	Icon     string
}

// DefaultMarkers are checked in order; the first match wins
var DefaultMarkers = []Marker{
	{Fragment: "github.com", Icon: "/images/github.svg"},
	{Fragment: "gitlab", Icon: "/images/gitlab.svg"},
	{Fragment: "go.dev", Icon: "/images/go.svg"},
	{Fragment: "ycombinator.com", Icon: "/images/hackernews.svg"},
	{Fragment: "grafana", Icon: "/images/grafana.svg"},
	{Fragment: "notion.so", Icon: "/images/notion.svg"},
	{Fragment: "figma.com", Icon: "/images/figma.svg"},
	{Fragment: "figma.site", Icon: "/images/figma.svg"},
	{Fragment: "tempo.build", Icon: "/images/tempo.svg"},
	{Fragment: "vercel.app", Icon: "/images/v0.svg"},
	{Fragment: "v0.dev", Icon: "/images/v0.svg"},
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleep is the real Sleeper
func TimerSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoSleep returns immediately; used by tests
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Resolver resolves icons with a simulated delay
type Resolver struct {
	Markers []Marker
	Delay   time.Duration
	Sleep   Sleeper
	Logger  *zap.Logger
}

// New creates a resolver with the default markers
func New(delay time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		Markers: DefaultMarkers,
		Delay:   delay,
		Sleep:   TimerSleep,
		Logger:  logger,
	}
}

// Match returns the icon for url without any delay
func (r *Resolver) Match(url string) string {
	lower := strings.ToLower(url)
	for _, m := range r.Markers {
		if m.Fragment != "" && strings.Contains(lower, strings.ToLower(m.Fragment)) {
			return m.Icon
		}
	}
	return DefaultIcon
}

// Lookup waits for the simulated delay, then matches. On any failure it
// returns DefaultIcon together with the error.
func (r *Resolver) Lookup(ctx context.Context, url string) (icon string, err error) {
	defer func() {
		if p := recover(); p != nil {
			icon, err = DefaultIcon, fmt.Errorf("logo lookup panicked: %v", p)
		}
		if err != nil {
			r.Logger.Warn("logo resolution failed, using default icon",
				zap.String("url", url), zap.Error(err))
		}
	}()

	sleep := r.Sleep
	if sleep == nil {
		sleep = TimerSleep
	}
	if err := sleep(ctx, r.Delay); err != nil {
		return DefaultIcon, err
	}
	return r.Match(url), nil
}

// Resolve is Lookup without the error
func (r *Resolver) Resolve(ctx context.Context, url string) string {
	icon, _ := r.Lookup(ctx, url)
	return icon
}

// ResolvedMsg carries a finished lookup back to the requesting dialog
type ResolvedMsg struct {
	Token int
	URL   string
	Icon  string
	Err   error
}

// Cmd runs Lookup in the background. token lets the receiver discard
// results it no longer waits for.
func (r *Resolver) Cmd(ctx context.Context, token int, url string) tea.Cmd {
	return func() tea.Msg {
		icon, err := r.Lookup(ctx, url)
		return ResolvedMsg{Token: token, URL: url, Icon: icon, Err: err}
	}
}

// WithBase prefixes root-relative icon paths with the deployment base path
func WithBase(base, icon string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" || !strings.HasPrefix(icon, "/") || strings.HasPrefix(icon, "//") {
		return icon
	}
	if strings.HasPrefix(icon, base+"/") {
		return icon
	}
	return base + icon
}
