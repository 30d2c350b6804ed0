// Package viewer previews the selected app's page inside the terminal.
package viewer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"webdeck/internal/launcher"
	"webdeck/internal/ui"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

// State is the load state of the viewer
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// CacheBustParam is the query parameter appended on refresh
const CacheBustParam = "_t"

// LoadedMsg reports a successful page load
type LoadedMsg struct {
	Gen  int
	Page *Page
}

// FailedMsg reports a failed page load
type FailedMsg struct {
	Gen int
	URL string
	Err error
}

// CopiedMsg reports the result of copying the URL
type CopiedMsg struct {
	URL string
	Err error
}

// Viewer shows one app page. Loads are never retried automatically.
type Viewer struct {
	fetcher Fetcher
	browser launcher.Browser
	copyURL func(string) error
	now     func() time.Time
	logger  *zap.Logger

	url      *string
	frameURL string
	state    State
	err      error
	page     *Page
	changes  *Changes
	prevText string
	gen      int

	showSource  bool
	viewport    viewport.Model
	spinner     spinner.Model
	highlighter *ui.Highlighter

	Width  int
	Height int
}

// New creates a viewer
func New(fetcher Fetcher, browser launcher.Browser, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.ProgressStyle

	return &Viewer{
		fetcher:     fetcher,
		browser:     browser,
		copyURL:     clipboard.WriteAll,
		now:         time.Now,
		logger:      logger,
		viewport:    vp,
		spinner:     s,
		highlighter: ui.NewHighlighter(),
		Width:       80,
		Height:      20,
	}
}

// SetSize updates the viewer dimensions
func (v *Viewer) SetSize(width, height int) {
	v.Width = width
	v.Height = height

	// header (3 lines) and border (2 lines)
	contentHeight := height - 5
	if contentHeight < 3 {
		contentHeight = 3
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	v.viewport.Width = contentWidth
	v.viewport.Height = contentHeight
	v.refreshContent()
}

// State returns the load state
func (v *Viewer) State() State { return v.state }

// Err returns the last load error
func (v *Viewer) Err() error { return v.err }

// URL returns the shown URL, or nil for the empty state
func (v *Viewer) URL() *string {
	if v.url == nil {
		return nil
	}
	u := *v.url
	return &u
}

// FrameURL returns the URL actually requested, including any cache buster
func (v *Viewer) FrameURL() string { return v.frameURL }

// Page returns the last loaded page
func (v *Viewer) Page() *Page { return v.page }

// Changes returns the diff against the previous load after a refresh
func (v *Viewer) Changes() *Changes { return v.changes }

// CanEdit reports whether the edit affordance is offered
func (v *Viewer) CanEdit() bool { return v.url != nil }

// ShowingSource reports whether the raw source is shown
func (v *Viewer) ShowingSource() bool { return v.showSource }

// SetURL points the viewer at url. nil shows the empty state.
// Setting the URL already shown does nothing.
func (v *Viewer) SetURL(u *string) tea.Cmd {
	if u == nil {
		v.gen++
		v.url = nil
		v.frameURL = ""
		v.state = StateIdle
		v.err = nil
		v.page = nil
		v.changes = nil
		v.prevText = ""
		v.viewport.SetContent("")
		return nil
	}
	if v.url != nil && *v.url == *u {
		return nil
	}

	s := *u
	v.url = &s
	v.page = nil
	v.prevText = ""
	return v.load(s)
}

// Refresh reloads the page with a cache-busting parameter
func (v *Viewer) Refresh() tea.Cmd {
	if v.url == nil {
		return nil
	}
	if v.page != nil {
		v.prevText = v.page.Text
	}
	return v.load(CacheBust(*v.url, v.now()))
}

// Retry is Refresh, offered from the error state
func (v *Viewer) Retry() tea.Cmd {
	return v.Refresh()
}

func (v *Viewer) load(frameURL string) tea.Cmd {
	v.gen++
	v.frameURL = frameURL
	v.state = StateLoading
	v.err = nil
	v.changes = nil
	v.logger.Debug("page load started", zap.String("url", frameURL), zap.Int("gen", v.gen))
	return tea.Batch(v.fetch(v.gen, frameURL), v.spinner.Tick)
}

func (v *Viewer) fetch(gen int, frameURL string) tea.Cmd {
	fetcher := v.fetcher
	return func() tea.Msg {
		if fetcher == nil {
			return FailedMsg{Gen: gen, URL: frameURL, Err: fmt.Errorf("no fetcher configured")}
		}
		page, err := fetcher.Fetch(context.Background(), frameURL)
		if err != nil {
			return FailedMsg{Gen: gen, URL: frameURL, Err: err}
		}
		return LoadedMsg{Gen: gen, Page: page}
	}
}

// OpenExternal opens the shown URL in the browser. The viewer state is
// not touched.
func (v *Viewer) OpenExternal() tea.Cmd {
	if v.url == nil {
		return nil
	}
	return launcher.Cmd(v.browser, *v.url)
}

// CopyURL copies the shown URL to the clipboard
func (v *Viewer) CopyURL() tea.Cmd {
	if v.url == nil {
		return nil
	}
	u, copyFn := *v.url, v.copyURL
	return func() tea.Msg {
		return CopiedMsg{URL: u, Err: copyFn(u)}
	}
}

// ToggleSource switches between rendered text and page source
func (v *Viewer) ToggleSource() {
	v.showSource = !v.showSource
	v.refreshContent()
}

// Update handles load results, spinner ticks and scrolling
func (v *Viewer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Gen != v.gen {
			return nil
		}
		v.state = StateLoaded
		v.page = msg.Page
		if v.prevText != "" && msg.Page != nil {
			c := CompareText(v.prevText, msg.Page.Text)
			v.changes = &c
		}
		v.logger.Debug("page loaded", zap.String("url", v.frameURL))
		v.refreshContent()
		v.viewport.GotoTop()
		return nil

	case FailedMsg:
		if msg.Gen != v.gen {
			return nil
		}
		v.state = StateError
		v.err = msg.Err
		v.logger.Warn("page load failed", zap.String("url", msg.URL), zap.Error(msg.Err))
		return nil

	case spinner.TickMsg:
		if v.state != StateLoading {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// ScrollUp scrolls up one line
func (v *Viewer) ScrollUp() { v.viewport.LineUp(1) }

// ScrollDown scrolls down one line
func (v *Viewer) ScrollDown() { v.viewport.LineDown(1) }

// PageUp scrolls up by a page
func (v *Viewer) PageUp() { v.viewport.ViewUp() }

// PageDown scrolls down by a page
func (v *Viewer) PageDown() { v.viewport.ViewDown() }

// GoToTop goes to the beginning
func (v *Viewer) GoToTop() { v.viewport.GotoTop() }

// GoToBottom goes to the end
func (v *Viewer) GoToBottom() { v.viewport.GotoBottom() }

func (v *Viewer) refreshContent() {
	if v.page == nil {
		return
	}
	if !v.showSource || v.page.Source == "" {
		v.viewport.SetContent(lipgloss.NewStyle().Width(v.viewport.Width).Render(v.page.Text))
		return
	}

	lines := strings.Split(v.page.Source, "\n")
	maxWidth := v.viewport.Width
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if maxWidth > 3 {
			line = truncate(line, maxWidth)
		}
		lines[i] = line
	}
	lines = v.highlighter.HighlightLines(lines, v.page.ContentType, v.page.URL)
	v.viewport.SetContent(strings.Join(lines, "\n"))
}

// View renders the viewer
func (v *Viewer) View() string {
	var b strings.Builder

	switch {
	case v.url == nil:
		b.WriteString(v.renderEmpty())
	case v.state == StateError:
		b.WriteString(v.renderHeader())
		b.WriteString(v.renderError())
	case v.state == StateLoading && v.page == nil:
		b.WriteString(v.renderHeader())
		b.WriteString("\n" + v.spinner.View() + ui.LoadingStyle.Render(" Loading "+v.frameURL+" ..."))
	default:
		b.WriteString(v.renderHeader())
		b.WriteString(v.viewport.View())
		if v.viewport.TotalLineCount() > v.viewport.Height {
			scrollInfo := fmt.Sprintf("─── %.0f%% ───", v.viewport.ScrollPercent()*100)
			b.WriteString("\n" + ui.MutedStyle.Render(scrollInfo))
		}
	}

	return ui.PanelStyle.Width(v.Width).Height(v.Height).Render(b.String())
}

func (v *Viewer) renderEmpty() string {
	lines := []string{
		"",
		ui.TitleStyle.Render("No app selected"),
		"",
		ui.MutedStyle.Render("Pick an app from the row above with ←/→ and press enter,"),
		ui.MutedStyle.Render("or press a to add a new one."),
	}
	return lipgloss.NewStyle().
		Width(max(0, v.Width-4)).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func (v *Viewer) renderHeader() string {
	title := *v.url
	if v.page != nil && v.page.Title != "" {
		title = v.page.Title
	}

	status := ui.LoadedStyle.Render("● loaded")
	switch v.state {
	case StateLoading:
		status = v.spinner.View() + ui.LoadingStyle.Render("loading")
	case StateError:
		status = ui.ErrorStyle.Render("✗ error")
	}

	info := ""
	if v.page != nil {
		info = "  " + ui.ContentTypeLabel(v.page.ContentType) + "  " + formatBytes(int64(v.page.Size))
		if v.page.Truncated {
			info += " (truncated)"
		}
	}
	if v.changes != nil {
		info += "  " + v.changes.String()
	}
	if v.showSource {
		info += "  [source]"
	}

	var b strings.Builder
	b.WriteString(ui.PageTitleStyle.Render(truncate(title, max(10, v.Width-30))) + "  " + status + "\n")
	b.WriteString(ui.URLStyle.Render(truncate(*v.url, max(10, v.Width-30))) + ui.MutedStyle.Render(info) + "\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", max(0, v.Width-4))) + "\n")
	return b.String()
}

func (v *Viewer) renderError() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.ErrorStyle.Render("  Failed to load this app"))
	b.WriteString("\n\n")
	if v.err != nil {
		b.WriteString(ui.MutedStyle.Render("  " + v.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(ui.MutedStyle.Render("  The site may be down or may refuse to be embedded."))
	b.WriteString("\n\n")
	b.WriteString("  " + ui.RenderHelpItem("r", "retry") + "  " + ui.RenderHelpItem("o", "open in browser"))
	return b.String()
}

// CacheBust appends the cache-busting parameter to raw, keeping any
// existing query and fragment
func CacheBust(raw string, now time.Time) string {
	param := CacheBustParam + "=" + strconv.FormatInt(now.UnixMilli(), 10)
	u, err := url.Parse(raw)
	if err != nil {
		sep := "?"
		if strings.Contains(raw, "?") {
			sep = "&"
		}
		return raw + sep + param
	}
	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String()
}

// truncate clips s to n display cells
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "...")
}

// formatBytes formats bytes to human readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
