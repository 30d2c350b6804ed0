package components

import (
	"fmt"
	"strings"

	"webdeck/internal/models"
	"webdeck/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

// AppList is the row of app-switch buttons
type AppList struct {
	Apps     []models.App
	Cursor   int
	Selected *string
	Width    int
	Focused  bool
	Title    string
}

// NewAppList creates a new app list
func NewAppList(apps []models.App) *AppList {
	return &AppList{
		Apps:    apps,
		Cursor:  0,
		Width:   80,
		Focused: true,
		Title:   "Apps",
	}
}

// SetApps updates the apps and keeps the cursor in range
func (l *AppList) SetApps(apps []models.App) {
	l.Apps = apps
	if l.Cursor >= len(apps) {
		l.Cursor = max(0, len(apps)-1)
	}
}

// SetSelected marks the app whose URL equals url as active
func (l *AppList) SetSelected(url *string) {
	if url == nil {
		l.Selected = nil
		return
	}
	u := *url
	l.Selected = &u
}

// MoveLeft moves the cursor to the previous app
func (l *AppList) MoveLeft() {
	if l.Cursor > 0 {
		l.Cursor--
	}
}

// MoveRight moves the cursor to the next app
func (l *AppList) MoveRight() {
	if l.Cursor < len(l.Apps)-1 {
		l.Cursor++
	}
}

// GoToFirst moves cursor to the first item
func (l *AppList) GoToFirst() {
	l.Cursor = 0
}

// GoToLast moves cursor to the last item
func (l *AppList) GoToLast() {
	if len(l.Apps) > 0 {
		l.Cursor = len(l.Apps) - 1
	}
}

// Current returns the app under the cursor
func (l *AppList) Current() (models.App, bool) {
	if len(l.Apps) > 0 && l.Cursor < len(l.Apps) {
		return l.Apps[l.Cursor], true
	}
	return models.App{}, false
}

// IsActive reports whether app is the selected one
func (l *AppList) IsActive(app models.App) bool {
	return l.Selected != nil && *l.Selected == app.URL
}

// View renders the button row
func (l *AppList) View() string {
	var b strings.Builder

	title := l.Title
	if len(l.Apps) > 0 {
		title = fmt.Sprintf("%s (%d)", l.Title, len(l.Apps))
	}
	b.WriteString(ui.PanelTitleStyle.Render(title))
	b.WriteString("\n")

	if len(l.Apps) == 0 {
		b.WriteString(ui.ItemStyle.Render("No apps. Press a to add one."))
		return l.wrapInPanel(b.String())
	}

	buttons := make([]string, len(l.Apps))
	for i, app := range l.Apps {
		buttons[i] = l.renderButton(app, i == l.Cursor)
	}

	// Scroll the row so the cursor stays visible
	avail := max(10, l.Width-8)
	start := 0
	for start < l.Cursor && rowWidth(buttons[start:l.Cursor+1]) > avail {
		start++
	}
	end := start
	for end < len(buttons) && rowWidth(buttons[start:end+1]) <= avail {
		end++
	}
	if end <= l.Cursor {
		end = l.Cursor + 1
	}

	row := strings.Join(buttons[start:end], " ")
	if start > 0 {
		row = ui.MutedStyle.Render("‹ ") + row
	}
	if end < len(buttons) {
		row += ui.MutedStyle.Render(" ›")
	}
	b.WriteString(row)

	return l.wrapInPanel(b.String())
}

// renderButton renders a single app button
func (l *AppList) renderButton(app models.App, isCursor bool) string {
	name := app.Name
	if len(name) > 24 {
		name = name[:21] + "..."
	}
	label := iconGlyph(app) + " " + name

	switch {
	case isCursor && l.Focused:
		return ui.AppButtonCursorStyle.Render(label)
	case l.IsActive(app):
		return ui.AppButtonActiveStyle.Render(label)
	default:
		return ui.AppButtonStyle.Render(label)
	}
}

// iconGlyph maps an icon path to a single terminal glyph
func iconGlyph(app models.App) string {
	icon := app.Icon
	if i := strings.LastIndex(icon, "/"); i >= 0 {
		icon = icon[i+1:]
	}
	icon = strings.TrimSuffix(icon, ".svg")
	switch icon {
	case "", "default":
		return "◆"
	default:
		r := []rune(strings.ToUpper(icon))
		return string(r[0])
	}
}

func rowWidth(buttons []string) int {
	w := 0
	for _, b := range buttons {
		w += lipgloss.Width(b) + 1
	}
	return w
}

// wrapInPanel wraps content in a panel border
func (l *AppList) wrapInPanel(content string) string {
	style := ui.PanelStyle
	if l.Focused {
		style = ui.ActivePanelStyle
	}
	return style.Width(l.Width).Render(content)
}
