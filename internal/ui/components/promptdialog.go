package components

import (
	"fmt"
	"strings"

	"webdeck/internal/ui"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// PromptDialog shows a read-only markdown document
type PromptDialog struct {
	Modal

	// Style is the glamour style name
	Style string
	Height int

	markdown string
	rendered string
	viewport viewport.Model
}

// NewPromptDialog creates a closed dialog showing markdown
func NewPromptDialog(title, markdown string) *PromptDialog {
	vp := viewport.New(56, 16)
	vp.MouseWheelEnabled = true

	return &PromptDialog{
		Modal:    Modal{Title: title, Width: 80},
		Style:    "dark",
		Height:   24,
		markdown: markdown,
		viewport: vp,
	}
}

// Open shows the dialog scrolled to the top
func (d *PromptDialog) Open() {
	d.Modal.Open()
	d.render()
	d.viewport.GotoTop()
}

// SetSize fits the dialog into a width x height area
func (d *PromptDialog) SetSize(width, height int) {
	d.Width = max(40, min(100, width-4))
	d.Height = max(10, height-4)
	if d.open {
		d.render()
	}
}

func (d *PromptDialog) render() {
	// dialog border, padding, title and help lines
	d.viewport.Width = max(20, d.Width-6)
	d.viewport.Height = max(3, d.Height-10)

	d.rendered = d.markdown
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(d.Style),
		glamour.WithWordWrap(d.viewport.Width-2),
	)
	if err == nil {
		if out, err := r.Render(d.markdown); err == nil {
			d.rendered = out
		}
	}
	d.viewport.SetContent(d.rendered)
}

// Update handles scrolling
func (d *PromptDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.open {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			d.viewport.LineUp(1)
			return nil
		case "down", "j":
			d.viewport.LineDown(1)
			return nil
		case "pgup":
			d.viewport.ViewUp()
			return nil
		case "pgdown", " ":
			d.viewport.ViewDown()
			return nil
		case "home", "g":
			d.viewport.GotoTop()
			return nil
		case "end", "G":
			d.viewport.GotoBottom()
			return nil
		}
	}

	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

// View renders the dialog
func (d *PromptDialog) View() string {
	if !d.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(d.viewport.View())
	if d.viewport.TotalLineCount() > d.viewport.Height {
		b.WriteString("\n")
		b.WriteString(ui.MutedStyle.Render(strings.Repeat(" ", max(0, d.viewport.Width/2-3)) +
			fmt.Sprintf("%.0f%%", d.viewport.ScrollPercent()*100)))
	}
	b.WriteString("\n")

	help := ui.RenderHelpItem("↑/↓", "scroll") + "  " + ui.RenderHelpItem("Esc", "close")
	return d.frame(b.String(), help)
}
