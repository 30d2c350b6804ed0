package components

import (
	"strings"

	"webdeck/internal/ui"
)

// Modal is the open/close contract shared by the registry dialogs.
// Closing is refused while a submission is in flight.
type Modal struct {
	Title string
	Width int

	open bool
	busy bool
}

// Open shows the modal
func (m *Modal) Open() {
	m.open = true
	m.busy = false
}

// Close hides the modal and reports whether it did
func (m *Modal) Close() bool {
	if m.busy {
		return false
	}
	m.open = false
	return true
}

// BackdropDismiss behaves like Close
func (m *Modal) BackdropDismiss() bool {
	return m.Close()
}

// IsOpen returns whether the modal is visible
func (m *Modal) IsOpen() bool {
	return m.open
}

// IsBusy returns whether a submission is in flight
func (m *Modal) IsBusy() bool {
	return m.busy
}

// frame renders body inside the dialog box with a title and help line
func (m *Modal) frame(body, help string) string {
	width := m.Width
	if width <= 0 {
		width = 60
	}

	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("-", max(0, width-6))))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("-", max(0, width-6))))
	b.WriteString("\n")
	b.WriteString(help)

	return ui.DialogStyle.Width(width).Render(b.String())
}
