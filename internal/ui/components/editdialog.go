package components

import (
	"strings"

	"webdeck/internal/models"
	"webdeck/internal/ui"
	"webdeck/internal/validate"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EditDialog changes the URL of one app
type EditDialog struct {
	Modal

	input  textinput.Model
	target models.App
	err    string
}

// NewEditDialog creates a closed edit dialog
func NewEditDialog() *EditDialog {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/my-app"
	ti.CharLimit = 512
	ti.Width = 44

	return &EditDialog{
		Modal: Modal{Title: "Edit Application URL", Width: 60},
		input: ti,
	}
}

// Open shows the dialog pre-filled with app's current URL
func (d *EditDialog) Open(app models.App) tea.Cmd {
	d.Modal.Open()
	d.target = app
	d.err = ""
	d.input.SetValue(app.URL)
	d.input.CursorEnd()
	d.input.Focus()
	return textinput.Blink
}

// Close hides the dialog without committing
func (d *EditDialog) Close() bool {
	if !d.Modal.Close() {
		return false
	}
	d.input.Blur()
	d.err = ""
	return true
}

// BackdropDismiss behaves like Close
func (d *EditDialog) BackdropDismiss() bool {
	return d.Close()
}

// Target returns the app being edited
func (d *EditDialog) Target() models.App {
	return d.target
}

// SetValue replaces the URL input
func (d *EditDialog) SetValue(url string) {
	d.input.SetValue(url)
}

// Value returns the trimmed URL input
func (d *EditDialog) Value() string {
	return strings.TrimSpace(d.input.Value())
}

// Error returns the inline error from the last submit
func (d *EditDialog) Error() string {
	return d.err
}

// Submit validates the URL. On success it returns the target id and a
// URL-only patch, and closes the dialog.
func (d *EditDialog) Submit() (string, models.Patch, bool) {
	if !d.open {
		return "", models.Patch{}, false
	}
	url := d.Value()
	if err := validate.URL(url); err != nil {
		d.err = err.Error()
		return "", models.Patch{}, false
	}

	id := d.target.ID
	d.Close()
	return id, models.URLPatch(url), true
}

// Update forwards typing to the input
func (d *EditDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.open {
		return nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		d.err = ""
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

// View renders the dialog
func (d *EditDialog) View() string {
	if !d.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.MutedStyle.Render("Application: "))
	b.WriteString(ui.TitleStyle.Render(d.target.Name))
	b.WriteString("\n\n")
	b.WriteString(renderField("Application URL", d.input.View(), d.err))
	b.WriteString("\n")
	b.WriteString(ui.RenderButton("Cancel", false) + "  " + ui.RenderButton("Save", true))
	b.WriteString("\n")

	help := ui.RenderHelpItem("Enter", "save") + "  " + ui.RenderHelpItem("Esc", "cancel")
	return d.frame(b.String(), help)
}
