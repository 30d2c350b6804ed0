package components

import (
	"context"
	"strings"

	"webdeck/internal/logo"
	"webdeck/internal/models"
	"webdeck/internal/ui"
	"webdeck/internal/validate"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	addFieldName = iota
	addFieldURL
)

// AddDialog collects the name and URL of a new app. Submitting resolves
// the app's logo in the background before the draft is handed back.
type AddDialog struct {
	Modal

	name    textinput.Model
	url     textinput.Model
	focus   int
	errs    validate.FieldErrors
	failure string

	spinner  spinner.Model
	token    int
	resolver *logo.Resolver
	logger   *zap.Logger
}

// NewAddDialog creates a closed add dialog
func NewAddDialog(resolver *logo.Resolver, logger *zap.Logger) *AddDialog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = logo.New(logo.DefaultDelay, logger)
	}

	name := textinput.New()
	name.Placeholder = "e.g., My Custom App"
	name.CharLimit = 64
	name.Width = 44

	url := textinput.New()
	url.Placeholder = "https://example.com/my-app"
	url.CharLimit = 512
	url.Width = 44

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.ProgressStyle

	return &AddDialog{
		Modal:    Modal{Title: "Add New Application", Width: 60},
		name:     name,
		url:      url,
		spinner:  s,
		resolver: resolver,
		logger:   logger,
	}
}

// Open resets the draft and shows the dialog
func (d *AddDialog) Open() tea.Cmd {
	d.Modal.Open()
	d.token++
	d.reset()
	return textinput.Blink
}

// Close hides the dialog and discards the draft. It is refused while the
// logo is being resolved.
func (d *AddDialog) Close() bool {
	if !d.Modal.Close() {
		return false
	}
	d.token++
	d.reset()
	return true
}

// BackdropDismiss behaves like Close
func (d *AddDialog) BackdropDismiss() bool {
	return d.Close()
}

func (d *AddDialog) reset() {
	d.name.SetValue("")
	d.url.SetValue("")
	d.errs = nil
	d.failure = ""
	d.setFocus(addFieldName)
}

func (d *AddDialog) setFocus(field int) {
	d.focus = field
	if field == addFieldName {
		d.name.Focus()
		d.url.Blur()
		return
	}
	d.url.Focus()
	d.name.Blur()
}

// setValues fills the draft fields
func (d *AddDialog) setValues(name, url string) {
	d.name.SetValue(name)
	d.url.SetValue(url)
}

// Values returns the current draft
func (d *AddDialog) Values() models.Draft {
	return models.Draft{
		Name: strings.TrimSpace(d.name.Value()),
		URL:  strings.TrimSpace(d.url.Value()),
	}
}

// Errors returns the inline field errors from the last submit
func (d *AddDialog) Errors() validate.FieldErrors {
	return d.errs
}

// Submit validates the draft. Invalid input sets the field errors and
// returns nil; valid input marks the dialog busy and returns the logo
// lookup.
func (d *AddDialog) Submit() tea.Cmd {
	if !d.open || d.busy {
		return nil
	}
	draft := d.Values()
	d.failure = ""
	if errs := validate.Draft(draft.Name, draft.URL); errs != nil {
		d.errs = errs
		if _, ok := errs[validate.FieldName]; ok {
			d.setFocus(addFieldName)
		} else {
			d.setFocus(addFieldURL)
		}
		return nil
	}

	d.errs = nil
	d.busy = true
	d.token++
	d.name.Blur()
	d.url.Blur()
	return tea.Batch(d.resolver.Cmd(context.Background(), d.token, draft.URL), d.spinner.Tick)
}

// Complete applies a finished logo lookup. It returns the draft and icon
// to add when the dialog was waiting for this result; the dialog is then
// closed. Results for an earlier submission are ignored. A lookup that
// produced no icon is logged and leaves the dialog open.
func (d *AddDialog) Complete(msg logo.ResolvedMsg) (models.Draft, string, bool) {
	if !d.open || !d.busy || msg.Token != d.token {
		return models.Draft{}, "", false
	}
	d.busy = false

	if msg.Icon == "" {
		d.logger.Error("failed to add app", zap.String("url", msg.URL), zap.Error(msg.Err))
		d.failure = "Could not add the app, try again"
		d.setFocus(d.focus)
		return models.Draft{}, "", false
	}

	draft := d.Values()
	d.Close()
	return draft, msg.Icon, true
}

// Update handles focus changes, typing and the busy spinner
func (d *AddDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.open {
		return nil
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !d.busy {
			return nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if d.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			if d.focus == addFieldName {
				d.setFocus(addFieldURL)
			} else {
				d.setFocus(addFieldName)
			}
			return nil
		}
	}

	var cmd tea.Cmd
	if d.focus == addFieldName {
		d.name, cmd = d.name.Update(msg)
	} else {
		d.url, cmd = d.url.Update(msg)
	}
	return cmd
}

// View renders the dialog
func (d *AddDialog) View() string {
	if !d.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderField("Application Name", d.name.View(), d.errs[validate.FieldName]))
	b.WriteString("\n")
	b.WriteString(renderField("Application URL", d.url.View(), d.errs[validate.FieldURL]))

	if d.failure != "" {
		b.WriteString("\n")
		b.WriteString(ui.RenderNotification("error", d.failure))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if d.busy {
		b.WriteString(d.spinner.View() + ui.LoadingStyle.Render(" Adding..."))
	} else {
		b.WriteString(ui.RenderButton("Cancel", false) + "  " + ui.RenderButton("Add Application", true))
	}
	b.WriteString("\n")

	help := ui.RenderHelpItem("Tab", "next field") + "  " + ui.RenderHelpItem("Enter", "add")
	if !d.busy {
		help += "  " + ui.RenderHelpItem("Esc", "cancel")
	}
	return d.frame(b.String(), help)
}

// renderField renders a labelled input with its inline error
func renderField(label, input, errMsg string) string {
	var b strings.Builder
	b.WriteString(ui.FieldLabelStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(input)
	b.WriteString("\n")
	if errMsg != "" {
		b.WriteString(ui.FieldErrorStyle.Render(errMsg))
		b.WriteString("\n")
	}
	return b.String()
}
