// Package shell is the terminal page: the app button row, the viewer and
// the registry dialogs.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"webdeck/internal/launcher"
	"webdeck/internal/logo"
	"webdeck/internal/prompt"
	"webdeck/internal/registry"
	"webdeck/internal/ui"
	"webdeck/internal/ui/components"
	"webdeck/internal/viewer"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Options wires the shell to its collaborators
type Options struct {
	Store    *registry.Store
	Fetcher  viewer.Fetcher
	Browser  launcher.Browser
	Resolver *logo.Resolver
	BasePath string
	Version  string
	Logger   *zap.Logger
}

// storeChangedMsg is sent after any registry mutation
type storeChangedMsg struct{}

// Model is the bubbletea model of the terminal shell
type Model struct {
	store    *registry.Store
	basePath string
	version  string
	logger   *zap.Logger

	viewer  *viewer.Viewer
	appList *components.AppList
	add     *components.AddDialog
	edit    *components.EditDialog
	prompt  *components.PromptDialog

	keys     ui.KeyMap
	help     help.Model
	showHelp bool

	status    string
	statusErr bool

	changes     chan struct{}
	unsubscribe func()

	width  int
	height int
}

// New creates the shell model
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = registry.New(registry.Seed(), logger)
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = logo.New(logo.DefaultDelay, logger)
	}

	m := &Model{
		store:    store,
		basePath: opts.BasePath,
		version:  opts.Version,
		logger:   logger,
		viewer:   viewer.New(opts.Fetcher, opts.Browser, logger),
		appList:  components.NewAppList(store.Apps()),
		add:      components.NewAddDialog(resolver, logger),
		edit:     components.NewEditDialog(),
		prompt:   components.NewPromptDialog(prompt.Title, prompt.Markdown()),
		keys:     ui.DefaultKeyMap(),
		help:     help.New(),
		status:   "Ready",
		changes:  make(chan struct{}, 1),
		width:    100,
		height:   30,
	}

	m.unsubscribe = store.Subscribe(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.updateSizes()
	return m
}

// Init starts listening for registry changes and shows the initial selection
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.sync())
}

func (m *Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return storeChangedMsg{}
	}
}

// sync copies registry state into the app row and the viewer
func (m *Model) sync() tea.Cmd {
	m.appList.SetApps(m.store.Apps())
	selected := m.store.Selected()
	m.appList.SetSelected(selected)
	return m.viewer.SetURL(selected)
}

// Close releases the registry subscription
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case storeChangedMsg:
		cmds = append(cmds, m.sync(), m.waitForChange())

	case logo.ResolvedMsg:
		draft, icon, ok := m.add.Complete(msg)
		if !ok {
			if msg.Icon == "" && m.add.IsOpen() && !m.add.IsBusy() {
				m.setError("Could not add " + m.add.Values().Name)
			}
			break
		}
		app := m.store.Add(draft.Name, draft.URL, logo.WithBase(m.basePath, icon))
		m.store.CloseDialog()
		cmds = append(cmds, m.sync())
		m.appList.GoToLast()
		m.setStatus("✓ Added " + app.Name)

	case spinner.TickMsg:
		cmds = append(cmds, m.viewer.Update(msg), m.add.Update(msg))

	case viewer.LoadedMsg, viewer.FailedMsg:
		cmds = append(cmds, m.viewer.Update(msg))
		if msg, ok := msg.(viewer.FailedMsg); ok && m.viewer.State() == viewer.StateError && m.viewer.Err() == msg.Err {
			m.setError("Failed to load " + msg.URL)
		}

	case viewer.CopiedMsg:
		if msg.Err != nil {
			m.setError("Copy failed: " + msg.Err.Error())
		} else {
			m.setStatus("✓ Copied " + msg.URL)
		}

	case launcher.OpenedMsg:
		if msg.Err != nil {
			m.logger.Warn("open in browser failed", zap.String("url", msg.URL), zap.Error(msg.Err))
			m.setError("Could not open browser: " + msg.Err.Error())
		} else {
			m.setStatus("✓ Opened " + msg.URL)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch dialog, _ := m.store.Dialog(); dialog {
	case registry.DialogAdd:
		return m.handleAddKeys(msg)
	case registry.DialogEdit:
		return m.handleEditKeys(msg)
	case registry.DialogPrompt:
		return m.handlePromptKeys(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Escape, m.keys.Help, m.keys.Quit) {
			m.showHelp = false
			m.help.ShowAll = false
			m.updateSizes()
		}
		return m, nil
	}

	return m.handleMainKeys(msg)
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.help.ShowAll = true
		m.updateSizes()

	case key.Matches(msg, m.keys.Left):
		m.appList.MoveLeft()

	case key.Matches(msg, m.keys.Right):
		m.appList.MoveRight()

	case key.Matches(msg, m.keys.FirstApp):
		m.appList.GoToFirst()

	case key.Matches(msg, m.keys.LastApp):
		m.appList.GoToLast()

	case key.Matches(msg, m.keys.Tab):
		m.appList.MoveRight()
		return m, m.selectCursor()

	case key.Matches(msg, m.keys.ShiftTab):
		m.appList.MoveLeft()
		return m, m.selectCursor()

	case key.Matches(msg, m.keys.Enter):
		return m, m.selectCursor()

	case key.Matches(msg, m.keys.Clear):
		m.store.Select(nil)
		m.setStatus("Selection cleared")
		return m, m.sync()

	case key.Matches(msg, m.keys.Up):
		m.viewer.ScrollUp()
	case key.Matches(msg, m.keys.Down):
		m.viewer.ScrollDown()
	case key.Matches(msg, m.keys.PageUp):
		m.viewer.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewer.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.viewer.GoToTop()
	case key.Matches(msg, m.keys.End):
		m.viewer.GoToBottom()

	case key.Matches(msg, m.keys.Add):
		m.store.OpenDialog(registry.DialogAdd, "")
		return m, m.add.Open()

	case key.Matches(msg, m.keys.Edit):
		return m, m.openEdit()

	case key.Matches(msg, m.keys.Remove):
		return m, m.removeCursor()

	case key.Matches(msg, m.keys.Refresh):
		if m.viewer.State() == viewer.StateError {
			return m, m.viewer.Retry()
		}
		return m, m.viewer.Refresh()

	case key.Matches(msg, m.keys.OpenExternal):
		return m, m.viewer.OpenExternal()

	case key.Matches(msg, m.keys.CopyURL):
		return m, m.viewer.CopyURL()

	case key.Matches(msg, m.keys.Source):
		m.viewer.ToggleSource()
		if m.viewer.ShowingSource() {
			m.setStatus("Showing page source")
		} else {
			m.setStatus("Showing rendered page")
		}

	case key.Matches(msg, m.keys.Prompt):
		m.store.OpenDialog(registry.DialogPrompt, "")
		m.prompt.SetSize(m.width, m.height)
		m.prompt.Open()
	}

	return m, nil
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeDialog()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m, m.add.Submit()
	}
	return m, m.add.Update(msg)
}

func (m *Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeDialog()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		id, patch, ok := m.edit.Submit()
		if !ok {
			return m, nil
		}
		m.store.Update(id, patch)
		m.store.CloseDialog()
		m.setStatus("✓ URL updated")
		return m, m.sync()
	}
	return m, m.edit.Update(msg)
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape, m.keys.Quit, m.keys.Prompt) {
		m.closeDialog()
		return m, nil
	}
	return m, m.prompt.Update(msg)
}

// closeDialog dismisses the open dialog unless it is busy
func (m *Model) closeDialog() bool {
	var closed bool
	switch dialog, _ := m.store.Dialog(); dialog {
	case registry.DialogAdd:
		closed = m.add.BackdropDismiss()
	case registry.DialogEdit:
		closed = m.edit.BackdropDismiss()
	case registry.DialogPrompt:
		closed = m.prompt.BackdropDismiss()
	default:
		return false
	}
	if closed {
		m.store.CloseDialog()
	}
	return closed
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	dialog, _ := m.store.Dialog()
	if dialog == registry.DialogNone {
		return m, m.viewer.Update(msg)
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !m.insideDialog(msg.X, msg.Y) {
		m.closeDialog()
		return m, nil
	}
	if dialog == registry.DialogPrompt {
		return m, m.prompt.Update(msg)
	}
	return m, nil
}

// insideDialog reports whether x, y falls on the centered dialog box
func (m *Model) insideDialog(x, y int) bool {
	view := m.dialogView()
	w, h := lipgloss.Width(view), lipgloss.Height(view)
	left := (m.width - w) / 2
	top := (m.height - h) / 2
	return x >= left && x < left+w && y >= top && y < top+h
}

func (m *Model) selectCursor() tea.Cmd {
	app, ok := m.appList.Current()
	if !ok {
		return nil
	}
	url := app.URL
	m.store.Select(&url)
	m.setStatus("Viewing " + app.Name)
	return m.sync()
}

func (m *Model) openEdit() tea.Cmd {
	if !m.viewer.CanEdit() {
		m.setError("Select an app to edit its URL")
		return nil
	}
	app, ok := m.store.SelectedApp()
	if !ok {
		m.setError("The selected URL no longer belongs to an app")
		return nil
	}
	m.store.OpenDialog(registry.DialogEdit, app.ID)
	return m.edit.Open(app)
}

func (m *Model) removeCursor() tea.Cmd {
	app, ok := m.appList.Current()
	if !ok {
		return nil
	}
	if err := m.store.RemoveChecked(app.ID); err != nil {
		if !errors.Is(err, registry.ErrDefaultApp) {
			m.logger.Debug("remove ignored", zap.String("id", app.ID), zap.Error(err))
		}
		m.setError(err.Error())
		return nil
	}
	m.setStatus("✓ Removed " + app.Name)
	return m.sync()
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// Status returns the status bar message
func (m *Model) Status() string {
	return m.status
}

func (m *Model) updateSizes() {
	m.appList.Width = max(20, m.width-4)
	m.help.Width = m.width

	// header 2, app row 4, status 2, help bar
	helpHeight := 1
	if m.showHelp {
		helpHeight = 7
	}
	m.viewer.SetSize(max(20, m.width-2), max(8, m.height-8-helpHeight))
	m.prompt.SetSize(m.width, m.height)
}

// View renders the shell
func (m *Model) View() string {
	if view := m.dialogView(); view != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.appList.View())
	b.WriteString("\n")
	b.WriteString(m.viewer.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(ui.HelpBarStyle.Render(m.help.View(m.keys)))

	return ui.AppStyle.Render(b.String())
}

func (m *Model) dialogView() string {
	switch dialog, _ := m.store.Dialog(); dialog {
	case registry.DialogAdd:
		return m.add.View()
	case registry.DialogEdit:
		return m.edit.View()
	case registry.DialogPrompt:
		return m.prompt.View()
	}
	return ""
}

func (m *Model) renderHeader() string {
	title := ui.TitleStyle.Render("◆ webdeck")
	ver := ""
	if m.version != "" {
		ver = "  " + ui.VersionStyle.Render("v"+m.version)
	}
	hint := ui.MutedStyle.Render("  " + ui.RenderHelpItem("p", prompt.Title))
	return ui.HeaderStyle.Render(title + ver + hint)
}

func (m *Model) renderStatusBar() string {
	styledStatus := ui.StatusTextStyle.Render(m.status)
	switch {
	case m.statusErr:
		styledStatus = ui.RenderNotification("error", m.status)
	case strings.HasPrefix(m.status, "✓"):
		styledStatus = ui.RenderNotification("success", strings.TrimPrefix(m.status, "✓ "))
	}

	stats := []string{
		fmt.Sprintf("Apps: %d", m.store.Len()),
		"Viewer: " + m.viewer.State().String(),
	}
	return ui.StatusBarStyle.Render(styledStatus + "  •  " + strings.Join(stats, "  •  "))
}
