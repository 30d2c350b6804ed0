package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the app
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Escape   key.Binding
	Help     key.Binding
	Quit     key.Binding

	// Registry
	Add    key.Binding // Open the add dialog
	Edit   key.Binding // Edit the selected app's URL
	Remove key.Binding // Remove the app under the cursor
	Clear  key.Binding // Clear the selection

	// App row jumps
	FirstApp key.Binding
	LastApp  key.Binding

	// Viewer
	Refresh      key.Binding // Reload the page, retry after an error
	OpenExternal key.Binding // Open in the browser
	CopyURL      key.Binding // Copy URL to clipboard
	Source       key.Binding // Toggle HTML source
	Prompt       key.Binding // Show the generation prompt
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev app"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next app"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "bottom"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add app"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit url"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove app"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear selection"),
		),
		FirstApp: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "first app"),
		),
		LastApp: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "last app"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh/retry"),
		),
		OpenExternal: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy url"),
		),
		Source: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle source"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prompt"),
		),
	}
}

// ShortHelp returns keybindings to show in short help
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Enter, k.Add, k.Edit, k.Remove, k.Refresh, k.OpenExternal, k.Help, k.Quit}
}

// FullHelp returns all keybindings for full help
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// App row
		{k.Left, k.Right, k.FirstApp, k.LastApp, k.Enter, k.Clear},
		// Registry
		{k.Add, k.Edit, k.Remove, k.Prompt},
		// Viewer
		{k.Refresh, k.OpenExternal, k.CopyURL, k.Source},
		// Scrolling
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		// General
		{k.Tab, k.Escape, k.Help, k.Quit},
	}
}
