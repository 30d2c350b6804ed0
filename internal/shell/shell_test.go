package shell

import (
	"context"
	"strings"
	"testing"
	"time"

	"webdeck/internal/logo"
	"webdeck/internal/models"
	"webdeck/internal/prompt"
	"webdeck/internal/registry"
	"webdeck/internal/viewer"

	tea "github.com/charmbracelet/bubbletea"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, url string) (*viewer.Page, error) {
	return &viewer.Page{URL: url, Title: "Stub", Text: "stub page", ContentType: "text/html"}, nil
}

type stubBrowser struct{ opened []string }

func (b *stubBrowser) Name() string        { return "stub" }
func (b *stubBrowser) IsInstalled() bool   { return true }
func (b *stubBrowser) Open(u string) error { b.opened = append(b.opened, u); return nil }

func testSeed() []models.App {
	return []models.App{
		{ID: "alpha", Name: "Alpha", URL: "https://alpha.test/", Icon: "/images/default.svg", IsDefault: true},
		{ID: "beta", Name: "Beta", URL: "https://beta.test/", Icon: "/images/default.svg", IsDefault: true},
	}
}

func newTestModel(t *testing.T) (*Model, *registry.Store, *stubBrowser) {
	t.Helper()
	store := registry.New(testSeed(), nil)
	resolver := logo.New(time.Second, nil)
	resolver.Sleep = logo.NoSleep
	browser := &stubBrowser{}

	m := New(Options{
		Store:    store,
		Fetcher:  stubFetcher{},
		Browser:  browser,
		Resolver: resolver,
		BasePath: "/deck",
		Version:  "test",
	})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, store, browser
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and feeds resulting messages back until quiet
func press(m *Model, msg tea.KeyMsg) {
	_, cmd := m.Update(msg)
	drain(m, cmd)
}

func drain(m *Model, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case viewer.LoadedMsg, viewer.FailedMsg, logo.ResolvedMsg, viewer.CopiedMsg:
			_, next := m.Update(msg)
			drain(m, next)
		}
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNew_ShowsSeededApps(t *testing.T) {
	m, _, _ := newTestModel(t)

	view := m.View()
	for _, want := range []string{"webdeck", "Alpha", "Beta", "No app selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
	if m.viewer.State() != viewer.StateIdle {
		t.Errorf("expected idle viewer, got %s", m.viewer.State())
	}
}

func TestSelect_LoadsViewer(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("l"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	sel := store.Selected()
	if sel == nil || *sel != "https://beta.test/" {
		t.Fatalf("expected beta selected, got %v", sel)
	}
	if m.viewer.State() != viewer.StateLoaded {
		t.Errorf("expected loaded viewer, got %s", m.viewer.State())
	}
	if !strings.Contains(m.View(), "stub page") {
		t.Error("expected page text in view")
	}

	press(m, keyRunes("c"))
	if store.Selected() != nil {
		t.Error("clear should reset the selection")
	}
	if m.viewer.State() != viewer.StateIdle {
		t.Errorf("expected idle viewer after clear, got %s", m.viewer.State())
	}
}

func TestRemove_DefaultApp(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("x"))

	if store.Len() != 2 {
		t.Errorf("default app must not be removed, got %d apps", store.Len())
	}
	if m.Status() != registry.ErrDefaultApp.Error() {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestAddFlow(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("a"))
	if d, _ := store.Dialog(); d != registry.DialogAdd {
		t.Fatalf("expected add dialog, got %s", d)
	}

	press(m, keyRunes("Repo"))
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	press(m, keyRunes("https://github.com/golang/go"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if store.Len() != 3 {
		t.Fatalf("expected 3 apps, got %d", store.Len())
	}
	added := store.Apps()[2]
	if added.Name != "Repo" || added.IsDefault {
		t.Errorf("unexpected app %+v", added)
	}
	if added.Icon != "/deck/images/github.svg" {
		t.Errorf("expected base-prefixed icon, got %q", added.Icon)
	}
	if d, _ := store.Dialog(); d != registry.DialogNone {
		t.Errorf("dialog should close, got %s", d)
	}

	press(m, keyRunes("x"))
	if store.Len() != 2 {
		t.Errorf("added app should be removable, got %d apps", store.Len())
	}
}

func TestAddFlow_Invalid(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("a"))
	press(m, keyRunes("Demo"))
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	press(m, keyRunes("bad"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if store.Len() != 2 {
		t.Errorf("invalid draft must not mutate the registry, got %d apps", store.Len())
	}
	if d, _ := store.Dialog(); d != registry.DialogAdd {
		t.Errorf("dialog should stay open, got %s", d)
	}
	if !strings.Contains(m.View(), "Please enter a valid URL") {
		t.Error("expected inline url error")
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if d, _ := store.Dialog(); d != registry.DialogNone {
		t.Errorf("esc should close the dialog, got %s", d)
	}
}

func TestAddFlow_EscRefusedWhileBusy(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("a"))
	press(m, keyRunes("Demo"))
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	press(m, keyRunes("https://demo.test/"))
	_, pending := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if d, _ := store.Dialog(); d != registry.DialogAdd {
		t.Fatalf("dialog must stay open while busy, got %s", d)
	}

	drain(m, pending)
	if store.Len() != 3 {
		t.Errorf("expected the app to be added, got %d apps", store.Len())
	}
}

func TestEditFlow_SelectionFollowsURL(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, keyRunes("e"))
	if d, target := store.Dialog(); d != registry.DialogEdit || target != "alpha" {
		t.Fatalf("expected edit dialog for alpha, got %s %q", d, target)
	}

	m.edit.SetValue("https://alpha2.test/")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	app, _ := store.Get("alpha")
	if app.URL != "https://alpha2.test/" {
		t.Errorf("expected updated url, got %q", app.URL)
	}
	if sel := store.Selected(); sel == nil || *sel != "https://alpha2.test/" {
		t.Errorf("selection should follow the edited url, got %v", sel)
	}
	if u := m.viewer.URL(); u == nil || *u != "https://alpha2.test/" {
		t.Errorf("viewer should show the new url, got %v", u)
	}
}

func TestEdit_RequiresSelection(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("e"))
	if d, _ := store.Dialog(); d != registry.DialogNone {
		t.Errorf("edit needs a selected app, got %s", d)
	}
}

func TestPromptDialog(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("p"))
	if d, _ := store.Dialog(); d != registry.DialogPrompt {
		t.Fatalf("expected prompt dialog, got %s", d)
	}
	if !strings.Contains(m.View(), prompt.Title) {
		t.Error("expected prompt title")
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if d, _ := store.Dialog(); d != registry.DialogNone {
		t.Errorf("expected prompt closed, got %s", d)
	}
}

func TestBackdropClick_ClosesDialog(t *testing.T) {
	m, store, _ := newTestModel(t)
	press(m, keyRunes("p"))

	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if d, _ := store.Dialog(); d != registry.DialogNone {
		t.Errorf("click outside should dismiss, got %s", d)
	}
}

func TestOpenExternal(t *testing.T) {
	m, _, browser := newTestModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.Update(keyRunes("o"))
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}

	if len(browser.opened) != 1 || browser.opened[0] != "https://alpha.test/" {
		t.Errorf("expected alpha opened, got %v", browser.opened)
	}
	if m.viewer.State() != viewer.StateLoaded {
		t.Errorf("viewer state should be unchanged, got %s", m.viewer.State())
	}
	if !strings.Contains(m.Status(), "Opened") {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestStoreSubscription(t *testing.T) {
	m, store, _ := newTestModel(t)

	store.Add("External", "https://external.test/", "/images/default.svg")
	msg := m.waitForChange()()
	if _, ok := msg.(storeChangedMsg); !ok {
		t.Fatalf("expected storeChangedMsg, got %#v", msg)
	}

	m.Update(msg)
	if len(m.appList.Apps) != 3 {
		t.Errorf("app row should reflect the registry, got %d", len(m.appList.Apps))
	}
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(m, keyRunes("?"))
	if !m.showHelp {
		t.Fatal("expected help shown")
	}
	press(m, keyRunes("q"))
	if m.showHelp {
		t.Error("q should close help before quitting")
	}

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppRow_FirstAndLast(t *testing.T) {
	m, store, _ := newTestModel(t)

	press(m, keyRunes("L"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if sel := store.Selected(); sel == nil || *sel != "https://beta.test/" {
		t.Fatalf("expected last app selected, got %v", sel)
	}

	press(m, keyRunes("H"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if sel := store.Selected(); sel == nil || *sel != "https://alpha.test/" {
		t.Errorf("expected first app selected, got %v", sel)
	}
}

func TestSourceToggle_Status(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, keyRunes("s"))
	if m.Status() != "Showing page source" {
		t.Errorf("status = %q", m.Status())
	}
	press(m, keyRunes("s"))
	if m.Status() != "Showing rendered page" {
		t.Errorf("status = %q", m.Status())
	}
}
