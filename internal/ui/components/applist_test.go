package components

import (
	"fmt"
	"strings"
	"testing"

	"webdeck/internal/models"
)

func testApps(n int) []models.App {
	apps := make([]models.App, n)
	for i := range apps {
		apps[i] = models.App{
			ID:   fmt.Sprintf("app%d", i+1),
			Name: fmt.Sprintf("App %d", i+1),
			URL:  fmt.Sprintf("https://app%d.test/", i+1),
		}
	}
	return apps
}

func TestNewAppList(t *testing.T) {
	list := NewAppList(testApps(2))

	if list == nil {
		t.Fatal("NewAppList should return an AppList")
	}
	if len(list.Apps) != 2 {
		t.Errorf("Expected 2 apps, got %d", len(list.Apps))
	}
	if list.Cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", list.Cursor)
	}
	if !list.Focused {
		t.Error("Expected Focused to be true")
	}
	if list.Title == "" {
		t.Error("Expected Title to be set")
	}
}

func TestAppList_SetApps(t *testing.T) {
	list := NewAppList(nil)
	list.Cursor = 5

	list.SetApps(testApps(2))

	if len(list.Apps) != 2 {
		t.Errorf("Expected 2 apps, got %d", len(list.Apps))
	}
	if list.Cursor != 1 {
		t.Errorf("Cursor should be clamped to 1, got %d", list.Cursor)
	}

	list.SetApps(nil)
	if list.Cursor != 0 {
		t.Errorf("Cursor should be 0 for empty list, got %d", list.Cursor)
	}
}

func TestAppList_MoveLeftRight(t *testing.T) {
	list := NewAppList(testApps(3))

	list.MoveLeft()
	if list.Cursor != 0 {
		t.Errorf("Expected cursor to stay at 0, got %d", list.Cursor)
	}

	list.MoveRight()
	list.MoveRight()
	if list.Cursor != 2 {
		t.Errorf("Expected cursor at 2, got %d", list.Cursor)
	}

	list.MoveRight()
	if list.Cursor != 2 {
		t.Errorf("Expected cursor to stay at 2, got %d", list.Cursor)
	}

	list.MoveLeft()
	if list.Cursor != 1 {
		t.Errorf("Expected cursor at 1, got %d", list.Cursor)
	}
}

func TestAppList_GoToFirstLast(t *testing.T) {
	list := NewAppList(testApps(5))

	list.GoToLast()
	if list.Cursor != 4 {
		t.Errorf("Expected cursor at 4, got %d", list.Cursor)
	}
	list.GoToFirst()
	if list.Cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", list.Cursor)
	}

	empty := NewAppList(nil)
	empty.GoToLast()
	if empty.Cursor != 0 {
		t.Errorf("Expected cursor at 0 for empty list, got %d", empty.Cursor)
	}
}

func TestAppList_Current(t *testing.T) {
	list := NewAppList(testApps(3))
	list.Cursor = 1

	app, ok := list.Current()
	if !ok || app.ID != "app2" {
		t.Errorf("Expected app2, got %+v (ok=%v)", app, ok)
	}

	if _, ok := NewAppList(nil).Current(); ok {
		t.Error("Current should report false for empty list")
	}
}

func TestAppList_SetSelected(t *testing.T) {
	apps := testApps(2)
	list := NewAppList(apps)

	url := apps[1].URL
	list.SetSelected(&url)
	url = "changed"

	if !list.IsActive(apps[1]) {
		t.Error("Expected app2 to be active")
	}
	if list.IsActive(apps[0]) {
		t.Error("Expected app1 to be inactive")
	}

	list.SetSelected(nil)
	if list.IsActive(apps[1]) {
		t.Error("Expected no active app after clearing selection")
	}
}

func TestAppList_View(t *testing.T) {
	list := NewAppList(testApps(3))

	view := list.View()
	if view == "" {
		t.Fatal("View should not be empty")
	}
	for _, name := range []string{"App 1", "App 2", "App 3", "Apps (3)"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should contain %q", name)
		}
	}
}

func TestAppList_View_Empty(t *testing.T) {
	view := NewAppList(nil).View()
	if !strings.Contains(view, "No apps") {
		t.Error("Empty view should show placeholder")
	}
}

func TestAppList_View_Scrolling(t *testing.T) {
	list := NewAppList(testApps(30))
	list.Width = 60
	list.GoToLast()

	view := list.View()
	if !strings.Contains(view, "App 30") {
		t.Error("View should keep the cursor button visible")
	}
	if strings.Contains(view, "App 1 ") {
		t.Error("View should scroll past the first buttons")
	}
	if !strings.Contains(view, "‹") {
		t.Error("View should show a scroll marker")
	}
}

func TestIconGlyph(t *testing.T) {
	tests := []struct {
		icon string
		want string
	}{
		{"", "◆"},
		{"/images/default.svg", "◆"},
		{"/images/github.svg", "G"},
		{"/base/images/notion.svg", "N"},
	}

	for _, tt := range tests {
		if got := iconGlyph(models.App{Icon: tt.icon}); got != tt.want {
			t.Errorf("iconGlyph(%q) = %q, want %q", tt.icon, got, tt.want)
		}
	}
}
