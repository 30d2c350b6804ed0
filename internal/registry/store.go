package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"webdeck/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no app has the given id
	ErrNotFound = errors.New("app not found")
	// ErrDefaultApp is returned when removing a seeded app
	ErrDefaultApp = errors.New("default apps cannot be removed")
)

// Dialog identifies which registry-editing dialog is open
type Dialog int

const (
	DialogNone Dialog = iota
	DialogAdd
	DialogEdit
	DialogPrompt
)

// String returns the dialog name
func (d Dialog) String() string {
	switch d {
	case DialogAdd:
		return "add"
	case DialogEdit:
		return "edit"
	case DialogPrompt:
		return "prompt"
	default:
		return "none"
	}
}

// Store holds the registered apps, the current selection and the open
// dialog. The selection is tracked by URL value, not by id: two apps
// sharing a URL are indistinguishable to it.
type Store struct {
	mu         sync.RWMutex
	apps       []models.App
	selected   *string
	dialog     Dialog
	editTarget string

	observers map[int]func()
	nextObs   int

	now    func() time.Time
	logger *zap.Logger
}

// New creates a store seeded with the given apps
func New(seed []models.App, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	apps := make([]models.App, len(seed))
	copy(apps, seed)
	return &Store{
		apps:      apps,
		observers: make(map[int]func()),
		now:       time.Now,
		logger:    logger,
	}
}

// Subscribe registers fn to be called after every mutation.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// notify must be called without holding the lock
func (s *Store) notify() {
	s.mu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Apps returns a copy of the apps in display order
func (s *Store) Apps() []models.App {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.App, len(s.apps))
	copy(out, s.apps)
	return out
}

// Len returns the number of apps
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apps)
}

// Get returns the app with the given id
func (s *Store) Get(id string) (models.App, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.apps[i], true
	}
	return models.App{}, false
}

func (s *Store) indexOf(id string) int {
	for i := range s.apps {
		if s.apps[i].ID == id {
			return i
		}
	}
	return -1
}

// Selected returns the selected URL, or nil
func (s *Store) Selected() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	url := *s.selected
	return &url
}

// SelectedApp returns the first app whose URL equals the selection
func (s *Store) SelectedApp() (models.App, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return models.App{}, false
	}
	for _, a := range s.apps {
		if a.URL == *s.selected {
			return a, true
		}
	}
	return models.App{}, false
}

// Select sets the selection to url, or clears it when url is nil.
// The URL is not required to belong to any app.
func (s *Store) Select(url *string) {
	s.mu.Lock()
	if url == nil {
		s.selected = nil
	} else {
		v := *url
		s.selected = &v
	}
	s.mu.Unlock()

	s.logger.Debug("select", zap.Stringp("url", url))
	s.notify()
}

// Add appends a new non-default app and returns it. Name and URL are
// not validated and duplicates are allowed.
func (s *Store) Add(name, url, icon string) models.App {
	s.mu.Lock()
	app := models.App{
		ID:   s.freshID(),
		Name: name,
		URL:  url,
		Icon: icon,
	}
	s.apps = append(s.apps, app)
	s.mu.Unlock()

	s.logger.Debug("app added", zap.String("id", app.ID), zap.String("url", url))
	s.notify()
	return app
}

// freshID must be called with the lock held
func (s *Store) freshID() string {
	for {
		id := NewID(s.now())
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// Remove deletes the app with the given id. Unknown ids and default
// apps are ignored.
func (s *Store) Remove(id string) {
	_ = s.RemoveChecked(id)
}

// RemoveChecked is Remove that reports why nothing was removed
func (s *Store) RemoveChecked(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	if s.apps[i].IsDefault {
		s.mu.Unlock()
		return ErrDefaultApp
	}
	s.apps = append(s.apps[:i:i], s.apps[i+1:]...)
	s.mu.Unlock()

	s.logger.Debug("app removed", zap.String("id", id))
	s.notify()
	return nil
}

// Update merges patch into the app with the given id. When that app is
// the selected one and its URL changes, the selection follows it.
func (s *Store) Update(id string, patch models.Patch) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	old := s.apps[i]
	updated := patch.Apply(old)
	s.apps[i] = updated
	if patch.URL != nil && s.selected != nil && *s.selected == old.URL {
		v := updated.URL
		s.selected = &v
	}
	s.mu.Unlock()

	s.logger.Debug("app updated", zap.String("id", id), zap.String("url", updated.URL))
	s.notify()
}

// Dialog returns the open dialog and, for DialogEdit, the target id
func (s *Store) Dialog() (Dialog, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialog, s.editTarget
}

// OpenDialog marks a dialog as open. target is only used by DialogEdit.
func (s *Store) OpenDialog(d Dialog, target string) {
	s.mu.Lock()
	s.dialog = d
	s.editTarget = ""
	if d == DialogEdit {
		s.editTarget = target
	}
	s.mu.Unlock()
	s.notify()
}

// CloseDialog closes whichever dialog is open
func (s *Store) CloseDialog() {
	s.OpenDialog(DialogNone, "")
}
