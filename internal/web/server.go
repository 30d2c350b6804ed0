// Package web serves the shell as an HTML page whose viewer is a
// sandboxed iframe.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"webdeck/internal/logo"
	"webdeck/internal/models"
	"webdeck/internal/prompt"
	"webdeck/internal/registry"
	"webdeck/internal/sandbox"
	"webdeck/internal/validate"
	"webdeck/internal/viewer"

	"go.uber.org/zap"
)

//go:embed templates/page.html
var templateFS embed.FS

//go:embed images/*.svg
var imageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Options configures the server
type Options struct {
	Store    *registry.Store
	Resolver *logo.Resolver
	Policy   sandbox.Policy
	BasePath string
	Logger   *zap.Logger
}

// Server renders the registry and handles its forms
type Server struct {
	store    *registry.Store
	resolver *logo.Resolver
	policy   sandbox.Policy
	base     string
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a server
func New(opts Options) *Server {
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
	policy := opts.Policy
	if policy.IsZero() {
		policy = sandbox.Default()
	}
	return &Server{
		store:    store,
		resolver: resolver,
		policy:   policy,
		base:     strings.TrimRight(opts.BasePath, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// Handler returns the HTTP handler, mounted under the base path
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("POST /apps", s.handleAdd)
	mux.HandleFunc("POST /apps/{id}/url", s.handleEditURL)
	mux.HandleFunc("POST /apps/{id}/delete", s.handleRemove)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	images, _ := fs.Sub(imageFS, "images")
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServerFS(images)))

	var h http.Handler = mux
	if s.base != "" {
		h = http.StripPrefix(s.base, mux)
	}
	return s.logRequests(h)
}

// pageData is the template input
type pageData struct {
	Base            string
	Apps            []appButton
	Selected        string
	FrameURL        string
	Editable        bool
	Now             int64
	Sandbox         string
	Allow           string
	ReferrerPolicy  string
	AllowFullscreen bool
	Notice          string

	Dialog     string
	Draft      models.Draft
	Errors     validate.FieldErrors
	EditTarget models.App

	PromptTitle string
	PromptText  string
}

type appButton struct {
	models.App
	Active bool
}

func (s *Server) page(dialog string) *pageData {
	selected := s.store.Selected()
	data := &pageData{
		Base:            s.base,
		Now:             s.now().UnixMilli(),
		Sandbox:         s.policy.Sandbox(),
		Allow:           s.policy.Allow(),
		ReferrerPolicy:  sandbox.ReferrerPolicy,
		AllowFullscreen: s.policy.AllowFullscreen(),
		PromptTitle:     prompt.Title,
		PromptText:      prompt.Plain(),
	}
	for _, a := range s.store.Apps() {
		a.Icon = logo.WithBase(s.base, a.Icon)
		data.Apps = append(data.Apps, appButton{App: a, Active: selected != nil && *selected == a.URL})
	}
	if selected != nil {
		data.Selected = *selected
		data.FrameURL = *selected
		data.Editable = true
	}

	switch dialog {
	case "add":
		data.Dialog = dialog
	case "edit":
		if app, ok := s.store.SelectedApp(); ok {
			data.Dialog = dialog
			data.EditTarget = app
			data.Draft.URL = app.URL
		}
	case "prompt":
		data.Dialog = dialog
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, status int, data *pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", data); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.base+"/", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := s.page(q.Get("dialog"))
	if reload := q.Get("reload"); reload != "" && data.Selected != "" {
		if ms, err := strconv.ParseInt(reload, 10, 64); err == nil {
			data.FrameURL = viewer.CacheBust(data.Selected, time.UnixMilli(ms))
		}
	}
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		s.store.Select(nil)
	} else {
		s.store.Select(&url)
	}
	s.redirectHome(w, r)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	draft := models.Draft{
		Name: strings.TrimSpace(r.FormValue("name")),
		URL:  strings.TrimSpace(r.FormValue("url")),
	}
	if errs := validate.Draft(draft.Name, draft.URL); errs != nil {
		data := s.page("add")
		data.Draft = draft
		data.Errors = errs
		s.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	icon := s.resolver.Resolve(r.Context(), draft.URL)
	app := s.store.Add(draft.Name, draft.URL, icon)
	s.logger.Info("app added", zap.String("id", app.ID), zap.String("url", app.URL))
	s.redirectHome(w, r)
}

func (s *Server) handleEditURL(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	app, ok := s.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	url := strings.TrimSpace(r.FormValue("url"))
	if err := validate.URL(url); err != nil {
		data := s.page("")
		data.Dialog = "edit"
		data.EditTarget = app
		data.Draft.URL = url
		data.Errors = validate.FieldErrors{validate.FieldURL: err.Error()}
		s.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	s.store.Update(id, models.URLPatch(url))
	s.redirectHome(w, r)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	err := s.store.RemoveChecked(r.PathValue("id"))
	switch {
	case err == nil:
		s.redirectHome(w, r)
	case errors.Is(err, registry.ErrDefaultApp):
		data := s.page("")
		data.Notice = err.Error()
		s.render(w, http.StatusConflict, data)
	default:
		http.NotFound(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", s.now().Sub(start)))
	})
}
