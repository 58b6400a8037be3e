package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/forms"
	"budget/internal/imageres"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/store"
	appweb "budget/web"
)

// ImageResolver is what the handlers need from imageres.Resolver.
type ImageResolver interface {
	Fetch(ctx context.Context, raw string) (imageres.Image, error)
	RandomImage(ctx context.Context) (imageres.RemoteImage, error)
}

// Options tunes NewServer. Zero values are usable.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Today returns the default date of a new item.
	Today func() core.Date
}

type Server struct {
	http.Server
	pages    map[string]*template.Template
	items    store.Store
	forms    *forms.Sessions
	images   ImageResolver
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
	today    func() core.Date
	started  time.Time

	shutdownOnce sync.Once
}

var pageFiles = []string{"list.html", "form.html", "detail.html", "error.html"}

// parsePages builds one template set per page on top of the shared layout.
func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t, err := template.New(page).ParseFS(fsys, "templates/layout.html", "templates/partials.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		pages[page] = t
	}
	return pages, nil
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, items store.Store, sessions *forms.Sessions, images ImageResolver, opts Options) (*Server, error) {
	if items == nil || sessions == nil || images == nil {
		return nil, errors.New("http server: store, sessions and image resolver are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Today == nil {
		opts.Today = core.Today
	}

	pages, err := parsePages(appweb.TemplatesFS)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pages:    pages,
		items:    items,
		forms:    sessions,
		images:   images,
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		today:    opts.Today,
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleList)
	mux.HandleFunc("GET /items/new", s.handleNewForm)
	mux.HandleFunc("POST /items", s.handleCreate)
	mux.HandleFunc("GET /items/{id}", s.handleDetail)
	mux.HandleFunc("GET /items/{id}/edit", s.handleEditForm)
	mux.HandleFunc("POST /items/{id}", s.handleUpdate)
	mux.HandleFunc("POST /items/{id}/delete", s.handleDelete)
	mux.HandleFunc("POST /items/delete", s.handleRemoveAt)
	mux.HandleFunc("POST /items/move", s.handleMove)
	mux.HandleFunc("POST /forms/{session}/close", s.handleCloseForm)
	mux.HandleFunc("POST /forms/{session}/random-image", s.handleRandomImage)
	mux.HandleFunc("GET /images", s.handleImage)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Trop de requêtes, réessayez dans un instant").Write(w)
	}

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s, nil
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// rate limiter janitor. Form sessions are owned by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes the named template of a page. name is "page" for a full
// document or a fragment defined by the page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, name string, data any) {
	t, ok := s.pages[page]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Unknown page", "template", page)
		InternalServerError("Erreur interne").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).
			ErrorContext(r.Context(), "Template execution failed", applog.FieldError, err, "template", page+"/"+name)
		InternalServerError("Erreur d'affichage").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ErrorPage backs error.html.
type ErrorPage struct {
	Title   string
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isHTMX(r) {
		ErrorResponse(status, message).Write(w)
		return
	}
	s.render(w, r, status, "error.html", "page", ErrorPage{Title: http.StatusText(status), Message: message})
}

// redirect sends the browser to target: HX-Redirect for htmx, 303 otherwise.
// A non-empty op also announces the list change.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target, op string) {
	if isHTMX(r) {
		b := NewHTMXResponse().Redirect(target)
		if op != "" {
			b.TriggerItemsChanged(op)
		}
		b.Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
