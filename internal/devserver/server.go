// Package devserver serves a demo admin shell for developing the navigation
// engine: full pages for ordinary requests, bare content fragments for
// requests carrying the AJAX header, and the avatar upload endpoint.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
)

// Server is the development fragment server.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	pages    []Page
	sections []Section
	regionID string
	csrf     string

	mu      sync.RWMutex
	avatars map[string]storedAvatar
	current string

	router     chi.Router
	httpServer *http.Server
}

type storedAvatar struct {
	contentType string
	data        []byte
}

// Option configures a Server.
type Option func(*Server)

// WithPages replaces the demo pages and sections.
func WithPages(pages []Page, sections []Section) Option {
	return func(s *Server) {
		s.pages = pages
		s.sections = sections
	}
}

// WithCSRFToken fixes the CSRF token instead of generating one per process.
func WithCSRFToken(token string) Option {
	return func(s *Server) { s.csrf = token }
}

// New creates a Server. The content region selector must be an id selector
// so fragments can be cut out of rendered pages.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	region := strings.TrimSpace(cfg.Content.Region)
	if !strings.HasPrefix(region, "#") || strings.ContainsAny(region[1:], " .#[:,>") {
		return nil, fmt.Errorf("content.region %q must be a single id selector", cfg.Content.Region)
	}

	s := &Server{
		cfg:      cfg,
		logger:   console.OrNop(logger).Named("devserver"),
		pages:    DefaultPages,
		sections: DefaultSections,
		regionID: region[1:],
		csrf:     fmt.Sprintf("dev-%d", time.Now().UnixNano()),
		avatars:  make(map[string]storedAvatar),
		current:  "/static/avatar.png",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post(s.cfg.Avatar.Endpoint, s.handleUpload)
	r.Get("/media/avatars/{name}", s.handleAvatar)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Server.StaticDir))))

	for _, p := range s.pages {
		r.Get(p.Path, s.handlePage(p))
	}
	r.NotFound(s.handleNotFound)
	return r
}

// requestLogger logs each request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Bool("fragment", s.isFragmentRequest(r)),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// CSRFToken returns the token the upload endpoint expects.
func (s *Server) CSRFToken() string { return s.csrf }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Server.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) isFragmentRequest(r *http.Request) bool {
	return r.Header.Get(s.cfg.Request.Header) == s.cfg.Request.HeaderValue
}

func (s *Server) handlePage(p Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serve(w, r, p)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, Page{
		Path:   r.URL.Path,
		Title:  "Not found",
		Body:   "<h1>Page not found</h1>",
		Status: http.StatusNotFound,
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, p Page) {
	page, err := s.render(p)
	if err != nil {
		s.logger.Error("rendering page", zap.String("path", p.Path), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	body := page
	if s.isFragmentRequest(r) {
		fragment, err := s.extractFragment(page)
		if err != nil {
			s.logger.Error("extracting fragment", zap.String("path", p.Path), zap.Error(err))
			http.Error(w, "fragment extraction failed", http.StatusInternalServerError)
			return
		}
		body = []byte(fragment)
	}

	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	if !s.isFragmentRequest(r) {
		http.SetCookie(w, &http.Cookie{Name: s.cfg.Avatar.CSRFCookie, Value: s.csrf, Path: "/"})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", s.cfg.Request.Header)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// render executes the shell with p as the current page.
func (s *Server) render(p Page) ([]byte, error) {
	view := shellView{
		Current:   p,
		RegionID:  s.regionID,
		CSRF:      s.csrf,
		AvatarURL: s.avatarURL(),
	}
	bySection := make(map[string][]Page)
	for _, pg := range s.pages {
		if pg.Section == "" {
			view.Links = append(view.Links, pg)
			continue
		}
		bySection[pg.Section] = append(bySection[pg.Section], pg)
	}
	for _, sec := range s.sections {
		sv := sectionView{Section: sec, Pages: bySection[sec.Name]}
		for _, pg := range sv.Pages {
			if pg.Path == p.Path {
				sv.Open = true
			}
		}
		view.Sections = append(view.Sections, sv)
	}

	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// extractFragment returns the inner HTML of the content region of page.
func (s *Server) extractFragment(page []byte) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}
	node, err := htmlquery.Query(doc, fmt.Sprintf("//*[@id=%q]", s.regionID))
	if err != nil {
		return "", fmt.Errorf("querying region: %w", err)
	}
	if node == nil {
		return "", fmt.Errorf("region #%s not found", s.regionID)
	}
	return htmlquery.OutputHTML(node, false), nil
}

func (s *Server) avatarURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
