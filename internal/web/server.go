package web

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/vbonduro/fridgechef/internal/config"
	"github.com/vbonduro/fridgechef/internal/service"
)

const missingCredentialMessage = "API Key not found! Please check your .env file."

type Server struct {
	service   *service.ChefService
	setupErr  error
	templates fs.FS
	markdown  goldmark.Markdown
	mux       *http.ServeMux
	logger    *slog.Logger
}

// NewServer builds the page server. A non-nil setupErr puts the server in a
// degraded mode: the page shows the error and cook requests are answered
// with it without touching svc.
func NewServer(svc *service.ChefService, setupErr error, tmpl fs.FS, logger *slog.Logger) *Server {
	s := &Server{
		service:   svc,
		setupErr:  setupErr,
		templates: tmpl,
		markdown:  goldmark.New(),
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /cook", s.handleCook)
	s.mux.HandleFunc("POST /cook/stream", s.handleCookStream)
}

// setupMessage is the user-facing text for setupErr, or "" when healthy.
func (s *Server) setupMessage() string {
	if s.setupErr == nil {
		return ""
	}
	if errors.Is(s.setupErr, config.ErrMissingCredential) {
		return missingCredentialMessage
	}
	return s.setupErr.Error()
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: blob:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE responses streaming through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		// Two sequential model calls can take minutes on large photos.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// resultFiles is the "result" fragment and the partials it includes.
var resultFiles = []string{
	"partials/result.html",
	"partials/ingredients.html",
	"partials/recipes.html",
	"partials/error.html",
}

// pageFiles is the template set for the single page.
var pageFiles = append([]string{"base.html", "pages/index.html"}, resultFiles...)

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses and executes a single named partial template into w.
// The file must contain exactly one {{define "name"}}...{{end}} block.
func (s *Server) renderPartial(w io.Writer, file string, data any) error {
	tmpl, err := template.New("").ParseFS(s.templates, file)
	if err != nil {
		return err
	}
	// ParseFS registers both the file-basename template and any {{define}} blocks.
	// Find the {{define}} template: it is the one whose name is neither "" nor
	// the file basename.
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	// Fallback: execute the file-basename template (no {{define}} blocks found).
	return tmpl.ExecuteTemplate(w, basename, data)
}

// renderResult executes the "result" fragment, which pulls in the other
// partials and so cannot go through renderPartial.
func (s *Server) renderResult(w http.ResponseWriter, view *resultView) error {
	tmpl, err := template.New("").ParseFS(s.templates, resultFiles...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "result", view)
}

// renderPartialString renders a partial into a string for embedding in SSE
// payloads.
func (s *Server) renderPartialString(file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.renderPartial(&buf, file, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderMarkdown converts model output to HTML. Raw HTML in the source is
// omitted by goldmark's default renderer.
func (s *Server) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
