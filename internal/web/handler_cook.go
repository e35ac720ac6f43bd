package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/vbonduro/fridgechef/internal/service"
)

// statusMessages are the progress lines shown while a stage is running.
var statusMessages = map[service.Stage]string{
	service.StageExtract:  "👀 Chef is looking at fridge...",
	service.StageGenerate: "🧑‍🍳 Chef is thinking (By going creative)...",
}

// resultView is what the result partials render. Any subset may be set:
// a generation failure carries both Ingredients and Error.
type resultView struct {
	// Extracted is set once the vision step succeeded, even with empty text.
	Extracted   bool
	Ingredients string
	FormatNote  bool
	Recipes     string
	RecipesHTML template.HTML
	Error       string
}

type pageData struct {
	SetupError string
	Result     *resultView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, pageData{SetupError: s.setupMessage()}, pageFiles...); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleCook runs the whole chain and renders the page with the result. It
// serves browsers without JavaScript and HTMX clients; the page script uses
// handleCookStream.
func (s *Server) handleCook(w http.ResponseWriter, r *http.Request) {
	if msg := s.setupMessage(); msg != "" {
		s.logger.Warn("cook refused", "reason", msg)
		s.renderCookResult(w, r, &resultView{Error: msg})
		return
	}

	imageData, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, err := s.service.Cook(r.Context(), imageData)
	s.renderCookResult(w, r, s.newResultView(res, err))
}

func (s *Server) renderCookResult(w http.ResponseWriter, r *http.Request, view *resultView) {
	// HTMX partial update: return only the result fragment.
	if r.Header.Get("HX-Request") == "true" {
		if err := s.renderResult(w, view); err != nil {
			s.logger.Error("render result failed", "error", err)
		}
		return
	}

	data := pageData{SetupError: s.setupMessage(), Result: view}
	if err := s.renderPage(w, data, pageFiles...); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) newResultView(res *service.Result, err error) *resultView {
	view := &resultView{}
	if res != nil {
		view.Extracted = true
		view.Ingredients = res.Ingredients
		view.FormatNote = res.FormatNote
		view.Recipes = res.Recipes
		if res.Recipes != "" {
			view.RecipesHTML = s.markdownOrEmpty(res.Recipes)
		}
	}
	if err != nil {
		view.Error = err.Error()
	}
	return view
}

// markdownOrEmpty renders src, returning "" (and logging) on failure so the
// template falls back to the raw text.
func (s *Server) markdownOrEmpty(src string) template.HTML {
	html, err := s.renderMarkdown(src)
	if err != nil {
		s.logger.Error("render markdown failed", "error", err)
		return ""
	}
	return html
}

// sseData is the JSON payload of every stream event.
type sseData struct {
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// handleCookStream accepts the same multipart form as handleCook but responds
// with an SSE stream of status, ingredients, recipes and error events. The
// stream ends with a "done" event.
func (s *Server) handleCookStream(w http.ResponseWriter, r *http.Request) {
	if msg := s.setupMessage(); msg != "" {
		s.logger.Warn("cook stream refused", "reason", msg)
		html, err := s.renderPartialString("partials/error.html", &resultView{Error: msg})
		if err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		startEventStream(w)
		_ = writeEvent(w, "error", sseData{Message: msg, HTML: html})
		_ = writeEvent(w, "done", sseData{})
		return
	}

	imageData, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	// Use a detached context so an issued model call runs to completion even
	// if the client navigates away and the request context is cancelled.
	events := s.service.CookStream(context.WithoutCancel(r.Context()), imageData)

	startEventStream(w)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for ev := range events {
		if r.Context().Err() != nil {
			return
		}
		name, data, err := s.eventData(ev)
		if err != nil {
			s.logger.Error("render stream event failed", "event", ev.Type, "error", err)
			continue
		}
		if err := writeEvent(w, name, data); err != nil {
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}

	if err := writeEvent(w, "done", sseData{}); err != nil {
		s.logger.Error("write done event failed", "error", err)
	}
	if canFlush {
		flusher.Flush()
	}
}

func (s *Server) eventData(ev service.Event) (string, sseData, error) {
	data := sseData{Stage: string(ev.Stage)}
	var err error
	switch ev.Type {
	case service.EventStatus:
		data.Message = statusMessages[ev.Stage]
	case service.EventIngredients:
		data.Text = ev.Ingredients
		data.HTML, err = s.renderPartialString("partials/ingredients.html",
			&resultView{Extracted: true, Ingredients: ev.Ingredients, FormatNote: ev.FormatNote})
	case service.EventRecipes:
		data.Text = ev.Recipes
		data.HTML, err = s.renderPartialString("partials/recipes.html",
			&resultView{Recipes: ev.Recipes, RecipesHTML: s.markdownOrEmpty(ev.Recipes)})
	case service.EventError:
		data.Message = ev.Err.Error()
		data.HTML, err = s.renderPartialString("partials/error.html", &resultView{Error: data.Message})
	default:
		return "", data, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return string(ev.Type), data, err
}

func startEventStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
}

// writeEvent writes one named SSE event with a JSON data line.
func writeEvent(w io.Writer, name string, data sseData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
