package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/canon/internal/accessibility"
	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
	"github.com/conneroisu/canon/internal/validation"
)

// Action is a user interaction replayed on the live document.
type Action struct {
	// Type is one of click, keydown, input, focus.
	Type     string `json:"type"`
	Selector string `json:"selector"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value,omitempty"`
}

// BehaviorsResponse describes the registered behaviors.
type BehaviorsResponse struct {
	Markers     []string `json:"markers"`
	ActiveRoots int      `json:"active_roots"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var page string
	if err := s.do(r.Context(), func(doc *dom.Document) { page = doc.String() }); err != nil {
		http.Error(w, "document unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	select {
	case <-s.stopped:
		status, code = "stopped", http.StatusServiceUnavailable
	default:
		if s.doc == nil {
			status, code = "starting", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func (s *Server) handleBehaviors(w http.ResponseWriter, r *http.Request) {
	resp := BehaviorsResponse{Markers: []string{}}
	for _, m := range s.registry.Markers() {
		resp.Markers = append(resp.Markers, string(m))
	}
	if err := s.do(r.Context(), func(*dom.Document) { resp.ActiveRoots = s.registry.ActiveRoots() }); err != nil {
		http.Error(w, "document unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var report *accessibility.Report
	if err := s.do(r.Context(), func(doc *dom.Document) { report = s.auditor.Audit(r.Context(), doc) }); err != nil {
		http.Error(w, "document unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var action Action
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&action); err != nil {
		http.Error(w, "malformed action", http.StatusBadRequest)
		return
	}

	err := s.apply(r.Context(), action)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case canonerrors.IsType(err, canonerrors.ErrorTypeLookup):
		http.Error(w, err.Error(), http.StatusNotFound)
	case canonerrors.IsType(err, canonerrors.ErrorTypeValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrStopped):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// apply replays action on the document loop.
func (s *Server) apply(ctx context.Context, action Action) error {
	switch action.Type {
	case "click", "keydown", "input", "focus":
	default:
		return canonerrors.NewValidationError("ERR_UNKNOWN_ACTION", fmt.Sprintf("unknown action %q", action.Type))
	}
	if action.Type == "keydown" && action.Key == "" {
		return canonerrors.NewValidationError("ERR_MISSING_KEY", "keydown needs a key")
	}
	if err := validation.ValidateSelector(action.Selector); err != nil {
		return err
	}
	if action.Type == "keydown" {
		if err := validation.ValidateKey(action.Key); err != nil {
			return err
		}
	}
	action.Value = validation.SanitizeInput(action.Value)

	var applyErr error
	err := s.do(ctx, func(doc *dom.Document) {
		el := doc.QuerySelector(action.Selector)
		if el == nil {
			applyErr = canonerrors.NewLookupError(action.Selector)
			return
		}
		switch action.Type {
		case "click":
			el.Click()
		case "keydown":
			el.KeyDown(action.Key)
		case "input":
			el.Input(action.Value)
		case "focus":
			el.Focus()
		}
	})
	if err != nil {
		return err
	}
	if applyErr == nil {
		s.logger.Debug(ctx, "action applied", "type", action.Type, "selector", action.Selector)
	}
	return applyErr
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// securityHeaders sets the response headers every page carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
