package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	applog "budget/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	traced := s.tracer.GetMetrics()
	limited := s.limiter.GetMetrics()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"timestamp":           time.Now().Format(time.RFC3339),
		"uptime":              time.Since(s.started).Round(time.Second).String(),
		"requests":            traced.TotalRequests,
		"rate_limited":        limited.TotalHits,
		"suspicious_requests": s.detector.SuspiciousRequests(),
	})
}

// handleReady checks that the templates are loaded and that the store and
// the form session loop answer within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)
	fail := func(name string, err error) {
		checks[name] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if len(s.pages) == len(pageFiles) {
		checks["templates"] = "ok"
	} else {
		fail("templates", fmt.Errorf("%d of %d pages loaded", len(s.pages), len(pageFiles)))
	}

	if items, err := s.items.List(ctx); err != nil {
		fail("store", err)
	} else {
		checks["store"] = fmt.Sprintf("ok (%d items)", len(items))
	}

	if n, err := s.forms.Len(ctx); err != nil {
		fail("form_sessions", err)
	} else {
		checks["form_sessions"] = fmt.Sprintf("ok (%d open)", n)
	}

	if httpStatus != http.StatusOK {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "checks", checks)
	}
	writeJSON(w, httpStatus, map[string]any{"status": status, "checks": checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
