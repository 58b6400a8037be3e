// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data:
// path ids, list positions, return targets and input sanitization.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	errMissingParam = errors.New("missing parameter")
	errBadParam     = errors.New("malformed parameter")
)

// Form field carrying the form session id.
const fieldSession = "session"

// PathUUID parses the named path wildcard as a uuid.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s: %w", name, errMissingParam)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, raw, errBadParam)
	}
	return id, nil
}

// FormUUID parses a form value as a uuid.
func FormUUID(values url.Values, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s: %w", key, errMissingParam)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", key, raw, errBadParam)
	}
	return id, nil
}

// ParseIndices reads every value of key as a list position. Values may
// also be comma separated ("0,2").
func ParseIndices(values url.Values, key string) ([]int, error) {
	var out []int
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", key, part, errBadParam)
			}
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", key, errMissingParam)
	}
	return out, nil
}

// ParseIndex reads a single list position.
func ParseIndex(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, fmt.Errorf("%s: %w", key, errMissingParam)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, raw, errBadParam)
	}
	return n, nil
}

// SafeNext returns the local path in values["next"], or fallback when it is
// missing or points off-site.
func SafeNext(values url.Values, fallback string) string {
	next := strings.TrimSpace(values.Get("next"))
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Format de requête invalide")
	}
	return nil
}

// sanitizeInput removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// sanitizeValues returns a sanitized copy of values.
func sanitizeValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		clean := make([]string, len(vs))
		for i, v := range vs {
			clean[i] = sanitizeInput(v)
		}
		out[k] = clean
	}
	return out
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
