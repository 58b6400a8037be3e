package http

import (
	"net/http"

	applog "budget/internal/log"
)

// logFor returns the request-scoped logger tagged with component.
func logFor(r *http.Request, component string) *applog.Logger {
	return applog.FromContext(r.Context()).WithComponent(component)
}

// events returns a structured logger for domain events of component.
func events(r *http.Request, component string) *applog.StructuredLogger {
	return applog.NewStructuredLogger(logFor(r, component))
}
