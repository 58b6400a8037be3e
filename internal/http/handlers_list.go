package http

import (
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
)

// handleList renders the list, filtered by ?priority=. The rows and the
// total are recomputed from the store on every request. htmx requests that
// target the list get only the list fragment.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := core.ParsePriorityFilter(r.URL.Query().Get("priority"))

	items, err := s.items.List(r.Context())
	if err != nil {
		events(r, applog.ComponentItems).LogError(r.Context(), "List items failed", err, applog.OpList, nil)
		s.renderError(w, r, http.StatusInternalServerError, "Impossible de charger la liste")
		return
	}

	model := buildListModel(items, filter)
	if isHTMX(r) && r.Header.Get("HX-Target") == "budget-list" {
		s.render(w, r, http.StatusOK, "list.html", "list", model)
		return
	}
	s.render(w, r, http.StatusOK, "list.html", "page", model)
}
