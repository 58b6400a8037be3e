package http

import (
	"errors"
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/store"
)

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := PathUUID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
		return
	}
	item, err := s.items.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
		return
	}
	if err != nil {
		events(r, applog.ComponentItems).LogError(r.Context(), "Get item failed", err, applog.OpRead, nil)
		s.renderError(w, r, http.StatusInternalServerError, "Erreur interne")
		return
	}
	s.render(w, r, http.StatusOK, "detail.html", "page", buildDetailModel(item))
}

// handleDelete removes one item by id (row delete action).
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	id, err := PathUUID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
		return
	}

	item, getErr := s.items.Get(r.Context(), id)
	if err := s.items.Remove(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logFor(r, applog.ComponentItems).WarnContext(r.Context(), "Delete of unknown item", applog.FieldItemID, id)
			s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
			return
		}
		events(r, applog.ComponentItems).LogError(r.Context(), "Delete item failed", err, applog.OpDelete, nil)
		s.renderError(w, r, http.StatusInternalServerError, "Erreur lors de la suppression")
		return
	}
	if getErr == nil {
		logItemChange(r, applog.OpDelete, item)
	}
	s.redirect(w, r, SafeNext(r.PostForm, "/"), applog.OpDelete)
}

// handleRemoveAt deletes the items at the posted positions of the full list.
func (s *Server) handleRemoveAt(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	indices, err := ParseIndices(r.PostForm, "index")
	if err != nil {
		BadRequestError("Index manquant ou invalide").Write(w)
		return
	}
	if err := s.items.RemoveAt(r.Context(), indices...); err != nil {
		if errors.Is(err, store.ErrIndexOutOfRange) {
			logFor(r, applog.ComponentItems).WarnContext(r.Context(), "Delete at invalid position", "indices", indices, applog.FieldError, err)
			UnprocessableEntityError("Position hors de la liste").Write(w)
			return
		}
		events(r, applog.ComponentItems).LogError(r.Context(), "Delete items failed", err, applog.OpDelete, nil)
		InternalServerError("Erreur lors de la suppression").Write(w)
		return
	}
	logFor(r, applog.ComponentItems).InfoContext(r.Context(), "Budget items deleted", "indices", indices, applog.FieldOperation, applog.OpDelete)
	s.redirect(w, r, SafeNext(r.PostForm, "/"), applog.OpDelete)
}

// handleMove reorders the list: the items at from are placed before the
// item that was at offset to.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	from, err := ParseIndices(r.PostForm, "from")
	if err != nil {
		BadRequestError("Position de départ invalide").Write(w)
		return
	}
	to, err := ParseIndex(r.PostForm, "to")
	if err != nil {
		BadRequestError("Position d'arrivée invalide").Write(w)
		return
	}
	if err := s.items.Move(r.Context(), from, to); err != nil {
		if errors.Is(err, store.ErrIndexOutOfRange) {
			logFor(r, applog.ComponentItems).WarnContext(r.Context(), "Move to invalid position", "from", from, "to", to, applog.FieldError, err)
			UnprocessableEntityError("Position hors de la liste").Write(w)
			return
		}
		events(r, applog.ComponentItems).LogError(r.Context(), "Move items failed", err, applog.OpMove, nil)
		InternalServerError("Erreur lors du déplacement").Write(w)
		return
	}
	logFor(r, applog.ComponentItems).DebugContext(r.Context(), "Budget items moved", "from", from, "to", to)
	s.redirect(w, r, SafeNext(r.PostForm, "/"), applog.OpMove)
}

func logItemChange(r *http.Request, op string, item core.BudgetItem) {
	events(r, applog.ComponentItems).LogItemChange(r.Context(), op,
		item.ID.String(), item.Name, core.FormatAmount(item.Amount), item.Priority.String(), tagLabels(item.Tags))
}
