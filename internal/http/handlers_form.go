package http

import (
	"errors"
	"net/http"

	"budget/internal/core"
	"budget/internal/forms"
	applog "budget/internal/log"
	"budget/internal/store"

	"github.com/google/uuid"
)

var errWrongForm = errors.New("form session does not match this action")

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, session uuid.UUID, d forms.Draft, errs forms.FieldErrors, general string) {
	model := buildFormModel(session, d, errs)
	model.General = general
	if isHTMX(r) {
		s.render(w, r, status, "form.html", "form", model)
		return
	}
	s.render(w, r, status, "form.html", "page", model)
}

// sessionFailure answers for a form session that cannot be used.
func (s *Server) sessionFailure(w http.ResponseWriter, r *http.Request, session uuid.UUID, err error) {
	switch {
	case errors.Is(err, forms.ErrSessionClosed):
		logFor(r, applog.ComponentForms).InfoContext(r.Context(), "Submit on closed form", applog.FieldSessionID, session)
		s.renderError(w, r, http.StatusGone, "Ce formulaire a été fermé")
	case errors.Is(err, errWrongForm):
		s.renderError(w, r, http.StatusBadRequest, "Formulaire invalide")
	default:
		events(r, applog.ComponentForms).LogError(r.Context(), "Form session unavailable", err, applog.OpUpdate,
			applog.LogFields{applog.FieldSessionID: session.String()})
		s.renderError(w, r, http.StatusServiceUnavailable, "Service indisponible")
	}
}

// handleNewForm opens an add form with today's date and Medium priority.
func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	draft := forms.NewAddDraft(s.today())
	id, err := s.forms.Open(r.Context(), draft)
	if err != nil {
		s.sessionFailure(w, r, uuid.Nil, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, id, draft, nil, "")
}

// handleEditForm opens an edit form prefilled from the item.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	itemID, err := PathUUID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
		return
	}
	item, err := s.items.Get(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logFor(r, applog.ComponentForms).WarnContext(r.Context(), "Edit of unknown item", applog.FieldItemID, itemID)
			s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
			return
		}
		events(r, applog.ComponentForms).LogError(r.Context(), "Load item for edit failed", err, applog.OpRead, nil)
		s.renderError(w, r, http.StatusInternalServerError, "Erreur interne")
		return
	}

	draft := forms.NewEditDraft(item)
	id, err := s.forms.Open(r.Context(), draft)
	if err != nil {
		s.sessionFailure(w, r, uuid.Nil, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, id, draft, nil, "")
}

// handleCreate submits an add form. Invalid input re-renders the form with
// 422 and keeps the session; success closes it and returns to the list.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	values := sanitizeValues(r.PostForm)
	sid, err := FormUUID(values, fieldSession)
	if err != nil {
		BadRequestError("Formulaire invalide").Write(w)
		return
	}

	var (
		fieldErrs forms.FieldErrors
		created   core.BudgetItem
	)
	draft, err := s.forms.Submit(r.Context(), sid, values, func(d forms.Draft) error {
		if d.Mode != forms.ModeAdd {
			return errWrongForm
		}
		item, errs := d.Build()
		if err := errs.Err(); err != nil {
			fieldErrs = errs
			return err
		}
		saved, err := s.items.Add(r.Context(), item)
		if err != nil {
			return err
		}
		created = saved
		return nil
	})

	switch {
	case err == nil:
		logItemChange(r, applog.OpCreate, created)
		s.redirect(w, r, "/", applog.OpCreate)
	case errors.Is(err, forms.ErrInvalidDraft):
		logFor(r, applog.ComponentForms).InfoContext(r.Context(), "Add form rejected", applog.FieldSessionID, sid, "fields", fieldErrs)
		s.renderForm(w, r, http.StatusUnprocessableEntity, sid, draft, fieldErrs, "")
	case errors.Is(err, forms.ErrSessionClosed), errors.Is(err, forms.ErrStopped), errors.Is(err, errWrongForm):
		s.sessionFailure(w, r, sid, err)
	default:
		events(r, applog.ComponentItems).LogError(r.Context(), "Add item failed", err, applog.OpCreate, nil)
		s.renderForm(w, r, http.StatusUnprocessableEntity, sid, draft, nil, "Impossible d'ajouter cette dépense")
	}
}

// handleUpdate submits an edit form. A vanished item answers 404 and keeps
// the form open.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	itemID, err := PathUUID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Élément introuvable")
		return
	}
	values := sanitizeValues(r.PostForm)
	sid, err := FormUUID(values, fieldSession)
	if err != nil {
		BadRequestError("Formulaire invalide").Write(w)
		return
	}

	var (
		fieldErrs forms.FieldErrors
		updated   core.BudgetItem
	)
	draft, err := s.forms.Submit(r.Context(), sid, values, func(d forms.Draft) error {
		if d.Mode != forms.ModeEdit || d.ItemID != itemID {
			return errWrongForm
		}
		item, errs := d.Build()
		if err := errs.Err(); err != nil {
			fieldErrs = errs
			return err
		}
		saved, err := s.items.Update(r.Context(), itemID, item)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	})

	switch {
	case err == nil:
		logItemChange(r, applog.OpUpdate, updated)
		s.redirect(w, r, "/items/"+itemID.String(), applog.OpUpdate)
	case errors.Is(err, forms.ErrInvalidDraft):
		logFor(r, applog.ComponentForms).InfoContext(r.Context(), "Edit form rejected", applog.FieldSessionID, sid, "fields", fieldErrs)
		s.renderForm(w, r, http.StatusUnprocessableEntity, sid, draft, fieldErrs, "")
	case errors.Is(err, store.ErrNotFound):
		logFor(r, applog.ComponentForms).WarnContext(r.Context(), "Update of unknown item", applog.FieldItemID, itemID, applog.FieldSessionID, sid)
		s.renderForm(w, r, http.StatusNotFound, sid, draft, nil, "Cet élément n'existe plus")
	case errors.Is(err, forms.ErrSessionClosed), errors.Is(err, forms.ErrStopped), errors.Is(err, errWrongForm):
		s.sessionFailure(w, r, sid, err)
	default:
		events(r, applog.ComponentItems).LogError(r.Context(), "Update item failed", err, applog.OpUpdate, nil)
		s.renderForm(w, r, http.StatusUnprocessableEntity, sid, draft, nil, "Impossible d'enregistrer cette dépense")
	}
}

// handleCloseForm dismisses a form without saving.
func (s *Server) handleCloseForm(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	next := SafeNext(r.PostForm, "/")
	sid, err := PathUUID(r, "session")
	if err != nil {
		s.redirect(w, r, next, "")
		return
	}
	if err := s.forms.Close(r.Context(), sid); err != nil {
		logFor(r, applog.ComponentForms).WarnContext(r.Context(), "Close form failed", applog.FieldSessionID, sid, applog.FieldError, err)
	}
	s.redirect(w, r, next, "")
}

// handleRandomImage records the current field values, asks the image
// listing for a random image and puts its URL in the draft. A failed lookup
// leaves the draft alone. If the form was closed meanwhile, the result is
// dropped.
func (s *Server) handleRandomImage(w http.ResponseWriter, r *http.Request) {
	sid, err := PathUUID(r, "session")
	if err != nil {
		BadRequestError("Formulaire invalide").Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	logger := logFor(r, applog.ComponentImages)

	values := sanitizeValues(r.PostForm)
	delete(values, fieldSession)
	draft, err := s.forms.Bind(r.Context(), sid, values)
	if err != nil {
		if errors.Is(err, forms.ErrSessionClosed) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.sessionFailure(w, r, sid, err)
		return
	}

	img, err := s.images.RandomImage(r.Context())
	if err != nil {
		logger.WarnContext(r.Context(), "Random image lookup failed", applog.FieldSessionID, sid, applog.FieldError, err)
		if isHTMX(r) {
			NewHTMXResponse().TriggerErrorNotification("Aucune image disponible").WriteHeaders(w)
		}
		s.renderForm(w, r, http.StatusOK, sid, draft, nil, "")
		return
	}

	draft, err = s.forms.Apply(r.Context(), sid, func(d *forms.Draft) { d.ImageURL = img.URL })
	if err != nil {
		if errors.Is(err, forms.ErrSessionClosed) {
			logger.DebugContext(r.Context(), "Random image dropped, form closed", applog.FieldSessionID, sid, applog.FieldImageURL, img.URL)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.sessionFailure(w, r, sid, err)
		return
	}
	logger.DebugContext(r.Context(), "Random image applied", applog.FieldSessionID, sid, applog.FieldImageURL, img.URL, "image_id", img.ID)
	if isHTMX(r) {
		NewHTMXResponse().TriggerSuccessNotification("Image générée").WriteHeaders(w)
	}
	s.renderForm(w, r, http.StatusOK, sid, draft, nil, "")
}
