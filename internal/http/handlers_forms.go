package http

import (
	"net/http"

	"smarttracker/internal/core"
	"smarttracker/internal/log"
)

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.forms.ListForms(r.Context())
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(forms))
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.ComponentForm, log.OpCreate, err)
		return
	}
	form, err := s.forms.CreateForm(r.Context(), sanitizeInput(req.Name), req.keys())
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpRead, err)
		return
	}
	form, err := s.forms.GetForm(r.Context(), id)
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpUpdate, err)
		return
	}
	var req formRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.ComponentForm, log.OpUpdate, err)
		return
	}
	form, err := s.forms.UpdateForm(r.Context(), id, sanitizeInput(req.Name), req.keys())
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpUpdate, err)
		return
	}
	s.invalidateForm(r.Context(), id)
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentForm, log.OpDelete, err)
		return
	}
	if err := s.forms.DeleteForm(r.Context(), id); err != nil {
		writeError(w, r, log.ComponentForm, log.OpDelete, err)
		return
	}
	s.invalidateForm(r.Context(), id)
	writeMessage(w, "Form deleted")
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Fields())
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
