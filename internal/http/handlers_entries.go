package http

import (
	"net/http"
	"sync/atomic"

	"smarttracker/internal/log"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	formID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpList, err)
		return
	}
	entries, err := s.entries.ListEntries(r.Context(), formID)
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(entries))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	formID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpCreate, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.ComponentEntry, log.OpCreate, err)
		return
	}
	entry, err := s.entries.AddEntry(r.Context(), formID, req.input())
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.entriesCreated, 1)
	s.invalidateForm(r.Context(), formID)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpRead, err)
		return
	}
	entry, err := s.entries.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpUpdate, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.ComponentEntry, log.OpUpdate, err)
		return
	}
	entry, err := s.entries.UpdateEntry(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpUpdate, err)
		return
	}
	s.invalidateForm(r.Context(), entry.FormID)
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpDelete, err)
		return
	}
	entry, err := s.entries.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpDelete, err)
		return
	}
	if err := s.entries.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, r, log.ComponentEntry, log.OpDelete, err)
		return
	}
	s.invalidateForm(r.Context(), entry.FormID)
	writeMessage(w, "Entry deleted")
}

func (s *Server) handleAllEntries(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query(), s.allEntriesLimit)
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpList, err)
		return
	}
	entries, err := s.entries.ListAllEntries(r.Context(), limit)
	if err != nil {
		writeError(w, r, log.ComponentEntry, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(entries))
}
