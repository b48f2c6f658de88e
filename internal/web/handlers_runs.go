package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleGetRun returns a stored pipeline run with its summary.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, run)
}

// handleListArtifacts returns every artifact a run stored.
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if _, err := s.runs.GetRun(r.Context(), id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	artifacts, err := s.runs.ListArtifacts(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, artifacts)
}
