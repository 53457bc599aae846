package server

import (
	"encoding/json"
	"net/http"

	"github.com/shelfscan/shelfscan/internal/store"
)

func (s *Server) handleListPlanograms(w http.ResponseWriter, r *http.Request) {
	planograms, err := s.planograms.List()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planograms)
}

func (s *Server) handleCreatePlanogram(w http.ResponseWriter, r *http.Request) {
	var in store.PlanogramInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := s.planograms.Create(in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPlanogram(w http.ResponseWriter, r *http.Request) {
	p, err := s.planograms.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePlanogram(w http.ResponseWriter, r *http.Request) {
	var in store.PlanogramInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := s.planograms.Update(r.PathValue("id"), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlanogram(w http.ResponseWriter, r *http.Request) {
	if err := s.planograms.Delete(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
