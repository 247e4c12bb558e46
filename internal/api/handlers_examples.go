package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/notescribe/internal/bio"
	"github.com/dgallion1/notescribe/internal/examples"
)

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	display := make(map[string]string, len(bio.EntityTypes))
	for _, t := range bio.EntityTypes {
		display[t] = bio.DisplayLabel(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"labels":  bio.Labels(),
		"tags":    bio.ModelTags,
		"display": display,
	})
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	if s.svc.Examples == nil {
		jsonError(w, "examples file not found", http.StatusNotFound)
		return
	}

	limit := s.cfg.ExamplesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := s.svc.Examples.List(limit)
	if errors.Is(err, examples.ErrNotFound) {
		jsonError(w, "examples file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("read examples failed", "error", err)
		jsonError(w, "error reading examples: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"examples": list,
		"count":    len(list),
	})
}
