package api

import "net/http"

func (s *Server) handleInferenceStats(w http.ResponseWriter, r *http.Request) {
	if s.svc.Stats == nil {
		jsonError(w, "inference stats unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{
		"upstream": s.cfg.NERURL,
		"stats":    s.svc.Stats.Snapshot(),
	}
	if s.svc.Orchestrator != nil {
		resp["queue_depth"] = s.svc.Orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, resp)
}
