package api

import (
	"net/http"
)

type healthResponse struct {
	Status      string `json:"status"`
	ActiveTasks int    `json:"active_tasks"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", ActiveTasks: s.bridge.Tasks().Active()})
}
