package api

import (
	"net/http"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type listHistoryResponse struct {
	Tasks  []*storage.TaskRecord `json:"tasks"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	ledger := s.bridge.Ledger()
	if ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "task history is disabled")
		return
	}

	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	tasks, total, err := ledger.List(r.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list task history: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list task history")
		return
	}
	if tasks == nil {
		tasks = []*storage.TaskRecord{}
	}

	writeJSON(w, http.StatusOK, listHistoryResponse{Tasks: tasks, Total: total, Limit: limit, Offset: offset})
}
