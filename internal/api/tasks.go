package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

const maxBodySize = 1 << 16

// createTaskRequest is the JSON body for POST /v1/tasks.
type createTaskRequest struct {
	Kind string `json:"kind"`
	Arg  string `json:"arg"`
}

type createTaskResponse struct {
	Handle uint64 `json:"handle"`
	Kind   string `json:"kind"`
}

type awaitTaskResponse struct {
	Code   bridge.Code `json:"code"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
}

type cancelTaskResponse struct {
	Handle uint64 `json:"handle"`
	Status string `json:"status"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kind, err := async.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h := s.bridge.CreateTask(kind, req.Arg)
	writeJSON(w, http.StatusCreated, createTaskResponse{Handle: uint64(h), Kind: string(kind)})
}

func (s *Server) handlePollTask(w http.ResponseWriter, r *http.Request) {
	h, ok := parseHandle(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.bridge.View(h))
}

// handleAwaitTask blocks until the task finishes. The caller's connection
// closing does not cancel the task; use DELETE for that.
func (s *Server) handleAwaitTask(w http.ResponseWriter, r *http.Request) {
	h, ok := parseHandle(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindQuery(w, r)
	if !ok {
		return
	}

	res := s.bridge.Await(h, kind)
	writeJSON(w, http.StatusOK, awaitTaskResponse{
		Code:   res.Code,
		Status: res.Code.String(),
		Error:  s.take(res.Error),
	})
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	h, ok := parseHandle(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindQuery(w, r)
	if !ok {
		return
	}

	s.bridge.Cancel(h, kind)
	writeJSON(w, http.StatusAccepted, cancelTaskResponse{Handle: uint64(h), Status: string(models.TaskStatusCancelled)})
}

// take copies a leased string out of the bridge and releases the lease
func (s *Server) take(o bridge.OwnedString) string {
	text := s.bridge.Text(o)
	s.bridge.FreeString(o)
	return text
}

func parseHandle(w http.ResponseWriter, r *http.Request) (async.Handle, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, "handle"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task handle")
		return 0, false
	}
	return async.Handle(v), true
}

func parseKindQuery(w http.ResponseWriter, r *http.Request) (async.Kind, bool) {
	kind, err := async.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return kind, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
