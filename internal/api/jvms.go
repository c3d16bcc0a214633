package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
)

type addJVMRequest struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
	Env  []string `json:"env"`
}

type jvmResponse struct {
	Index int `json:"index"`
	storage.JVM
}

type listJVMsResponse struct {
	JVMs  []jvmResponse `json:"jvms"`
	Count int           `json:"count"`
}

func (s *Server) handleListJVMs(w http.ResponseWriter, r *http.Request) {
	jvms := s.bridge.JVMs()
	resp := listJVMsResponse{JVMs: make([]jvmResponse, len(jvms)), Count: len(jvms)}
	for i, jvm := range jvms {
		resp.JVMs[i] = jvmResponse{Index: i, JVM: jvm}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddJVM(w http.ResponseWriter, r *http.Request) {
	var req addJVMRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	res := s.bridge.AddJVM(req.Path, req.Args, req.Env)
	if res.Code != bridge.Success {
		writeJSON(w, http.StatusUnprocessableEntity, awaitTaskResponse{
			Code:   res.Code,
			Status: res.Code.String(),
			Error:  s.take(res.Error),
		})
		return
	}

	jvms := s.bridge.JVMs()
	i := len(jvms) - 1
	writeJSON(w, http.StatusCreated, jvmResponse{Index: i, JVM: jvms[i]})
}

func (s *Server) handleRemoveJVM(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid jvm index")
		return
	}
	if i < 0 || i >= s.bridge.JVMCount() {
		writeError(w, http.StatusNotFound, "jvm not found")
		return
	}

	res := s.bridge.RemoveJVM(i)
	if res.Code != bridge.Success {
		writeError(w, http.StatusInternalServerError, s.take(res.Error))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": i, "status": "removed"})
}
