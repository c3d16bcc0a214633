package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

type catalogResponse struct {
	Latest   models.Latest    `json:"latest"`
	Versions []models.Version `json:"versions"`
}

type versionResponse struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Type  string `json:"type"`
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := s.bridge.Store().Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{Latest: catalog.Latest, Versions: catalog.Versions})
}

func (s *Server) handleLatestRelease(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": s.take(s.bridge.LatestRelease())})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version index")
		return
	}
	if i < 0 || i >= s.bridge.VersionCount() {
		writeError(w, http.StatusNotFound, "version not found")
		return
	}

	writeJSON(w, http.StatusOK, versionResponse{
		Index: i,
		ID:    s.take(s.bridge.VersionID(i)),
		Type:  s.take(s.bridge.VersionType(i)),
	})
}
