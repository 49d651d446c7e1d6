package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dbehnke/relaisblick/internal/preferences"
)

type languageResponse struct {
	Language  preferences.Language   `json:"language"`
	Supported []preferences.Language `json:"supported"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Dataset  bool   `json:"dataset"`
	Records  int    `json:"records"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if s.opts.SiteConfig == nil {
		s.writeError(w, http.StatusServiceUnavailable, "site configuration not available")
		return
	}
	s.writeJSON(w, http.StatusOK, s.opts.SiteConfig.Get(r.Context()))
}

func (s *Server) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	if s.opts.Languages == nil {
		s.writeError(w, http.StatusServiceUnavailable, "preferences not available")
		return
	}

	lang, err := s.opts.Languages.Language(r.Context())
	if err != nil {
		s.log.Warnw("Failed to read language", "error", err)
	}
	s.writeJSON(w, http.StatusOK, languageResponse{Language: lang, Supported: preferences.Languages})
}

func (s *Server) handlePutLanguage(w http.ResponseWriter, r *http.Request) {
	if s.opts.Languages == nil {
		s.writeError(w, http.StatusServiceUnavailable, "preferences not available")
		return
	}

	var req languageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lang, err := preferences.ParseLanguage(req.Language)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.opts.Languages.SetLanguage(r.Context(), lang); err != nil {
		if errors.Is(err, preferences.ErrUnsupportedLanguage) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Errorw("Failed to store language", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store language")
		return
	}

	s.writeJSON(w, http.StatusOK, languageResponse{Language: lang, Supported: preferences.Languages})
}

func (s *Server) handleDeleteLanguage(w http.ResponseWriter, r *http.Request) {
	if s.opts.Languages == nil {
		s.writeError(w, http.StatusServiceUnavailable, "preferences not available")
		return
	}

	if err := s.opts.Languages.Reset(r.Context()); err != nil {
		s.log.Errorw("Failed to reset language", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to reset language")
		return
	}

	s.writeJSON(w, http.StatusOK, languageResponse{Language: preferences.DefaultLanguage, Supported: preferences.Languages})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.opts.Data.State()
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Dataset:  st.Dataset != nil,
		Records:  st.Dataset.Len(),
	}

	status := http.StatusOK
	if s.opts.Database == nil {
		resp.Database = "disabled"
	} else if err := s.opts.Database.Health(); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, resp)
}
