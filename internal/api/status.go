package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dbehnke/relaisblick/internal/loader"
)

type statusResponse struct {
	Loading    bool       `json:"loading"`
	Error      *string    `json:"error"`
	Count      int        `json:"count"`
	LastUpdate string     `json:"lastUpdate,omitempty"`
	Version    string     `json:"version,omitempty"`
	FetchedAt  *time.Time `json:"fetchedAt,omitempty"`
	NextUpdate time.Time  `json:"nextUpdate"`
	Server     string     `json:"serverVersion,omitempty"`
}

func (s *Server) status() statusResponse {
	st := s.opts.Data.State()

	resp := statusResponse{
		Loading:    st.Loading,
		Count:      st.Dataset.Len(),
		NextUpdate: loader.NextScheduledUpdate(s.now()),
		Server:     s.opts.Version,
	}
	if st.Err != nil {
		msg := st.Err.Error()
		resp.Error = &msg
	}
	if st.Dataset != nil {
		resp.LastUpdate = st.Dataset.LastUpdate
		resp.Version = st.Dataset.Version
	}
	if !st.FetchedAt.IsZero() {
		fetched := st.FetchedAt
		resp.FetchedAt = &fetched
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !s.reload.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "too many reload requests")
		return
	}

	// the reload replaces any running fetch, so it must outlive the caller
	err := s.opts.Data.Retry(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, s.status())
	case errors.Is(err, loader.ErrSuperseded):
		// a newer reload is running and will settle the state
		s.writeJSON(w, http.StatusAccepted, s.status())
	default:
		s.log.Warnw("Manual reload failed", "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
	}
}
