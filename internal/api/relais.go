package api

import (
	"net/http"
	"strconv"

	"github.com/dbehnke/relaisblick/internal/filter"
	"github.com/dbehnke/relaisblick/internal/format"
	"github.com/dbehnke/relaisblick/internal/metrics"
	"github.com/dbehnke/relaisblick/internal/relais"
	"github.com/dbehnke/relaisblick/internal/viewer"
)

// DefaultNearbyRadius is the search radius in km when none is given.
const DefaultNearbyRadius = 50.0

const msgLoading = "Relaisdaten werden geladen"

type relaisListResponse struct {
	Relais     []relais.Relais `json:"relais"`
	Total      int             `json:"total"`
	Filtered   int             `json:"filtered"`
	LastUpdate string          `json:"lastUpdate"`
	Version    string          `json:"version"`
}

type display struct {
	Frequency       string `json:"frequency"`
	Shift           string `json:"shift"`
	CTCSS           string `json:"ctcss"`
	Altitude        string `json:"altitude"`
	Coordinates     string `json:"coordinates"`
	LastUpdate      string `json:"lastUpdate"`
	BandDescription string `json:"bandDescription"`
	TypeDescription string `json:"typeDescription"`
	BandColor       string `json:"bandColor"`
	TypeColor       string `json:"typeColor"`
	InMapBounds     bool   `json:"inMapBounds"`
}

type flyTo struct {
	Target     relais.Coordinates `json:"target"`
	Zoom       int                `json:"zoom"`
	DurationMs int64              `json:"durationMs"`
}

type relaisDetail struct {
	relais.Relais
	Display display `json:"display"`
	FlyTo   *flyTo  `json:"flyTo,omitempty"`
}

type neighbour struct {
	relais.Relais
	DistanceKm float64 `json:"distanceKm"`
	Distance   string  `json:"distance"`
}

type nearbyResponse struct {
	Relais   []neighbour `json:"relais"`
	RadiusKm float64     `json:"radiusKm"`
	Count    int         `json:"count"`
}

func displayOf(r relais.Relais) display {
	return display{
		Frequency:       format.Frequency(r.TxFrequency),
		Shift:           format.Shift(r.Shift),
		CTCSS:           format.CTCSS(r.CTCSS),
		Altitude:        format.Altitude(r.Altitude),
		Coordinates:     format.Coordinates(r.Coordinates),
		LastUpdate:      format.Date(r.LastUpdate),
		BandDescription: r.Band.Description(),
		TypeDescription: r.Type.Description(),
		BandColor:       r.Band.Color(),
		TypeColor:       r.Type.Color(),
		InMapBounds:     viewer.InBounds(r.Coordinates),
	}
}

// dataset writes a 503 and returns nil while nothing is loaded.
func (s *Server) dataset(w http.ResponseWriter) *relais.Dataset {
	st := s.opts.Data.State()
	if st.Dataset != nil {
		return st.Dataset
	}
	if st.Err != nil {
		s.writeError(w, http.StatusServiceUnavailable, st.Err.Error())
	} else {
		s.writeError(w, http.StatusServiceUnavailable, msgLoading)
	}
	return nil
}

// view builds a throwaway session for one request's filters.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (*viewer.Session, bool) {
	ds := s.dataset(w)
	if ds == nil {
		return nil, false
	}

	spec, err := filter.FromValues(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	session := viewer.NewSession()
	session.SetDataset(ds)
	session.SetFilters(spec)
	return session, true
}

func (s *Server) handleRelaisList(w http.ResponseWriter, r *http.Request) {
	session, ok := s.view(w, r)
	if !ok {
		return
	}

	ds := session.Dataset()
	visible := session.Visible()
	metrics.FilteredResults.Observe(float64(len(visible)))

	s.writeJSON(w, http.StatusOK, relaisListResponse{
		Relais:     visible,
		Total:      ds.Len(),
		Filtered:   len(visible),
		LastUpdate: ds.LastUpdate,
		Version:    ds.Version,
	})
}

func (s *Server) handleRelais(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(w)
	if ds == nil {
		return
	}

	session := viewer.NewSession()
	session.SetDataset(ds)
	if err := session.Select(r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusNotFound, "Relais not found")
		return
	}
	rec, _ := session.Selected()
	detail := relaisDetail{Relais: rec, Display: displayOf(rec)}

	// ?last= names the record the client's map last flew to
	var focus viewer.FocusTracker
	if last := r.URL.Query().Get("last"); last != "" {
		focus.Observe(&relais.Relais{ID: last})
	}
	if fly, ok := focus.Observe(&rec); ok {
		detail.FlyTo = &flyTo{
			Target:     fly.Target,
			Zoom:       fly.Zoom,
			DurationMs: fly.Duration.Milliseconds(),
		}
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		s.writeError(w, http.StatusBadRequest, "lat and lng are required coordinates")
		return
	}

	radius := DefaultNearbyRadius
	if v := q.Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "radius must be a positive number of km")
			return
		}
		radius = parsed
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	session, ok := s.view(w, r)
	if !ok {
		return
	}

	found := session.Nearby(relais.Coordinates{Lat: lat, Lng: lng}, radius, limit)
	resp := nearbyResponse{Relais: make([]neighbour, 0, len(found)), RadiusKm: radius}
	for _, n := range found {
		resp.Relais = append(resp.Relais, neighbour{
			Relais:     n.Relais,
			DistanceKm: n.DistanceKm,
			Distance:   format.Distance(n.DistanceKm),
		})
	}
	resp.Count = len(resp.Relais)
	metrics.FilteredResults.Observe(float64(resp.Count))

	s.writeJSON(w, http.StatusOK, resp)
}
