package viewer

import (
	"sync"
	"time"

	"github.com/dbehnke/relaisblick/internal/relais"
)

// Map view of Austria.
const (
	DefaultZoom = 8
	MinZoom     = 7
	MaxZoom     = 18

	FocusZoom     = 12
	FocusDuration = 500 * time.Millisecond
)

// Center is the initial map centre.
var Center = relais.Coordinates{Lat: 47.5, Lng: 13.5}

// Bounds is a rectangular map area.
type Bounds struct {
	SouthWest relais.Coordinates `json:"southWest"`
	NorthEast relais.Coordinates `json:"northEast"`
}

// Contains reports whether c lies inside b, edges included.
func (b Bounds) Contains(c relais.Coordinates) bool {
	return c.Lat >= b.SouthWest.Lat && c.Lat <= b.NorthEast.Lat &&
		c.Lng >= b.SouthWest.Lng && c.Lng <= b.NorthEast.Lng
}

// MapBounds limits panning to Austria plus a margin.
var MapBounds = Bounds{
	SouthWest: relais.Coordinates{Lat: 46.3, Lng: 9.5},
	NorthEast: relais.Coordinates{Lat: 49.0, Lng: 17.2},
}

// InBounds reports whether c is inside MapBounds.
func InBounds(c relais.Coordinates) bool {
	return MapBounds.Contains(c)
}

// FlyTo is an animated map move to a selected record.
type FlyTo struct {
	Target   relais.Coordinates `json:"target"`
	Zoom     int                `json:"zoom"`
	Duration time.Duration      `json:"duration"`
}

// FocusTracker decides when the map should fly to the selection: only
// when a record is selected whose id differs from the last one flown to.
// Deselecting does not reset it.
type FocusTracker struct {
	mu   sync.Mutex
	last string
}

// Observe is called with the current selection (nil when none).
func (f *FocusTracker) Observe(selected *relais.Relais) (FlyTo, bool) {
	if selected == nil {
		return FlyTo{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if selected.ID == f.last {
		return FlyTo{}, false
	}
	f.last = selected.ID

	return FlyTo{
		Target:   selected.Coordinates,
		Zoom:     FocusZoom,
		Duration: FocusDuration,
	}, true
}
