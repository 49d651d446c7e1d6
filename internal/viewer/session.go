// Package viewer holds the per-viewer state derived from a dataset: the
// active filters, the visible records and the current selection.
package viewer

import (
	"errors"
	"sort"
	"sync"

	"github.com/dbehnke/relaisblick/internal/filter"
	"github.com/dbehnke/relaisblick/internal/relais"
)

// ErrNotFound is returned when selecting an id that is not in the dataset.
var ErrNotFound = errors.New("relais not found")

// Session holds dataset, filter spec and selection. It is safe for
// concurrent use.
type Session struct {
	mu       sync.RWMutex
	dataset  *relais.Dataset
	spec     filter.Spec
	selected string
}

// NewSession creates a session with the default filters and no data.
func NewSession() *Session {
	return &Session{spec: filter.Default()}
}

// SetDataset replaces the dataset. The selection is kept by id and
// disappears if the new dataset no longer contains it.
func (s *Session) SetDataset(ds *relais.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
}

// Dataset returns the current dataset, nil before the first load.
func (s *Session) Dataset() *relais.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Filters returns a copy of the active filter spec.
func (s *Session) Filters() filter.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec.Clone()
}

// SetFilters replaces the filter spec. The selection is not touched.
func (s *Session) SetFilters(spec filter.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec.Clone()
}

// UpdateFilters applies fn to the current spec atomically and returns the
// result, e.g. UpdateFilters(func(sp filter.Spec) filter.Spec { return sp.ToggleBand(relais.Band2m) }).
func (s *Session) UpdateFilters(fn func(filter.Spec) filter.Spec) filter.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = fn(s.spec.Clone()).Clone()
	return s.spec.Clone()
}

// Visible returns the records passing the active filters, in dataset order.
func (s *Session) Visible() []relais.Relais {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleLocked()
}

func (s *Session) visibleLocked() []relais.Relais {
	if s.dataset == nil {
		return []relais.Relais{}
	}
	return filter.Apply(s.dataset.Relais, s.spec)
}

// Counts returns the dataset size and the number of visible records.
func (s *Session) Counts() (total, visible int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset.Len(), len(s.visibleLocked())
}

// Select marks the record with id as selected.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dataset.Find(id); !ok {
		return ErrNotFound
	}
	s.selected = id
	return nil
}

// Selected returns the selected record.
func (s *Session) Selected() (relais.Relais, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		return relais.Relais{}, false
	}
	return s.dataset.Find(s.selected)
}

// SelectionVisible reports whether the selected record passes the active
// filters. It is false when nothing is selected.
func (s *Session) SelectionVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		return false
	}
	r, ok := s.dataset.Find(s.selected)
	return ok && filter.Matches(r, s.spec)
}

// Neighbour is a visible record with its distance from a reference point.
type Neighbour struct {
	relais.Relais
	DistanceKm float64
}

// Nearby returns the visible records within radiusKm of origin, nearest
// first. A limit <= 0 returns all of them.
func (s *Session) Nearby(origin relais.Coordinates, radiusKm float64, limit int) []Neighbour {
	out := []Neighbour{}
	for _, r := range s.Visible() {
		d := origin.DistanceTo(r.Coordinates)
		if d <= radiusKm {
			out = append(out, Neighbour{Relais: r, DistanceKm: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
