package filter

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/dbehnke/relaisblick/internal/relais"
)

// ErrInvalidFilter is returned when filter parameters contain unknown values.
var ErrInvalidFilter = errors.New("invalid filter")

// Clone returns a deep copy of s.
func (s Spec) Clone() Spec {
	return Spec{
		Bands:    slices.Clone(s.Bands),
		Types:    slices.Clone(s.Types),
		States:   slices.Clone(s.States),
		Statuses: slices.Clone(s.Statuses),
		Query:    s.Query,
	}
}

// IsUnrestricted reports whether s lets every record through.
func (s Spec) IsUnrestricted() bool {
	return len(s.Bands) == 0 && len(s.Types) == 0 && len(s.States) == 0 &&
		len(s.Statuses) == 0 && s.Query == ""
}

// ToggleBand adds b to the band set, or removes it if already selected.
func (s Spec) ToggleBand(b relais.Band) Spec {
	out := s.Clone()
	out.Bands = toggle(out.Bands, b)
	return out
}

// ToggleType adds or removes t.
func (s Spec) ToggleType(t relais.Type) Spec {
	out := s.Clone()
	out.Types = toggle(out.Types, t)
	return out
}

// ToggleState adds or removes st.
func (s Spec) ToggleState(st relais.State) Spec {
	out := s.Clone()
	out.States = toggle(out.States, st)
	return out
}

// ToggleStatus adds or removes st.
func (s Spec) ToggleStatus(st relais.Status) Spec {
	out := s.Clone()
	out.Statuses = toggle(out.Statuses, st)
	return out
}

// WithQuery returns a copy of s with the search query replaced.
func (s Spec) WithQuery(q string) Spec {
	out := s.Clone()
	out.Query = q
	return out
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(set, i, i+1)
	}
	return append(set, v)
}

// FromValues builds a spec from URL query parameters. Each of band, type,
// state and status may be repeated or comma separated. A missing status
// parameter selects the default (active only); a present but empty one
// removes the status restriction.
func FromValues(v url.Values) (Spec, error) {
	spec := Default()
	spec.Query = v.Get("q")

	var err error
	if spec.Bands, err = ParseList(v["band"], relais.ParseBand); err != nil {
		return Spec{}, err
	}
	if spec.Types, err = ParseList(v["type"], relais.ParseType); err != nil {
		return Spec{}, err
	}
	if spec.States, err = ParseList(v["state"], relais.ParseState); err != nil {
		return Spec{}, err
	}
	if statuses, ok := v["status"]; ok {
		if spec.Statuses, err = ParseList(statuses, relais.ParseStatus); err != nil {
			return Spec{}, err
		}
	}

	return spec, nil
}

// ParseList parses repeated or comma separated enum values, dropping
// duplicates and blanks.
func ParseList[T comparable](raw []string, parse func(string) (T, error)) ([]T, error) {
	out := []T{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := parse(part)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
			}
			if !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out, nil
}
