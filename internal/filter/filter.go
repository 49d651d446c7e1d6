// Package filter derives the visible subset of the repeater list from a
// filter specification. Every function here is pure.
package filter

import (
	"slices"
	"strings"

	"github.com/dbehnke/relaisblick/internal/relais"
)

// Spec is a set of inclusion criteria. An empty set means no restriction
// for that dimension, never "reject all".
type Spec struct {
	Bands    []relais.Band   `json:"band"`
	Types    []relais.Type   `json:"typ"`
	States   []relais.State  `json:"bundesland"`
	Statuses []relais.Status `json:"status"`
	Query    string          `json:"searchQuery"`
}

// Default returns the initial spec: active repeaters only.
func Default() Spec {
	return Spec{
		Bands:    []relais.Band{},
		Types:    []relais.Type{},
		States:   []relais.State{},
		Statuses: []relais.Status{relais.StatusActive},
	}
}

// Apply returns the records matching spec, in input order.
func Apply(records []relais.Relais, spec Spec) []relais.Relais {
	query := strings.ToLower(spec.Query)

	out := make([]relais.Relais, 0, len(records))
	for _, r := range records {
		if matches(r, spec, query) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record passes every criterion of spec.
func Matches(r relais.Relais, spec Spec) bool {
	return matches(r, spec, strings.ToLower(spec.Query))
}

func matches(r relais.Relais, spec Spec, query string) bool {
	if len(spec.Bands) > 0 && !slices.Contains(spec.Bands, r.Band) {
		return false
	}
	if len(spec.Types) > 0 && !slices.Contains(spec.Types, r.Type) {
		return false
	}
	if len(spec.States) > 0 && !slices.Contains(spec.States, r.State) {
		return false
	}
	if len(spec.Statuses) > 0 && !slices.Contains(spec.Statuses, r.Status) {
		return false
	}
	if query != "" && !strings.Contains(r.SearchText(), query) {
		return false
	}
	return true
}
