package relais

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrMalformedDataset is returned when a dataset document cannot be decoded
// or lacks the relais list.
var ErrMalformedDataset = errors.New("malformed dataset")

// Dataset is one fetched snapshot of the repeater list. It is replaced as a
// whole on refetch and never modified after decoding.
type Dataset struct {
	Relais     []Relais `json:"relais"`
	LastUpdate string   `json:"lastUpdate"`
	Version    string   `json:"version"`
}

// Decode parses a dataset document.
func Decode(r io.Reader) (*Dataset, error) {
	var raw struct {
		Relais     *[]Relais `json:"relais"`
		LastUpdate string    `json:"lastUpdate"`
		Version    string    `json:"version"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if raw.Relais == nil {
		return nil, fmt.Errorf("%w: missing relais list", ErrMalformedDataset)
	}

	return &Dataset{
		Relais:     *raw.Relais,
		LastUpdate: raw.LastUpdate,
		Version:    raw.Version,
	}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Relais)
}

// Records returns a copy of the record list.
func (d *Dataset) Records() []Relais {
	if d == nil {
		return []Relais{}
	}
	out := make([]Relais, len(d.Relais))
	copy(out, d.Relais)
	return out
}

// Find returns the record with the given id.
func (d *Dataset) Find(id string) (Relais, bool) {
	if d == nil {
		return Relais{}, false
	}
	for _, r := range d.Relais {
		if r.ID == id {
			return r, true
		}
	}
	return Relais{}, false
}

// Updated parses the dataset level lastUpdate timestamp.
func (d *Dataset) Updated() (time.Time, error) {
	if d == nil || d.LastUpdate == "" {
		return time.Time{}, fmt.Errorf("no lastUpdate timestamp")
	}
	return ParseTimestamp(d.LastUpdate)
}

// ParseTimestamp parses an ISO-8601 timestamp as written by the dataset
// generator. Date-only values are accepted as midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
