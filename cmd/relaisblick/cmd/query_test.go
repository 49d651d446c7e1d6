package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbehnke/relaisblick/internal/filter"
	"github.com/dbehnke/relaisblick/internal/relais"
	"github.com/dbehnke/relaisblick/internal/viewer"
)

func testSession() *viewer.Session {
	s := viewer.NewSession()
	s.SetDataset(&relais.Dataset{
		Version:    "1.4.0",
		LastUpdate: "2026-10-11T03:00:00Z",
		Relais: []relais.Relais{
			{ID: "oe1xuu", Callsign: "OE1XUU", Site: "Kahlenberg", State: relais.StateVienna,
				Coordinates: relais.Coordinates{Lat: 48.2767, Lng: 16.3372},
				Type: relais.TypeFM, Band: relais.Band2m, TxFrequency: 145.6, RxFrequency: 145.0,
				Shift: -600, Status: relais.StatusActive, Operator: "ADL 101"},
			{ID: "oe6xfe", Callsign: "OE6XFE", Site: "Schöckl", State: relais.StateStyria,
				Type: relais.TypeDMR, Band: relais.Band70cm, TxFrequency: 438.5, Shift: -7600,
				Status: relais.StatusInactive},
		},
	})
	return s
}

func TestPrintTableAndSummary(t *testing.T) {
	s := testSession()
	var buf bytes.Buffer

	printTable(&buf, s.Visible())
	printSummary(&buf, s, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))

	out := buf.String()
	assert.Contains(t, out, "CALLSIGN")
	assert.Contains(t, out, "OE1XUU")
	assert.Contains(t, out, "145.6000 MHz")
	assert.Contains(t, out, "-600 kHz")
	assert.NotContains(t, out, "OE6XFE")
	assert.Contains(t, out, "1 of 2 repeaters, dataset 1.4.0 updated 4 days ago")
	assert.Contains(t, out, "18.10.2026 03:00 UTC")
}

func TestPrintSelection(t *testing.T) {
	s := testSession()
	s.SetFilters(filter.Default().ToggleBand(relais.Band70cm))
	require.NoError(t, s.Select("oe1xuu"))

	var buf bytes.Buffer
	printSelection(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "OE1XUU (FM 2m) - Kahlenberg")
	assert.Contains(t, out, "Analog FM")
	assert.Contains(t, out, "145.6000 MHz / 145.0000 MHz")
	assert.Contains(t, out, "48.27670° N, 16.33720° E")
	assert.Contains(t, out, "ADL 101")
	assert.Contains(t, out, "hidden by the current filters")
	assert.NotContains(t, out, "outside the map area")
}

func TestQueryFiltersApply(t *testing.T) {
	s := viewer.NewSession()
	require.NoError(t, queryFilters{
		bands: []string{"70cm"},
		types: []string{"DMR", "DMR"},
	}.apply(s))

	spec := s.Filters()
	assert.Equal(t, []relais.Band{relais.Band70cm}, spec.Bands)
	assert.Equal(t, []relais.Type{relais.TypeDMR}, spec.Types)
	assert.Equal(t, []relais.Status{relais.StatusActive}, spec.Statuses)

	s = viewer.NewSession()
	require.NoError(t, queryFilters{
		states:    []string{"Steiermark"},
		statuses:  []string{"inaktiv"},
		statusSet: true,
		search:    "schöckl",
	}.apply(s))
	spec = s.Filters()
	assert.Equal(t, []relais.State{relais.StateStyria}, spec.States)
	assert.Equal(t, []relais.Status{relais.StatusInactive}, spec.Statuses)
	assert.Equal(t, "schöckl", spec.Query)

	s = viewer.NewSession()
	require.NoError(t, queryFilters{all: true, statuses: []string{"aktiv"}, statusSet: true}.apply(s))
	assert.True(t, s.Filters().IsUnrestricted())

	err := queryFilters{bands: []string{"11m"}}.apply(viewer.NewSession())
	assert.ErrorIs(t, err, filter.ErrInvalidFilter)
}

func TestPrintSummaryUnfiltered(t *testing.T) {
	s := testSession()
	s.SetFilters(filter.Spec{})

	var buf bytes.Buffer
	printSummary(&buf, s, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	assert.Contains(t, buf.String(), "2 of 2 repeaters (unfiltered), dataset 1.4.0")
}
