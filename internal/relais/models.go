package relais

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used for distance calculations.
const EarthRadiusKm = 6371.0

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceTo returns the great-circle distance to o in kilometres (haversine).
func (c Coordinates) DistanceTo(o Coordinates) float64 {
	dLat := toRadians(o.Lat - c.Lat)
	dLng := toRadians(o.Lng - c.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(c.Lat))*math.Cos(toRadians(o.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Text is an optional free-text field. Anything other than a JSON string
// decodes to the empty (absent) value instead of failing the whole record.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Text(s)
	return nil
}

// Relais is a single repeater station.
type Relais struct {
	ID          string      `json:"id"`
	Callsign    string      `json:"rufzeichen"`
	Site        string      `json:"standort"`
	State       State       `json:"bundesland"`
	Coordinates Coordinates `json:"koordinaten"`
	Type        Type        `json:"typ"`
	Band        Band        `json:"band"`
	TxFrequency float64     `json:"txFrequenz"` // MHz
	RxFrequency float64     `json:"rxFrequenz"` // MHz
	Shift       float64     `json:"shift"`      // kHz

	CTCSS       *float64 `json:"ctcss,omitempty"` // Hz
	DCSCode     Text     `json:"dcsCode,omitempty"`
	EchoLink    *int     `json:"echolink,omitempty"`
	DMRID       *int     `json:"dmrId,omitempty"`
	ColorCode   *int     `json:"colorCode,omitempty"`
	DStarModule Text     `json:"dstarModule,omitempty"`

	Operator   Text     `json:"betreiber,omitempty"`
	QTH        Text     `json:"qth,omitempty"`
	Altitude   *float64 `json:"seehöhe,omitempty"` // metres
	Status     Status   `json:"status"`
	Remark     Text     `json:"bemerkung,omitempty"`
	LastUpdate string   `json:"lastUpdate"`
}

// SearchText returns the lower-cased text the free-text search matches
// against: callsign, site, state, QTH and operator, absent fields skipped.
func (r Relais) SearchText() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{r.Callsign, r.Site, string(r.State), string(r.QTH), string(r.Operator)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// String returns a short human readable description.
func (r Relais) String() string {
	result := fmt.Sprintf("%s (%s %s)", r.Callsign, r.Type, r.Band)
	if r.Site != "" {
		result += fmt.Sprintf(" - %s", r.Site)
	}
	return result
}
