// Package format renders repeater values for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dbehnke/relaisblick/internal/relais"
)

// Missing is shown for absent optional values.
const Missing = "-"

var german = message.NewPrinter(language.German)

// Frequency formats a frequency in MHz. Microwave frequencies (>= 1 GHz)
// get three decimals, everything else four.
func Frequency(mhz float64) string {
	if mhz >= 1000 {
		return strconv.FormatFloat(mhz, 'f', 3, 64) + " MHz"
	}
	return strconv.FormatFloat(mhz, 'f', 4, 64) + " MHz"
}

// Shift formats a repeater shift given in kHz, always signed.
func Shift(khz float64) string {
	sign := ""
	if khz >= 0 {
		sign = "+"
	}
	if math.Abs(khz) >= 1000 {
		return sign + strconv.FormatFloat(khz/1000, 'f', 1, 64) + " MHz"
	}
	return sign + strconv.FormatFloat(khz, 'f', -1, 64) + " kHz"
}

// CTCSS formats a subtone. Absent and zero tones are shown as Missing.
func CTCSS(hz *float64) string {
	if hz == nil || *hz == 0 {
		return Missing
	}
	return strconv.FormatFloat(*hz, 'f', 1, 64) + " Hz"
}

// Distance formats a distance in km, switching to metres below 1 km.
func Distance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return strconv.FormatFloat(km, 'f', 1, 64) + " km"
}

// Altitude formats metres above sea level with German digit grouping.
func Altitude(m *float64) string {
	if m == nil {
		return Missing
	}
	return german.Sprint(number.Decimal(*m)) + " m"
}

// Coordinates formats a position with five decimals and hemispheres.
func Coordinates(c relais.Coordinates) string {
	latDir := "N"
	if c.Lat < 0 {
		latDir = "S"
	}
	lngDir := "E"
	if c.Lng < 0 {
		lngDir = "W"
	}
	return fmt.Sprintf("%.5f° %s, %.5f° %s", math.Abs(c.Lat), latDir, math.Abs(c.Lng), lngDir)
}

// Date formats an ISO-8601 timestamp as dd.mm.yyyy. Unparsable input is
// returned unchanged.
func Date(iso string) string {
	t, err := relais.ParseTimestamp(iso)
	if err != nil {
		return iso
	}
	return t.Format("02.01.2006")
}

// Age describes how long ago t was, relative to now.
func Age(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
