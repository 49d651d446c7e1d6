package relais

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned by the Parse* helpers for values outside the enum.
var ErrUnknownValue = errors.New("unknown value")

// Band is an amateur radio frequency band.
type Band string

// All bands carried in the dataset, ordered by frequency.
const (
	Band10m  Band = "10m"
	Band6m   Band = "6m"
	Band2m   Band = "2m"
	Band70cm Band = "70cm"
	Band23cm Band = "23cm"
	Band13cm Band = "13cm"
	Band9cm  Band = "9cm"
	Band6cm  Band = "6cm"
	Band3cm  Band = "3cm"
)

// Bands lists every band in display order.
var Bands = []Band{Band10m, Band6m, Band2m, Band70cm, Band23cm, Band13cm, Band9cm, Band6cm, Band3cm}

var bandInfo = map[Band]struct {
	description string
	color       string
}{
	Band10m:  {"28 MHz", "#f97316"},
	Band6m:   {"50 MHz", "#eab308"},
	Band2m:   {"144 MHz", "#22c55e"},
	Band70cm: {"430 MHz", "#3b82f6"},
	Band23cm: {"1.3 GHz", "#8b5cf6"},
	Band13cm: {"2.3 GHz", "#ec4899"},
	Band9cm:  {"3.4 GHz", "#14b8a6"},
	Band6cm:  {"5.7 GHz", "#f43f5e"},
	Band3cm:  {"10 GHz", "#6366f1"},
}

// Description returns the band's nominal frequency, e.g. "144 MHz" for 2m.
func (b Band) Description() string { return bandInfo[b].description }

// Color returns the marker colour used for the band.
func (b Band) Color() string { return bandInfo[b].color }

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	_, ok := bandInfo[b]
	return ok
}

// ParseBand converts s into a Band.
func ParseBand(s string) (Band, error) {
	b := Band(s)
	if !b.Valid() {
		return "", fmt.Errorf("band %q: %w", s, ErrUnknownValue)
	}
	return b, nil
}

// Type is the operating mode of a repeater.
type Type string

const (
	TypeFM     Type = "FM"
	TypeDMR    Type = "DMR"
	TypeDSTAR  Type = "D-STAR"
	TypeC4FM   Type = "C4FM"
	TypeTETRA  Type = "TETRA"
	TypeATV    Type = "ATV"
	TypeBeacon Type = "Bake"
)

// Types lists every repeater type in display order.
var Types = []Type{TypeFM, TypeDMR, TypeDSTAR, TypeC4FM, TypeTETRA, TypeATV, TypeBeacon}

var typeInfo = map[Type]struct {
	description string
	color       string
}{
	TypeFM:     {"Analog FM", "#22c55e"},
	TypeDMR:    {"Digital Mobile Radio", "#3b82f6"},
	TypeDSTAR:  {"Digital Smart Tech", "#8b5cf6"},
	TypeC4FM:   {"Yaesu System Fusion", "#f97316"},
	TypeTETRA:  {"TETRA Digital", "#ec4899"},
	TypeATV:    {"Amateur Television", "#ef4444"},
	TypeBeacon: {"Bake/Beacon", "#6b7280"},
}

// Description returns a readable name for the type.
func (t Type) Description() string { return typeInfo[t].description }

// Color returns the marker colour used for the type.
func (t Type) Color() string { return typeInfo[t].color }

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	_, ok := typeInfo[t]
	return ok
}

// ParseType converts s into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("type %q: %w", s, ErrUnknownValue)
	}
	return t, nil
}

// State is one of Austria's nine federal states (Bundesländer).
type State string

const (
	StateVienna       State = "Wien"
	StateLowerAustria State = "Niederösterreich"
	StateUpperAustria State = "Oberösterreich"
	StateStyria       State = "Steiermark"
	StateCarinthia    State = "Kärnten"
	StateSalzburg     State = "Salzburg"
	StateTyrol        State = "Tirol"
	StateVorarlberg   State = "Vorarlberg"
	StateBurgenland   State = "Burgenland"
)

// States lists the federal states in display order.
var States = []State{
	StateVienna,
	StateLowerAustria,
	StateUpperAustria,
	StateStyria,
	StateCarinthia,
	StateSalzburg,
	StateTyrol,
	StateVorarlberg,
	StateBurgenland,
}

// Valid reports whether s is a known federal state.
func (s State) Valid() bool {
	for _, st := range States {
		if st == s {
			return true
		}
	}
	return false
}

// ParseState converts s into a State.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("state %q: %w", s, ErrUnknownValue)
	}
	return st, nil
}

// Status is the operational status of a repeater.
type Status string

const (
	StatusActive   Status = "aktiv"
	StatusInactive Status = "inaktiv"
	StatusUnknown  Status = "unbekannt"
)

// Statuses lists all statuses in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusUnknown}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusUnknown
}

// ParseStatus converts s into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("status %q: %w", s, ErrUnknownValue)
	}
	return st, nil
}
