package loader

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by a fetch that was replaced by a newer Load
// or Retry before it finished. Such a fetch never changes the loader state.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Kind classifies why a fetch failed. It is used for logging and metrics
// only; users see a single message regardless of kind.
type Kind int

const (
	KindNetwork Kind = iota // request could not be sent or no response
	KindHTTP                // non-2xx status
	KindParse               // body is not a valid dataset
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindHTTP:
		return "http_error"
	case KindParse:
		return "parse_error"
	default:
		return "unknown_error"
	}
}

// LoadError is a failed dataset fetch.
type LoadError struct {
	Kind       Kind
	StatusCode int // set for KindHTTP
	Err        error
}

func (e *LoadError) Error() string {
	return "Fehler beim Laden der Relaisdaten: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

func httpError(code int) *LoadError {
	return &LoadError{
		Kind:       KindHTTP,
		StatusCode: code,
		Err:        fmt.Errorf("HTTP Error: %d", code),
	}
}
