package source

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrSourceUnavailable is returned when a path, URL or table cannot be read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrParse is returned when the content is not valid delimited tabular data.
	ErrParse = errors.New("source content is not valid tabular data")
)

// LoadError is a load failure for one source. It unwraps to both its kind
// (ErrSourceUnavailable or ErrParse) and the underlying cause.
type LoadError struct {
	Source string
	Kind   error
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func unavailable(src string, err error) error {
	return &LoadError{Source: Redact(src), Kind: ErrSourceUnavailable, Err: err}
}

func parseFailure(src string, err error) error {
	return &LoadError{Source: Redact(src), Kind: ErrParse, Err: err}
}

// Redact hides URL passwords so connection strings never reach logs.
func Redact(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.User == nil {
		return src
	}
	return u.Redacted()
}
