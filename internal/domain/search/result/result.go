package result

import (
	"errors"
	"fmt"
	"time"
)

var (
	errMissingField = errors.New("missing or empty")
	errBadTime      = errors.New("not an RFC 3339 timestamp")
)

// Row is one matched document returned by the backend, keyed by field name.
// Values arrive as strings; typed access goes through the accessors below.
type Row map[string]string

// String returns the named field, or "" when it is absent.
func (r Row) String(name string) string { return r[name] }

// Required returns the named field and fails if it is absent or empty.
func (r Row) Required(name string) (string, error) {
	v, ok := r[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%s: %w", name, errMissingField)
	}
	return v, nil
}

// Time parses the named field as an RFC 3339 timestamp (fractional seconds allowed).
func (r Row) Time(name string) (time.Time, error) {
	v, err := r.Required(name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %q", name, errBadTime, v)
	}
	return t, nil
}
