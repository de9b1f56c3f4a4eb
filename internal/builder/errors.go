package builder

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInputClosed       = errors.New("input closed")
)

// ConfigError points at the offending field of a building configuration,
// e.g. "rooms[0].surfaces[1].u_w_m2k".
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}
