package remote

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// ConfigError reports a store that cannot be reached or is misconfigured.
type ConfigError struct {
	Backend string
	Err     error
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Backend, e.Err)
}

func (e ConfigError) Unwrap() error { return e.Err }
