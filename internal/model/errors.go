package model

import (
	"errors"
	"fmt"
)

// ErrConfig marks invalid configuration or input; it fails a run before any windowing.
var ErrConfig = errors.New("configuration error")

// ConfigError names the offending field and value.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %s", ErrConfig, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }
