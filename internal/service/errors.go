package service

import (
	"errors"
	"fmt"
)

// Controller errors.
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownAction   = errors.New("unknown control action")
	ErrShutdownLatched = errors.New("controller is in emergency shutdown")
)

// ConfigError describes which configuration field was rejected.
// It matches ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
