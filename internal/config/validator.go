package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Validator is the interface for validating configuration.
type Validator interface {
	Validate() error
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "disabled", "off"}

// Validate validates Config.
func (c *Config) Validate() error {
	var errors []ValidationError

	// Gateway URL is only dialed in live mode.
	if !c.Demo.Enabled {
		if c.Gateway.URL == "" {
			errors = append(errors, ValidationError{
				Field:   "gateway.url",
				Message: "gateway URL is required",
			})
		} else if u, err := url.Parse(c.Gateway.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "gateway.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "ws" && u.Scheme != "wss" {
			errors = append(errors, ValidationError{
				Field:   "gateway.url",
				Message: fmt.Sprintf("scheme must be ws or wss, got %q", u.Scheme),
			})
		}
	}

	if err := c.Gateway.ReconnectDelays.Validate(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "gateway.reconnect_delays",
			Message: err.Error(),
		})
	}

	if c.Gateway.HandshakeTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gateway.handshake_timeout",
			Message: "must be positive",
		})
	}

	if c.Gateway.WriteTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gateway.write_timeout",
			Message: "must be positive",
		})
	}

	if c.Demo.MinDelay < 0 || c.Demo.MaxDelay < 0 || c.Demo.FinalDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "demo",
			Message: "delays cannot be negative",
		})
	}
	if c.Demo.MaxDelay < c.Demo.MinDelay {
		errors = append(errors, ValidationError{
			Field:   "demo.max_delay",
			Message: fmt.Sprintf("must be at least min_delay (%s)", c.Demo.MinDelay),
		})
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q (must be one of: trace, debug, info, warn, error, disabled)", c.Logging.Level),
		})
	}

	if len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}

	return nil
}
