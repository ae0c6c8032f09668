// Package apperr defines the failure kinds shared by the order and dispatch
// services. Callers tell them apart with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when a channel, credentials or webhook
// setting is missing or unusable.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return format("configuration error", e.Message, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthError is returned when the service-account token exchange fails.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return format("auth error", e.Message, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamDataError is returned when the spreadsheet could not be read.
// Message never carries the upstream response body.
type UpstreamDataError struct {
	Message string
	Err     error
}

func (e *UpstreamDataError) Error() string {
	return format("upstream data error", e.Message, e.Err)
}

func (e *UpstreamDataError) Unwrap() error { return e.Err }

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// DeliveryError is returned once the dispatch webhook retry budget is spent.
// StatusCode is 0 when the last attempt never got a response.
type DeliveryError struct {
	OrderID    string
	StatusCode int
	Message    string
	Attempts   int
}

func (e *DeliveryError) Error() string {
	status := "n/a"
	if e.StatusCode != 0 {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("dispatch webhook failed for order %s (status %s): %s", e.OrderID, status, e.Message)
}

// KindOf names the failure kind of err for logging, or "unknown".
func KindOf(err error) string {
	var (
		cfgErr      *ConfigurationError
		authErr     *AuthError
		upstreamErr *UpstreamDataError
		validErr    *ValidationError
		deliveryErr *DeliveryError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &upstreamErr):
		return "upstream_data"
	case errors.As(err, &validErr):
		return "validation"
	case errors.As(err, &deliveryErr):
		return "delivery"
	default:
		return "unknown"
	}
}

// IsClientError reports whether err should be answered with a 4xx.
func IsClientError(err error) bool {
	var (
		validErr    *ValidationError
		deliveryErr *DeliveryError
	)
	return errors.As(err, &validErr) || errors.As(err, &deliveryErr)
}

func format(kind, msg string, err error) string {
	switch {
	case msg != "" && err != nil:
		return fmt.Sprintf("%s: %s: %v", kind, msg, err)
	case msg != "":
		return fmt.Sprintf("%s: %s", kind, msg)
	case err != nil:
		return fmt.Sprintf("%s: %v", kind, err)
	default:
		return kind
	}
}
