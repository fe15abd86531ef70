package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes surfaced at the boundary.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotificationFailure = errors.New("notification failure")
)

// UpstreamError wraps a failed fetch from an upstream counter source.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Source, e.Err)
}

// Unwrap exposes the cause.
func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUpstreamUnavailable) hold for every UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// NewUpstreamError builds an UpstreamError with a formatted cause.
func NewUpstreamError(source, format string, args ...any) error {
	return &UpstreamError{Source: source, Err: fmt.Errorf(format, args...)}
}

// NotificationError wraps a failed delivery to a notification sink.
type NotificationError struct {
	Sink string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNotificationFailure, e.Sink, e.Err)
}

// Unwrap exposes the cause.
func (e *NotificationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotificationFailure) hold for every NotificationError.
func (e *NotificationError) Is(target error) bool { return target == ErrNotificationFailure }
