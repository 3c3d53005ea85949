// Package apperr holds the error shapes every fetcher resolves to.
package apperr

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindRateLimit  Kind = "rate_limit"
	KindTransport  Kind = "transport"
	KindConnection Kind = "connection"
	KindUnknown    Kind = "unknown"
)

const (
	RayValidation = "validation-error"
	RayRateLimit  = "rate-limit"
	RayConnection = "connection-error"
	RayUnknown    = "unknown"
	RayNoSession  = "no-session"
)

// Error is the uniform {message, ray_id, status?} shape returned to callers.
type Error struct {
	Kind       Kind          `json:"-"`
	Message    string        `json:"message"`
	RayID      string        `json:"ray_id"`
	Status     int           `json:"status,omitempty"`
	RetryAfter time.Duration `json:"-"`

	cause error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d, ray %s)", e.Message, e.Status, e.RayID)
	}
	return fmt.Sprintf("%s (ray %s)", e.Message, e.RayID)
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, RayID: RayValidation}
}

// SessionMissing is a validation error for flows that need a looked-up order.
func SessionMissing(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, RayID: RayNoSession, Status: http.StatusNotFound}
}

func RateLimited(retryAfter time.Duration) *Error {
	e := &Error{
		Kind:       KindRateLimit,
		RayID:      RayRateLimit,
		Status:     http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
	e.Message = fmt.Sprintf("Too many requests, try again in %d seconds", e.RetryAfterSeconds())
	return e
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (e *Error) RetryAfterSeconds() int64 {
	return int64((e.RetryAfter + time.Second - 1) / time.Second)
}

func Transport(status int, msg, rayID string) *Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: KindTransport, Message: msg, RayID: rayID, Status: status}
}

func Connection(cause error) *Error {
	return &Error{
		Kind:    KindConnection,
		Message: "Unable to reach the order service",
		RayID:   RayConnection,
		cause:   cause,
	}
}

func Unknown(cause error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Message: "An unexpected error occurred",
		RayID:   RayUnknown,
		cause:   cause,
	}
}

// From classifies any error. Values that are not *Error become Unknown.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unknown(err)
}

func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransport && e.Status == http.StatusNotFound
}

// Retryable reports whether a retry may recover from err.
// Validation and rate-limit errors never are.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindTransport || e.Kind == KindConnection
}
