package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a backend failure so callers can react without knowing
// SDK-specific error types.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindRateLimited
	KindNetwork
	KindUnsupported
	KindBlocked
	KindEmptyResponse
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	case KindUnsupported:
		return "unsupported"
	case KindBlocked:
		return "blocked"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// Error is the provider-tagged error returned by every adapter's Summarize.
// Its message reads "<Provider> API error: <original message>".
type Error struct {
	Provider string // display name, e.g. "Gemini"
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err for the named provider. The kind is derived from
// status when non-zero, otherwise from the error itself.
func NewError(providerName string, status int, err error) *Error {
	kind := KindFromStatus(status)
	if kind == KindUnknown {
		kind = classify(err)
	}
	return &Error{Provider: providerName, Kind: kind, Err: err}
}

// Errorf builds a provider error of the given kind from a formatted message.
func Errorf(providerName string, kind Kind, format string, args ...any) *Error {
	return &Error{Provider: providerName, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ErrMissingAPIKey is wrapped when an adapter is used without a credential.
var ErrMissingAPIKey = errors.New("API key is required")

// KindFromStatus maps an HTTP status code to a Kind.
func KindFromStatus(status int) Kind {
	switch {
	case status == 0:
		return KindUnknown
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusNotFound || status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindUnsupported
	case status >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}

// IsKind reports whether err carries a provider Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind == kind
	}
	return false
}

func classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return KindUnauthorized
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}
