package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies connector failures into the four categories callers can
// act on. None of them are retried inside a connector.
type ErrorKind int

const (
	// ErrKindAuth marks credential failures (401/403).
	ErrKindAuth ErrorKind = iota
	// ErrKindRateLimited marks provider throttling (429).
	ErrKindRateLimited
	// ErrKindInvalidRequest marks requests the provider rejects as malformed
	// or unsupported, e.g. an image sent to a text-only model.
	ErrKindInvalidRequest
	// ErrKindNetwork marks transport failures and provider-side errors (5xx).
	ErrKindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindAuth:
		return "auth"
	case ErrKindRateLimited:
		return "rate_limited"
	case ErrKindInvalidRequest:
		return "invalid_request"
	case ErrKindNetwork:
		return "network"
	}
	return "unknown"
}

// Error is the connector-layer error type. Provider identifies which connector
// produced it; StatusCode is zero for pre-request and transport failures.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a connector error with an explicit kind.
func NewError(kind ErrorKind, provider, message string) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message}
}

// WrapNetworkError wraps a transport-level failure (DNS, dial, timeout) as a
// network-kind error.
func WrapNetworkError(provider string, err error) *Error {
	return &Error{Kind: ErrKindNetwork, Provider: provider, Err: err}
}

// ClassifyStatus maps a non-2xx HTTP status code to the error taxonomy.
// 401/403 are credential failures, 429 is throttling, remaining 4xx are
// invalid requests, and 5xx are treated as provider-side network failures.
func ClassifyStatus(provider string, statusCode int, body string) *Error {
	kind := ErrKindNetwork
	switch {
	case statusCode == 401 || statusCode == 403:
		kind = ErrKindAuth
	case statusCode == 429:
		kind = ErrKindRateLimited
	case statusCode >= 400 && statusCode < 500:
		kind = ErrKindInvalidRequest
	}
	return &Error{Kind: kind, Provider: provider, StatusCode: statusCode, Message: body}
}

// IsKind reports whether err is a connector error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var connErr *Error
	if errors.As(err, &connErr) {
		return connErr.Kind == kind
	}
	return false
}

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool { return IsKind(err, ErrKindAuth) }

// IsRateLimited reports whether err is a provider throttling response.
func IsRateLimited(err error) bool { return IsKind(err, ErrKindRateLimited) }

// IsInvalidRequest reports whether err is a rejected/unsupported request.
func IsInvalidRequest(err error) bool { return IsKind(err, ErrKindInvalidRequest) }

// IsNetwork reports whether err is a transport or provider-side failure.
func IsNetwork(err error) bool { return IsKind(err, ErrKindNetwork) }
