package clients

import (
	"errors"
	"fmt"
)

// ErrNoToken is reported (inside an AuthError) when a call is attempted
// without credentials. No request is sent in that case.
var ErrNoToken = errors.New("no auth token configured")

// NetworkError covers everything that kept a response from arriving:
// dial failures, timeouts, cancellation and an open circuit breaker.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response other than 401/403.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// AuthError is a missing token or a 401/403. It is never retried.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return "auth: " + e.Err.Error()
	}
	return fmt.Sprintf("auth: backend returned %d", e.StatusCode)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DecodeError is a 2xx response whose body did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// FetchError names the client operation that failed.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}
