package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// RequestError wraps transport-level failures: connection refused, DNS,
// timeouts. The HTTP exchange never completed.
type RequestError struct {
	Op  string
	URL string
	Err error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("backend: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Timeout reports whether the request failed by exceeding its deadline.
func (e *RequestError) Timeout() bool {
	if e == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// StatusError is a completed HTTP exchange with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Body == "" {
		return fmt.Sprintf("backend: %s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend: %s returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// IsTimeout reports whether err is a timed-out backend request.
func IsTimeout(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Timeout()
}

// IsBackendFailure reports whether err originated from the backend exchange,
// transport or HTTP status alike.
func IsBackendFailure(err error) bool {
	var reqErr *RequestError
	var statusErr *StatusError
	return errors.As(err, &reqErr) || errors.As(err, &statusErr)
}
