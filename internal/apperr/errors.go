// Package apperr defines the error kinds surfaced by the list generator:
// configuration problems detected before any network call, and failures
// reported by one of the remote services.
package apperr

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ConfigError reports unusable input or configuration (unknown city key,
// missing credentials). It is always raised before a network call.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// NewConfigError returns a ConfigError for field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RemoteError reports a failed call to a remote service. StatusCode is 0
// when the request never produced a response (transport failure, timeout).
type RemoteError struct {
	Service    string
	Op         string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Service, e.Op)
	switch {
	case e.StatusCode != 0:
		fmt.Fprintf(&b, ": unexpected status %d", e.StatusCode)
		if body := strings.TrimSpace(e.Body); body != "" {
			fmt.Fprintf(&b, ": %s", body)
		}
	case e.Timeout:
		b.WriteString(": timeout")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewStatusError builds a RemoteError for a non-success HTTP response.
func NewStatusError(service, op string, statusCode int, body []byte) *RemoteError {
	return &RemoteError{Service: service, Op: op, StatusCode: statusCode, Body: string(body)}
}

// NewTransportError builds a RemoteError for a request that never got a
// response. Timeouts are flagged so callers can report them distinctly.
func NewTransportError(service, op string, err error) *RemoteError {
	re := &RemoteError{Service: service, Op: op, Err: err}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		re.Timeout = true
	}
	return re
}

// IsConfig reports whether err (or any error in its chain) is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsRemote reports whether err (or any error in its chain) is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Kind names the error kind for display at the boundary layer.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfig(err):
		return "config"
	case IsRemote(err):
		return "remote"
	default:
		return "internal"
	}
}
