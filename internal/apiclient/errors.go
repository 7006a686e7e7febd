package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// Kind classifies a failed backend call the way the dashboard reports it.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindConnectionRefused Kind = "connection_refused"
	KindConnectionReset   Kind = "connection_reset"
	KindUnauthorized      Kind = "unauthorized"
	KindServer            Kind = "server"
	KindDecode            Kind = "decode"
	KindUnknown           Kind = "unknown"
)

// Error is returned by every Client call that did not produce a 2xx response.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.Message != "":
		return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("api %s (%d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("api %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("api %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or KindUnknown when err did not come from the client.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether the backend rejected the caller's credentials.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

func classifyTransportError(err error) *Error {
	kind := KindUnknown
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = KindConnectionRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE), errors.Is(err, io.ErrUnexpectedEOF):
		kind = KindConnectionReset
	}
	return &Error{Kind: kind, Err: err}
}

// UserMessage turns err into the text shown in a notification. Network failures get
// a message per subtype, backend failures use the message from the response body,
// everything else falls back to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}

	switch apiErr.Kind {
	case KindTimeout:
		return "The request timed out. The server is taking too long to respond, please try again."
	case KindConnectionRefused:
		return "Unable to connect to the server. Please check that the service is running and try again."
	case KindConnectionReset:
		return "The connection to the server was reset. Please try again."
	case KindUnauthorized:
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return "Your session has expired. Please log in again."
	case KindServer:
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return fallback
}
