package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call. The kinds are mutually exclusive so the
// dashboard can word each one differently.
type Kind int

const (
	// KindTimeout: the per-call deadline passed before a full response.
	KindTimeout Kind = iota + 1
	// KindTransport: network or DNS failure before any response arrived.
	KindTransport
	// KindServer: non-2xx response.
	KindServer
	// KindMalformed: 2xx response missing or mistyping a required field.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method. Use errors.As to inspect it:
//
//	var apiErr *api.Error
//	if errors.As(err, &apiErr) && apiErr.Kind == api.KindServer {
//	    log.Println(apiErr.StatusCode, apiErr.Message)
//	}
type Error struct {
	Kind Kind
	// Op is the request, e.g. "GET /api/repos".
	Op string
	// StatusCode is set for KindServer.
	StatusCode int
	// Message is the server's "error" field for KindServer (possibly
	// empty), or a description of the problem otherwise.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		if e.Message == "" {
			return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
		}
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	case KindTimeout:
		return fmt.Sprintf("%s: request timed out", e.Op)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// ServerMessage returns the "error" text the server attached to a non-2xx
// response, or "" when err carries none.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindServer {
		return apiErr.Message
	}
	return ""
}

// StatusCode returns the HTTP status of a KindServer error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindServer {
		return apiErr.StatusCode
	}
	return 0
}
