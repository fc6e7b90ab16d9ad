// Package apperr classifies request failures so the HTTP layer can map them
// to a status code and a stable error code.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// UpstreamError is the zero value: anything unclassified is treated as a
	// failure of a collaborator (data store, broker).
	UpstreamError Kind = iota
	InvalidRequest
	ParseError
	AuthError
)

func (k Kind) Code() string {
	switch k {
	case InvalidRequest:
		return "invalid_request"
	case ParseError:
		return "parse_error"
	case AuthError:
		return "auth_error"
	default:
		return "upstream_error"
	}
}

func (k Kind) Status() int {
	switch k {
	case InvalidRequest, ParseError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (k Kind) String() string { return k.Code() }

// Error is a classified failure. Message is safe to show to clients, Err
// carries the underlying cause (decoder or driver output).
type Error struct {
	Kind    Kind
	Message string
	Status  int // overrides Kind.Status when non-zero
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Kind.Status()
}

// Detail returns the underlying cause text, if any.
func (e *Error) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func Invalid(msg string) *Error { return &Error{Kind: InvalidRequest, Message: msg} }

func Parse(msg string, err error) *Error {
	return &Error{Kind: ParseError, Message: msg, Err: err}
}

func Auth(msg string, err error) *Error {
	return &Error{Kind: AuthError, Message: msg, Err: err}
}

func Upstream(msg string, err error) *Error {
	return &Error{Kind: UpstreamError, Message: msg, Err: err}
}

// WithStatus returns a copy of e answering with the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// From classifies any error. Unclassified errors become UpstreamError with a
// generic message so driver output never reaches the client by default.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Upstream("upstream failure", err)
}

// KindOf reports the kind of err; unclassified errors are UpstreamError.
func KindOf(err error) Kind {
	return From(err).Kind
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
