package apierr

import (
	"fmt"
	"net/http"
)

// Error is a failure already mapped onto an HTTP status and a stable code.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error { return New(http.StatusBadRequest, code, err) }

func Unauthorized(err error) *Error { return New(http.StatusUnauthorized, "unauthorized", err) }

func NotFound(code string, err error) *Error { return New(http.StatusNotFound, code, err) }

func Conflict(err error) *Error { return New(http.StatusConflict, "conflict", err) }

func Internal(code string, err error) *Error { return New(http.StatusInternalServerError, code, err) }
