package service

import (
	"errors"
	"net/http"
)

// StatusError is a service-level error that carries the HTTP class the
// controllers should answer with. Errors without a status map to 500.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	return e.Msg
}

func ErrValidation(msg string) error {
	return &StatusError{Code: http.StatusBadRequest, Msg: msg}
}

func ErrUnauthorized(msg string) error {
	return &StatusError{Code: http.StatusUnauthorized, Msg: msg}
}

func ErrForbidden(msg string) error {
	return &StatusError{Code: http.StatusForbidden, Msg: msg}
}

func ErrNotFound(msg string) error {
	return &StatusError{Code: http.StatusNotFound, Msg: msg}
}

// StatusOf returns the HTTP status for err, or 500 for untyped errors.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

func IsStatus(err error, code int) bool {
	return StatusOf(err) == code
}
