package http

import (
	"errors"

	"github.com/tasklist/taskboard/internal/msg"
)

var (
	// ErrServerError is returned when the server was not able to correctly handle our request (status code >= 500).
	ErrServerError = errors.New(msg.InternalServerError)
	// ErrUnexpectedStatus is returned for any other non-success response.
	ErrUnexpectedStatus = errors.New(msg.UnexpectedStatus)
	// ErrMalformedVersion is returned when the version marker is not a plain, single-line version string.
	ErrMalformedVersion = errors.New(msg.MalformedVersion)
)
