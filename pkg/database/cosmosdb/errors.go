package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidConfiguration is returned when a required setting is missing.
	// No request is attempted.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument is returned for malformed resource identifiers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidKey is returned when the master key is not valid base64.
	ErrInvalidKey = errors.New("invalid master key")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport failure")
)

// Error is returned for every non-2xx response from the service.
type Error struct {
	StatusCode int
	Status     string // reason phrase
	Body       []byte

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.reason())
	}

	return fmt.Sprintf("%d %s: %s, %s", e.StatusCode, e.reason(), e.Code, e.Message)
}

func (e *Error) reason() string {
	if e.Status != "" {
		return e.Status
	}

	return http.StatusText(e.StatusCode)
}

// IsErrorStatusCode returns true if err is of type Error and its StatusCode
// matches statusCode
func IsErrorStatusCode(err error, statusCode int) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.StatusCode == statusCode
	}

	return false
}

// TransportError wraps a failure of the HTTP exchange itself (network error,
// timeout or cancellation).  Whether the caller retries is up to the caller.
type TransportError struct {
	Operation Operation
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
