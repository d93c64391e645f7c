// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errs defines the classified failures shared by the model backends,
// the session managers and the file storage layer.
package errs

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind categorizes an error for handling.
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingCredential
	KindAuth
	KindBackendUnavailable
	KindBackend
	KindPullFailed
	KindNoModelLoaded
	KindNotFound
	KindAlreadyExists
	KindStorage
	KindBusy
	KindInvalidInput
	KindCommandFailed
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "MissingCredential"
	case KindAuth:
		return "AuthError"
	case KindBackendUnavailable:
		return "BackendUnavailable"
	case KindBackend:
		return "BackendError"
	case KindPullFailed:
		return "PullFailed"
	case KindNoModelLoaded:
		return "NoModelLoaded"
	case KindNotFound:
		return "NotFound"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindStorage:
		return "StorageError"
	case KindBusy:
		return "Busy"
	case KindInvalidInput:
		return "InvalidInput"
	case KindCommandFailed:
		return "CommandFailed"
	default:
		return "Unknown"
	}
}

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is a classified failure. Status and Body are only set for
// KindBackend errors produced from a non-success HTTP response.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Body    string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Kind == KindBackend && e.Status != 0 {
		msg = fmt.Sprintf("%s: %d %s", e.Message, e.Status, e.Body)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below match every error of their class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel errors for errors.Is checks.
var (
	ErrMissingCredential  = &Error{Kind: KindMissingCredential, Message: "missing credential"}
	ErrAuth               = &Error{Kind: KindAuth, Message: "authentication failed"}
	ErrBackendUnavailable = &Error{Kind: KindBackendUnavailable, Message: "backend unavailable"}
	ErrBackend            = &Error{Kind: KindBackend, Message: "backend error"}
	ErrPullFailed         = &Error{Kind: KindPullFailed, Message: "model pull failed"}
	ErrNoModelLoaded      = &Error{Kind: KindNoModelLoaded, Message: "No model is loaded. Please load a model first."}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrStorage            = &Error{Kind: KindStorage, Message: "storage error"}
	ErrBusy               = &Error{Kind: KindBusy, Message: "a request is already in progress"}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrCommandFailed      = &Error{Kind: KindCommandFailed, Message: "command failed"}
)

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Backend creates a BackendError carrying the HTTP status and response body.
func Backend(message string, status int, body string) *Error {
	return &Error{Kind: KindBackend, Message: message, Status: status, Body: body}
}

// KindOf returns the kind of err, or KindUnknown when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
