package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated indicates no bearer token is cached for the session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRemoteFailure is the uniform signal for any failed upstream call.
	ErrRemoteFailure = errors.New("remote operation failed")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
