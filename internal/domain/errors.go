package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing catalog record.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnauthorized signals a missing or invalid API credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput signals a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnconfigured signals missing backend configuration for an operation.
	ErrUnconfigured = errors.New("backend not configured")
)
