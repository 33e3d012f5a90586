package model

import "errors"

var (
	// ErrMissingAPIKey means no credential is configured; nothing is attempted.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found in environment variables")

	// ErrUnauthorized is returned when the remote API rejects the credential.
	ErrUnauthorized = errors.New("gemini API rejected credentials")

	// ErrRateLimited is returned on quota exhaustion. Not retried here.
	ErrRateLimited = errors.New("gemini API rate limit exceeded")
)
