package auth

import "errors"

// Sentinel errors returned by token and API key verification. Callers
// branch on these to pick a response status without parsing messages.
var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken means the token's exp claim is in the past.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid means the token's nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken means a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType means the token was minted for a different purpose.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidAPIKey means the presented key matches none of the configured hashes.
	ErrInvalidAPIKey = errors.New("invalid api key")
)
