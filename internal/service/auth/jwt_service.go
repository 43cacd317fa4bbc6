package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService mints and verifies the access tokens the HTTP API accepts.
type JWTService interface {
	// GenerateToken creates a signed access token for the given learner.
	GenerateToken(ctx context.Context, learnerID uuid.UUID) (string, error)

	// ValidateToken parses and verifies a token string and returns its
	// claims. Failures map to the package's sentinel errors: expired,
	// not yet valid, wrong type, or invalid for everything else.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a token: the learner it identifies
// plus the registered claims used for lifetime checks.
type Claims struct {
	// LearnerID is the unique identifier of the learner the token was issued for.
	LearnerID uuid.UUID `json:"lid,omitempty"`

	// TokenType indicates the purpose of the token. Only "access" tokens are
	// issued; the field guards against tokens minted for other contexts.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
