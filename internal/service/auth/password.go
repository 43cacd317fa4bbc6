package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a plaintext secret against its stored hash.
// API keys are the only credentials the service verifies this way.
type PasswordVerifier interface {
	// Compare returns nil when secret hashes to hashedSecret.
	Compare(hashedSecret, secret string) error
}

// BcryptVerifier is the bcrypt-backed PasswordVerifier used in production.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedSecret, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
}
