package auth

// APIKeyVerifier checks presented API keys against a configured set of
// bcrypt hashes. Keys are issued to trusted service callers; only the
// hashes are held in configuration, never the keys themselves.
type APIKeyVerifier struct {
	verifier PasswordVerifier
	hashes   []string
}

// NewAPIKeyVerifier creates a verifier over the given bcrypt hashes.
// An empty hash set is valid and rejects every key.
func NewAPIKeyVerifier(hashes []string) *APIKeyVerifier {
	return &APIKeyVerifier{
		verifier: NewBcryptVerifier(),
		hashes:   hashes,
	}
}

// Verify returns nil when the key matches one of the configured hashes,
// or ErrInvalidAPIKey otherwise. The hash set is expected to stay small
// (a handful of service callers); each miss costs one bcrypt comparison.
func (v *APIKeyVerifier) Verify(key string) error {
	if key == "" {
		return ErrInvalidAPIKey
	}
	for _, hash := range v.hashes {
		if err := v.verifier.Compare(hash, key); err == nil {
			return nil
		}
	}
	return ErrInvalidAPIKey
}
