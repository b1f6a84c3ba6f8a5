package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore hashes secrets and verifies them against stored digests.
type CredentialStore interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// BcryptCredentials implements CredentialStore with bcrypt.
type BcryptCredentials struct {
	Cost int
}

// NewBcryptCredentials returns a bcrypt-backed credential store using the default cost.
func NewBcryptCredentials() BcryptCredentials {
	return BcryptCredentials{Cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt digest of secret.
func (c BcryptCredentials) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret must be provided")
	}
	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether secret matches digest.
func (c BcryptCredentials) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
