package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier turns a password into its stored form and checks a
// candidate against a stored value
type CredentialVerifier interface {
	Encode(password string) (string, error)
	Verify(stored, candidate string) bool
}

// PlaintextVerifier stores passwords as given. Documents written by the
// browser client hold plaintext passwords, so this is the default.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Encode(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// BcryptVerifier stores bcrypt hashes. Accounts it creates cannot be used
// from a plaintext client.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Encode(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptVerifier) Verify(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
