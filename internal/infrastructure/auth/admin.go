package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminAuthenticator checks the single admin account configured for the
// request log API
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
}

func NewAdminAuthenticator(username, passwordHash string) *AdminAuthenticator {
	return &AdminAuthenticator{username: username, passwordHash: []byte(passwordHash)}
}

// Authenticate compares the password even when the username is wrong so
// both failures take the same time
func (a *AdminAuthenticator) Authenticate(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil || a.username == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the bcrypt hash to put in auth.admin_password_hash
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
