package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrCredentialsNotConfigured is returned when no operator password hash is set.
	ErrCredentialsNotConfigured = errors.New("operator credentials not configured")
	// ErrInvalidCredentials is returned for any username or password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// HashPassword hashes a plaintext password with the given bcrypt cost.
// The output is what AUTH_PASSWORD_HASH expects.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Operator is the single dashboard account configured through the environment.
type Operator struct {
	Username     string
	PasswordHash string
}

// Verify checks username and password. The username comparison is constant
// time and the bcrypt check always runs, so a wrong username costs the same as
// a wrong password.
func (o Operator) Verify(username, password string) error {
	if o.PasswordHash == "" {
		return ErrCredentialsNotConfigured
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(o.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	if passErr != nil || !userOK {
		return ErrInvalidCredentials
	}
	return nil
}
