package atm

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultMaxAttempts = 3

var ErrInvalidPIN = errors.New("PIN must be exactly 4 digits")

// Authenticator verifies PIN entries against a bcrypt hash. The plain PIN is
// dropped after construction.
type Authenticator struct {
	pinHash     []byte
	maxAttempts int
}

func NewAuthenticator(pin string, cost int) (*Authenticator, error) {
	if !ValidPIN(pin) {
		return nil, ErrInvalidPIN
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	return &Authenticator{
		pinHash:     hash,
		maxAttempts: DefaultMaxAttempts,
	}, nil
}

func (a *Authenticator) Check(pin string) bool {
	return bcrypt.CompareHashAndPassword(a.pinHash, []byte(pin)) == nil
}

func (a *Authenticator) MaxAttempts() int {
	return a.maxAttempts
}

func ValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
