package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every password verification failure,
// including missing input and malformed stored hashes.
var ErrInvalidCredentials = errors.New("invalid credentials")

// decoyPassword is hashed once per verifier so lookups for unknown accounts
// still pay for a full bcrypt comparison.
const decoyPassword = "decoy-password-for-unknown-accounts"

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	if hashed == "" || plain == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// PasswordVerifier hashes and checks credentials at a fixed bcrypt cost.
// Every failed check costs one full bcrypt comparison.
type PasswordVerifier struct {
	cost    int
	decoy   string
	compare func(hashed, plain []byte) error
}

// NewPasswordVerifier precomputes the decoy hash at the given cost.
func NewPasswordVerifier(cost int) (*PasswordVerifier, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	decoy, err := HashPassword(decoyPassword, cost)
	if err != nil {
		return nil, err
	}
	return &PasswordVerifier{cost: cost, decoy: decoy, compare: bcrypt.CompareHashAndPassword}, nil
}

// Hash returns the bcrypt hash of plain.
func (v *PasswordVerifier) Hash(plain string) (string, error) {
	return HashPassword(plain, v.cost)
}

// Verify returns nil iff plain matches hashed. Empty input and unreadable
// hashes fall back to the decoy comparison.
func (v *PasswordVerifier) Verify(hashed, plain string) error {
	if hashed == "" || plain == "" {
		return v.Reject(plain)
	}
	err := v.compare([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return v.Reject(plain)
	}
}

// Reject burns one comparison against the decoy hash and always fails.
func (v *PasswordVerifier) Reject(plain string) error {
	_ = v.compare([]byte(v.decoy), []byte(plain))
	return ErrInvalidCredentials
}
