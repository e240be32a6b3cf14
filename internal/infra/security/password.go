package security

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed so hashes produced by different code versions remain
// verifiable; the cost is also recorded inside every bcrypt blob.
const bcryptCost = 12

// DummyPasswordHash is a precomputed bcrypt blob with no corresponding
// credential. The authentication flow verifies against it when no account
// was found so the not-found path performs the same work as the found path.
// The SHA-256 pre-hash step guarantees no plaintext can ever match it.
const DummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// prehash folds arbitrary-length passwords into a fixed-size input so the
// bcrypt 72-byte truncation limit never applies.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(encoded, sum[:])
	return encoded
}

// HashPassword generates a salted bcrypt hash of the SHA-256 pre-hashed
// password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares the candidate password against a stored hash.
// A mismatch is not an error; a hash that cannot be parsed is a hard
// failure and must never be treated as a plain mismatch.
func VerifyPassword(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), prehash(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password hash: %w", err)
}
