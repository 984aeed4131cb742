package security

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/signup-service/internal/domain"
)

// BcryptHasher stores passwords as salted bcrypt hashes. Hashing the same
// password twice yields two different strings that both verify.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher uses bcrypt.DefaultCost when cost is not positive. An
// out-of-range cost surfaces as hash_failed on the first Hash call.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash rejects passwords longer than bcrypt's input limit as a client
// error before doing any work, since bcrypt would refuse them anyway.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > domain.MaxPasswordBytes {
		return "", domain.ErrInvalidField("password", "must be at most "+strconv.Itoa(domain.MaxPasswordBytes)+" bytes")
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Compare is not used on the signup path; it lets callers and tests check
// a stored hash against a plaintext.
func (h *BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Cost reports the work factor actually used.
func (h *BcryptHasher) Cost() int { return h.cost }
