package service

import "golang.org/x/crypto/bcrypt"

// HashCost is the bcrypt work factor (2^10 rounds).
const HashCost = bcrypt.DefaultCost

// PasswordHasher hashes and verifies passwords. Hashes are self-describing,
// so Compare needs nothing beyond the stored string.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hashed string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: HashCost}
}

// Hash hashes plain with a fresh random salt. The empty string is accepted;
// policy checks happen before hashing.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches hashed. A malformed hash never matches.
func (h *BcryptHasher) Compare(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

var _ PasswordHasher = (*BcryptHasher)(nil)
