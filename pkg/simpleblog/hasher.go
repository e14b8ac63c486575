package simpleblog

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher implements CredentialHasher with bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns the default credential hasher. A cost of zero
// selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) CredentialHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty secret")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Compare(hash, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}

// dummyCredentialHash is compared against on login for unknown account ids so
// the unknown-id and wrong-secret paths take comparable time.
const dummyCredentialHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
