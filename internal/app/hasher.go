package app

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"placereview/internal/domain"
)

// DefaultBcryptCost keeps a single hash in the tens of milliseconds. Four
// digits are still only 10^4 guesses, so the HTTP layer rate-limits writes.
const DefaultBcryptCost = 10

type BcryptHasher struct{ cost int }

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(digest, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// HashCredential runs the hasher and converts a primitive failure into
// PASSWORD_HASH_FAILED.
func HashCredential(h domain.CredentialHasher, secret string) domain.Result[string] {
	digest, err := h.Hash(secret)
	if err != nil {
		log.Error().Err(err).Msg("credential hash failed")
		return domain.Fail[string](domain.KindPasswordHash, "Failed to hash password", nil)
	}
	return domain.Success(digest)
}
