package password

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = errors.New("password does not match")

// DummyHash returns a bcrypt hash at bcrypt.DefaultCost that no login
// password matches. Verifying against it costs the same as a real account.
var DummyHash = sync.OnceValue(func() string {
	token, err := RandomToken()
	if err != nil {
		token = "novabook-unmatchable"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
})

// Hash returns the bcrypt hash of plain. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func Hash(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}

// RandomToken returns 32 random bytes hex encoded.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
