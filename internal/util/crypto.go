package util

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const dummyPassword = "recon2root-timing-equalizer"

// dummyHash is compared against when no credential exists so a missing
// username costs the same bcrypt work as a wrong password. One is built
// per cost, on first use.
type dummyHash struct {
	once sync.Once
	hash []byte
}

var dummyHashes sync.Map // int cost -> *dummyHash

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a bcrypt comparison at cost whose result is
// discarded. cost should match the cost of the stored credential.
func BurnPasswordCheck(password string, cost int) {
	v, _ := dummyHashes.LoadOrStore(cost, &dummyHash{})
	d := v.(*dummyHash)
	d.once.Do(func() { d.hash = mustHash(dummyPassword, cost) })
	_ = bcrypt.CompareHashAndPassword(d.hash, []byte(password))
}

func mustHash(s string, cost int) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), cost)
	if err != nil {
		panic(err)
	}
	return hash
}
