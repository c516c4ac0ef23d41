// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost settings. Changing them invalidates stored hashes.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
	SaltLen   int
}

// DefaultParams are used for account passwords.
var DefaultParams = Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

// Validate rejects settings argon2 cannot use or that make hashes trivially weak.
func (p Params) Validate() error {
	switch {
	case p.Time == 0 || p.Threads == 0:
		return errors.New("argon2: time and threads must be positive")
	case p.MemoryKiB < 8*uint32(p.Threads):
		return errors.New("argon2: memory must be at least 8 KiB per thread")
	case p.KeyLen < 16 || p.SaltLen < 8:
		return errors.New("argon2: key or salt too short")
	}
	return nil
}

// Hasher derives and checks password hashes with fixed parameters.
type Hasher struct{ p Params }

// NewHasher returns a Hasher; invalid params fall back to DefaultParams.
func NewHasher(p Params) Hasher {
	if p.Validate() != nil {
		p = DefaultParams
	}
	return Hasher{p: p}
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// New generates a fresh salt and returns the hash of password with it.
func (h Hasher) New(password []byte) (hash, salt []byte, err error) {
	salt, err = RandBytes(h.p.SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return h.Hash(password, salt), salt, nil
}

// Hash is deterministic for a given password and salt.
func (h Hasher) Hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, h.p.Time, h.p.MemoryKiB, h.p.Threads, h.p.KeyLen)
}

// Verify compares in constant time.
func (h Hasher) Verify(password, salt, expected []byte) bool {
	return subtle.ConstantTimeCompare(h.Hash(password, salt), expected) == 1
}
