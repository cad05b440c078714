package password

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// Params holds the scrypt cost parameters. The defaults target tens of
// milliseconds per hash on commodity hardware; raise N as hardware improves.
type Params struct {
	N       int
	R       int
	P       int
	SaltLen int
	KeyLen  int
}

// DefaultParams returns the default scrypt parameters
func DefaultParams() Params {
	return Params{
		N:       1 << 15,
		R:       8,
		P:       1,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Verifier hashes and verifies local credentials. Plaintext passwords are
// never retained, logged, or returned once hashed.
type Verifier struct {
	params Params
}

// New creates a Verifier with the given parameters
func New(params Params) *Verifier {
	if params.N == 0 {
		params = DefaultParams()
	}
	return &Verifier{params: params}
}

// Hash derives a salted digest from the plaintext with a fresh random salt
func (v *Verifier) Hash(plaintext string) (hash, salt []byte, err error) {
	salt = make([]byte, v.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generating salt: %w", err)
	}

	hash, err = scrypt.Key([]byte(plaintext), salt, v.params.N, v.params.R, v.params.P, v.params.KeyLen)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving key: %w", err)
	}
	return hash, salt, nil
}

// Verify reports whether the plaintext matches the stored hash and salt.
// The digest comparison is constant-time.
func (v *Verifier) Verify(plaintext string, hash, salt []byte) bool {
	if len(hash) == 0 || len(salt) == 0 {
		return false
	}
	derived, err := scrypt.Key([]byte(plaintext), salt, v.params.N, v.params.R, v.params.P, len(hash))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derived, hash) == 1
}
