// Package hash implements password hashing with bcrypt or argon2id. New
// hashes use the configured scheme; verification accepts either.
package hash

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Scheme names a password hashing algorithm.
type Scheme string

const (
	Bcrypt   Scheme = "bcrypt"
	Argon2id Scheme = "argon2id"
)

// Hasher implements ports.PasswordHasher.
type Hasher struct {
	scheme     Scheme
	bcryptCost int
	argon      *argon2id.Params
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithBcryptCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(h *Hasher) { h.bcryptCost = cost }
}

// WithArgon2idParams overrides the argon2id parameters.
func WithArgon2idParams(p *argon2id.Params) Option {
	return func(h *Hasher) { h.argon = p }
}

func New(scheme Scheme, opts ...Option) (*Hasher, error) {
	switch scheme {
	case Bcrypt, Argon2id:
	case "":
		scheme = Bcrypt
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}

	h := &Hasher{scheme: scheme, bcryptCost: bcrypt.DefaultCost, argon: argon2id.DefaultParams}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Hasher) Hash(plain string) (string, error) {
	if h.scheme == Argon2id {
		return argon2id.CreateHash(plain, h.argon)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. Malformed hashes never match.
func (h *Hasher) Verify(plain, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		ok, err := argon2id.ComparePasswordAndHash(plain, hash)
		return err == nil && ok
	case strings.HasPrefix(hash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}
	return false
}
