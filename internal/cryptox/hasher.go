// Package cryptox holds the cryptographic building blocks of the client and
// the gateway: salted password hashing, key derivation and AES-GCM sealing.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/flklr-dev/SecureMVPLab/internal/autherr"
	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Params is one versioned PBKDF2-HMAC-SHA256 parameter set. The version is
// stored next to every hash so records written under older parameters keep
// verifying after the default moves on.
type Params struct {
	Version    int
	Iterations int
	KeyLength  int
	SaltLength int
}

var (
	// ParamsV1 matches records written by the first release of the app.
	ParamsV1 = Params{Version: 1, Iterations: 10_000, KeyLength: 32, SaltLength: common.SaltLength}
	// ParamsV2 is the default for new records.
	ParamsV2 = Params{Version: 2, Iterations: 600_000, KeyLength: 32, SaltLength: common.SaltLength}
)

const (
	minIterations = 1000
	minKeyLength  = 16
)

var (
	// ErrInvalidParams reports a parameter set below the accepted floor.
	ErrInvalidParams = fmt.Errorf("invalid hasher parameters: %w", autherr.ErrConfiguration)
	// ErrInvalidSalt reports a salt whose length does not match the parameters.
	ErrInvalidSalt = fmt.Errorf("invalid salt length: %w", autherr.ErrConfiguration)
	// ErrUnknownVersion reports a hash version no parameter set is registered for.
	ErrUnknownVersion = fmt.Errorf("unknown hash version: %w", autherr.ErrConfiguration)
	// ErrMalformedHash reports a stored hash that is not valid base64.
	ErrMalformedHash = errors.New("malformed password hash")
)

func (p Params) validate() error {
	switch {
	case p.Version <= 0:
		return fmt.Errorf("%w: version %d", ErrInvalidParams, p.Version)
	case p.Iterations < minIterations:
		return fmt.Errorf("%w: %d iterations, need at least %d", ErrInvalidParams, p.Iterations, minIterations)
	case p.KeyLength < minKeyLength:
		return fmt.Errorf("%w: key length %d, need at least %d", ErrInvalidParams, p.KeyLength, minKeyLength)
	case p.SaltLength != common.SaltLength:
		return fmt.Errorf("%w: salt length %d, need %d", ErrInvalidParams, p.SaltLength, common.SaltLength)
	}
	return nil
}

// Hasher derives and verifies salted password hashes.
// It is immutable after construction and safe for concurrent use.
type Hasher struct {
	current  Params
	versions map[int]Params
}

// NewHasher returns a Hasher that writes new hashes with current and can
// still verify hashes produced under any of the legacy parameter sets.
func NewHasher(current Params, legacy ...Params) (*Hasher, error) {
	h := &Hasher{current: current, versions: make(map[int]Params, len(legacy)+1)}
	for _, p := range append([]Params{current}, legacy...) {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := h.versions[p.Version]; dup {
			return nil, fmt.Errorf("%w: duplicate version %d", ErrInvalidParams, p.Version)
		}
		h.versions[p.Version] = p
	}
	return h, nil
}

// NewDefaultHasher hashes with ParamsV2 and verifies V1 and V2 records.
func NewDefaultHasher() *Hasher {
	h, err := NewHasher(ParamsV2, ParamsV1)
	if err != nil {
		panic(err)
	}
	return h
}

// NewHasherForTest returns a Hasher at the iteration floor so tests in other
// packages do not pay for production work factors. Never use it outside tests.
func NewHasherForTest() *Hasher {
	h, err := NewHasher(Params{Version: 1, Iterations: minIterations, KeyLength: 32, SaltLength: common.SaltLength})
	if err != nil {
		panic(err)
	}
	return h
}

// Version is the parameter version written next to new hashes.
func (h *Hasher) Version() int {
	return h.current.Version
}

// GenerateSalt returns a fresh salt of the current parameter length.
func (h *Hasher) GenerateSalt() ([]byte, error) {
	salt, err := common.ReadRandBytes(h.current.SaltLength)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Hash derives the base64 hash of password under the current parameters.
func (h *Hasher) Hash(password, salt []byte) (string, error) {
	return h.hash(password, salt, h.current)
}

// HashWithVersion derives the hash under a registered parameter version.
func (h *Hasher) HashWithVersion(password, salt []byte, version int) (string, error) {
	p, ok := h.versions[version]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	return h.hash(password, salt, p)
}

// Verify recomputes the hash of password with the record's salt and
// version and compares it with expected in constant time.
func (h *Hasher) Verify(password, salt []byte, expected string, version int) (bool, error) {
	p, ok := h.versions[version]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	if len(salt) != p.SaltLength {
		return false, fmt.Errorf("%w: got %d bytes", ErrInvalidSalt, len(salt))
	}
	want, err := base64.StdEncoding.DecodeString(expected)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	got := derive(password, salt, p)
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (h *Hasher) hash(password, salt []byte, p Params) (string, error) {
	if len(salt) != p.SaltLength {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidSalt, len(salt))
	}
	key := derive(password, salt, p)
	defer common.WipeByteArray(key)
	return base64.StdEncoding.EncodeToString(key), nil
}

func derive(password, salt []byte, p Params) []byte {
	return pbkdf2.Key(password, salt, p.Iterations, p.KeyLength, sha256.New)
}
