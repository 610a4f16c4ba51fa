// Package tokenaddr derives deterministic token addresses from
// (program, minter, name) seeds and validates base58 identities.
package tokenaddr

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// tokenSeed is the constant first seed of every token address.
const tokenSeed = "token"

// ErrInvalidIdentity is returned for strings that are not base58-encoded
// 32-byte public keys.
var ErrInvalidIdentity = errors.New("invalid identity: not a base58 32-byte public key")

// ErrNoValidAddress is returned when no off-curve address exists for the
// given seeds. Probability is negligible; callers treat it as fatal.
var ErrNoValidAddress = errors.New("no valid token address for seeds")

// DecodeIdentity decodes and validates a base58 public key string.
func DecodeIdentity(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIdentity, s)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIdentity, s)
	}
	return raw, nil
}

// Valid reports whether s is a well-formed base58 32-byte identity.
func Valid(s string) bool {
	_, err := DecodeIdentity(s)
	return err == nil
}

// Derive computes the token address for (minter, name) under programID,
// mirroring program-derived-address construction: SHA256 over
// seeds+bump+program+marker, searching bumps from 255 down for the
// first digest that is off the ed25519 curve. The result is base58.
func Derive(programID, minter, name string) (string, error) {
	program, err := DecodeIdentity(programID)
	if err != nil {
		return "", err
	}
	minterKey, err := DecodeIdentity(minter)
	if err != nil {
		return "", err
	}

	seeds := [][]byte{[]byte(tokenSeed), minterKey, []byte(name)}

	for bump := 255; bump >= 0; bump-- {
		var data []byte
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, program...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), nil
		}
	}

	return "", ErrNoValidAddress
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
