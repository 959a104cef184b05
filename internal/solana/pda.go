package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for strings that are not 32-byte base58 keys.
var ErrInvalidAddress = errors.New("invalid address")

// ErrNoViableBump is returned when no bump seed yields an off-curve address.
var ErrNoViableBump = errors.New("no viable bump seed")

const pdaMarker = "ProgramDerivedAddress"

// DecodeAddress decodes a base58 public key and checks its length.
func DecodeAddress(address string) ([]byte, error) {
	b, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(b))
	}
	return b, nil
}

// ValidateAddress reports whether address is a 32-byte base58 key.
func ValidateAddress(address string) error {
	_, err := DecodeAddress(address)
	return err
}

// FindProgramAddress derives a Program Derived Address.
// Tries bump seeds from 255 down and returns the first off-curve hash.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := DecodeAddress(programID)
	if err != nil {
		return "", 0, err
	}

	for bump := 255; bump >= 0; bump-- {
		data := make([]byte, 0, 64+len(program)+len(pdaMarker))
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, program...)
		data = append(data, pdaMarker...)

		hash := sha256.Sum256(data)
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), uint8(bump), nil
		}
	}

	return "", 0, ErrNoViableBump
}

// IsOffCurve reports whether address is a valid key that is not an ed25519 point.
// Off-curve addresses are program derived and have no private key.
// Undecodable addresses are reported as on-curve.
func IsOffCurve(address string) bool {
	b, err := DecodeAddress(address)
	if err != nil {
		return false
	}
	return !isOnCurve(b)
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
