// Package solana holds the small amount of Solana-specific logic the simulator needs.
package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the size of a decoded Solana address.
const PublicKeyLength = 32

// ErrInvalidAddress is returned when a string is not a base58 32-byte address.
var ErrInvalidAddress = errors.New("invalid solana address")

// DecodeAddress decodes a base58 address into its 32 raw bytes.
func DecodeAddress(addr string) ([]byte, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	b, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != PublicKeyLength {
		return nil, fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(b))
	}
	return b, nil
}

// IsValidAddress reports whether addr decodes to a 32-byte public key.
func IsValidAddress(addr string) bool {
	_, err := DecodeAddress(addr)
	return err == nil
}

// IsOnCurve reports whether the address is a point on the ed25519 curve.
// Wallets controlled by a keypair are on the curve; program-derived addresses
// (bonding curves, pool vaults) are not.
func IsOnCurve(addr string) bool {
	b, err := DecodeAddress(addr)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// IsWallet reports whether addr looks like a keypair-owned wallet.
func IsWallet(addr string) bool {
	return IsOnCurve(addr)
}
