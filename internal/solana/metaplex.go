package solana

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// MetadataProgramID is the Metaplex token metadata program.
const MetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"

	metadataKeyV1 = 4
)

var (
	// ErrNoViableBump is returned when every bump seed lands on the curve.
	ErrNoViableBump = errors.New("no viable bump seed for program address")

	// ErrMalformedMetadata is returned for account data that is not a metadata v1 account.
	ErrMalformedMetadata = errors.New("malformed metadata account")
)

// FindProgramAddress derives the program address for seeds, searching bump
// seeds from 255 down until the hash falls off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	if len(seeds) >= maxSeeds {
		return "", 0, fmt.Errorf("too many seeds: %d", len(seeds))
	}
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return "", 0, fmt.Errorf("seed longer than %d bytes", maxSeedLength)
		}
	}
	program, err := DecodeAddress(programID)
	if err != nil {
		return "", 0, err
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, s := range seeds {
			h.Write(s)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program)
		h.Write([]byte(pdaMarker))
		sum := h.Sum(nil)

		if _, err := new(edwards25519.Point).SetBytes(sum); err != nil {
			return base58.Encode(sum), uint8(bump), nil
		}
	}
	return "", 0, ErrNoViableBump
}

// MetadataAddress returns the Metaplex metadata account of a mint.
func MetadataAddress(mint string) (string, error) {
	mintKey, err := DecodeAddress(mint)
	if err != nil {
		return "", err
	}
	program, _ := DecodeAddress(MetadataProgramID)
	addr, _, err := FindProgramAddress([][]byte{[]byte("metadata"), program, mintKey}, MetadataProgramID)
	return addr, err
}

// MetadataAccount is the leading part of a Metaplex metadata v1 account.
type MetadataAccount struct {
	UpdateAuthority string
	Mint            string
	Name            string
	Symbol          string
	URI             string
	IsMutable       bool
}

// ParseMetadataAccount decodes the borsh layout up to the is_mutable flag.
// Fields after it (edition nonce, collection, uses) are ignored.
func ParseMetadataAccount(data []byte) (*MetadataAccount, error) {
	r := borshReader{buf: data}

	if key := r.u8(); key != metadataKeyV1 {
		if r.err != nil {
			return nil, r.err
		}
		return nil, fmt.Errorf("%w: key %d", ErrMalformedMetadata, key)
	}

	md := &MetadataAccount{
		UpdateAuthority: base58.Encode(r.bytes(PublicKeyLength)),
		Mint:            base58.Encode(r.bytes(PublicKeyLength)),
		Name:            r.str(),
		Symbol:          r.str(),
		URI:             r.str(),
	}
	r.bytes(2) // seller_fee_basis_points
	if r.u8() == 1 {
		n := r.u32()
		r.bytes(int(n) * (PublicKeyLength + 2)) // address, verified, share
	}
	r.u8() // primary_sale_happened
	md.IsMutable = r.u8() == 1

	if r.err != nil {
		return nil, r.err
	}
	return md, nil
}

// borshReader reads little-endian borsh values and latches the first error.
type borshReader struct {
	buf []byte
	off int
	err error
}

func (r *borshReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedMetadata, n, r.off, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *borshReader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *borshReader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// str reads a length-prefixed string; on-chain names are NUL padded.
func (r *borshReader) str() string {
	n := r.u32()
	return strings.TrimRight(string(r.bytes(int(n))), "\x00")
}
