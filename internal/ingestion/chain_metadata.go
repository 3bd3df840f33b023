package ingestion

import (
	"context"
	"errors"
	"fmt"

	"sol-memebot/internal/solana"
)

// ErrMintNotFound is returned when the mint account does not exist on chain.
var ErrMintNotFound = errors.New("mint account not found")

// ChainMetadataSource reads mint authorities and the Metaplex mutability flag
// straight from a Solana RPC node. It implements MetadataSource.
type ChainMetadataSource struct {
	rpc solana.AccountReader
}

// NewChainMetadataSource creates a metadata source over an RPC account reader.
func NewChainMetadataSource(rpc solana.AccountReader) *ChainMetadataSource {
	return &ChainMetadataSource{rpc: rpc}
}

var _ MetadataSource = (*ChainMetadataSource)(nil)

// Metadata returns the mint's authorities. A token without a Metaplex metadata
// account is reported immutable.
func (s *ChainMetadataSource) Metadata(ctx context.Context, mint string) (*TokenMetadata, error) {
	acct, err := s.rpc.GetMintAccount(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("fetch mint account: %w", err)
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}

	md := &TokenMetadata{
		MintAuthority:   acct.MintAuthority,
		FreezeAuthority: acct.FreezeAuthority,
	}

	addr, err := solana.MetadataAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata address: %w", err)
	}
	data, err := s.rpc.GetAccountData(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata account: %w", err)
	}
	if data == nil {
		return md, nil
	}

	meta, err := solana.ParseMetadataAccount(data)
	if err != nil {
		return nil, err
	}
	md.IsMutable = meta.IsMutable
	return md, nil
}
