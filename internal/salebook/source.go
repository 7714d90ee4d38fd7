// =============================
// File: internal/salebook/source.go
// =============================
package salebook

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// MemcmpFilter matches accounts whose bytes at Offset equal Bytes.
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}

// KeyedAccount is a raw account returned by a filtered fetch.
type KeyedAccount struct {
	Address solana.PublicKey
	Data    []byte
}

// LedgerAccountSource reads raw program accounts.
type LedgerAccountSource interface {
	// FetchByFilter returns every account of programID with exactly dataSize
	// bytes matching all filters. Order is unspecified.
	FetchByFilter(ctx context.Context, programID solana.PublicKey, dataSize uint64, filters []MemcmpFilter) ([]KeyedAccount, error)
	// FetchOne returns the raw bytes at address. A missing account yields an
	// error wrapping ErrAccountNotFound, an account not owned by owner one
	// wrapping ErrForeignAccount.
	FetchOne(ctx context.Context, owner, address solana.PublicKey) ([]byte, error)
}

// TokenDelegationSource reads the live delegation of SPL token accounts.
type TokenDelegationSource interface {
	// FetchDelegation returns the delegation of tokenAccount or an error
	// wrapping ErrAccountNotFound.
	FetchDelegation(ctx context.Context, tokenAccount solana.PublicKey) (DelegationState, error)
}
