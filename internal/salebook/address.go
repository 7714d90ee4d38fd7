// =============================
// File: internal/salebook/address.go
// =============================
package salebook

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

const (
	// AuthoritySeed derives the single book authority of a program.
	AuthoritySeed = "auth"
	// SaleSeed, followed by a token account, derives that account's sale.
	SaleSeed = "sale"

	maxSeeds      = 16 // including the bump
	maxSeedLength = 32
)

// createProgramAddress hashes seeds, programID and the PDA marker and rejects
// on-curve results. Swapped out in tests.
var createProgramAddress = solana.CreateProgramAddress

// Derive finds the program address for seeds, searching bumps from 255 down
// to 0 and returning the first one whose address is off the ed25519 curve.
func Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	if len(seeds)+1 > maxSeeds {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %d seeds, at most %d allowed", ErrInvalidSeeds, len(seeds), maxSeeds-1)
	}
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return solana.PublicKey{}, 0, fmt.Errorf("%w: seed %d is %d bytes, at most %d allowed", ErrInvalidSeeds, i, len(seed), maxSeedLength)
		}
	}

	candidate := make([][]byte, len(seeds)+1)
	copy(candidate, seeds)
	for bump := math.MaxUint8; bump >= 0; bump-- {
		candidate[len(seeds)] = []byte{byte(bump)}
		address, err := createProgramAddress(candidate, programID)
		if err == nil {
			return address, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, fmt.Errorf("%w: program %s", ErrDerivationExhausted, programID)
}

// BookAuthority derives the authority PDA that sellers delegate to.
func BookAuthority(programID solana.PublicKey) (AuthorityDescriptor, error) {
	address, bump, err := Derive([][]byte{[]byte(AuthoritySeed)}, programID)
	if err != nil {
		return AuthorityDescriptor{}, fmt.Errorf("failed to derive book authority: %w", err)
	}
	return AuthorityDescriptor{Address: address, Bump: bump}, nil
}

// SaleAddress derives the sale account for a token account. One token account
// can only ever back one sale.
func SaleAddress(programID, tokenAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	address, bump, err := Derive([][]byte{[]byte(SaleSeed), tokenAccount.Bytes()}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive sale address for %s: %w", tokenAccount, err)
	}
	return address, bump, nil
}

// AssociatedTokenAddress derives the associated token account of owner for mint.
func AssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := Derive(
		[][]byte{owner.Bytes(), solana.TokenProgramID.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return address, nil
}
