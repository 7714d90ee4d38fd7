// internal/blockchain/solbc/token_account.go
package solbc

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/rovshanmuradov/salebook/internal/salebook"
)

// TokenAccountSize размер SPL token аккаунта
const TokenAccountSize = 165

var (
	ErrNotTokenAccount     = errors.New("account is not an SPL token account")
	ErrTokenAccountInvalid = errors.New("invalid token account data")
)

// DecodeDelegation extracts the delegation fields of an SPL token account.
func DecodeDelegation(data []byte) (salebook.DelegationState, error) {
	if len(data) < TokenAccountSize {
		return salebook.DelegationState{}, fmt.Errorf("%w: %d bytes", ErrTokenAccountInvalid, len(data))
	}

	var acc token.Account
	if err := bin.NewBinDecoder(data[:TokenAccountSize]).Decode(&acc); err != nil {
		return salebook.DelegationState{}, fmt.Errorf("%w: %w", ErrTokenAccountInvalid, err)
	}
	if acc.State == token.Uninitialized {
		return salebook.DelegationState{}, fmt.Errorf("%w: uninitialized", ErrTokenAccountInvalid)
	}

	return salebook.DelegationState{
		Delegate:        acc.Delegate,
		DelegatedAmount: acc.DelegatedAmount,
	}, nil
}
