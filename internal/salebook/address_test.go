package salebook

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	tokenAccount := newKey()
	seeds := [][]byte{[]byte(SaleSeed), tokenAccount.Bytes()}

	first, firstBump, err := Derive(seeds, ProgramID)
	require.NoError(t, err)
	second, secondBump, err := Derive(seeds, ProgramID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstBump, secondBump)
}

func TestDeriveMatchesLedgerAddressing(t *testing.T) {
	authority, err := BookAuthority(ProgramID)
	require.NoError(t, err)

	expected, bump, err := solana.FindProgramAddress([][]byte{[]byte("auth")}, ProgramID)
	require.NoError(t, err)

	assert.Equal(t, expected, authority.Address)
	assert.Equal(t, bump, authority.Bump)
	assert.False(t, solana.IsOnCurve(authority.Address.Bytes()), "book authority must not be a signing key")
}

func TestSaleAddressPerTokenAccount(t *testing.T) {
	tokenA, tokenB := newKey(), newKey()

	saleA, _, err := SaleAddress(ProgramID, tokenA)
	require.NoError(t, err)
	saleB, _, err := SaleAddress(ProgramID, tokenB)
	require.NoError(t, err)
	saleAAgain, _, err := SaleAddress(ProgramID, tokenA)
	require.NoError(t, err)

	assert.NotEqual(t, saleA, saleB)
	assert.Equal(t, saleA, saleAAgain, "same token account must collide on the same sale")
}

func TestSaleAddressDependsOnProgram(t *testing.T) {
	tokenAccount := newKey()

	a, _, err := SaleAddress(ProgramID, tokenAccount)
	require.NoError(t, err)
	b, _, err := SaleAddress(newKey(), tokenAccount)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeriveRejectsInvalidSeeds(t *testing.T) {
	tooMany := make([][]byte, maxSeeds)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	_, _, err := Derive(tooMany, ProgramID)
	assert.ErrorIs(t, err, ErrInvalidSeeds)

	_, _, err = Derive([][]byte{make([]byte, maxSeedLength+1)}, ProgramID)
	assert.ErrorIs(t, err, ErrInvalidSeeds)

	_, _, err = Derive([][]byte{make([]byte, maxSeedLength)}, ProgramID)
	assert.NoError(t, err)
}

func TestDeriveExhausted(t *testing.T) {
	original := createProgramAddress
	t.Cleanup(func() { createProgramAddress = original })

	calls := 0
	createProgramAddress = func(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
		calls++
		return solana.PublicKey{}, errors.New("on curve")
	}

	_, _, err := Derive([][]byte{[]byte(AuthoritySeed)}, ProgramID)
	assert.ErrorIs(t, err, ErrDerivationExhausted)
	assert.Equal(t, 256, calls, "every bump from 255 down to 0 must be tried")

	_, err = BookAuthority(ProgramID)
	assert.ErrorIs(t, err, ErrDerivationExhausted)
}

func TestDeriveReachesBumpZero(t *testing.T) {
	original := createProgramAddress
	t.Cleanup(func() { createProgramAddress = original })

	createProgramAddress = func(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
		if seeds[len(seeds)-1][0] != 0 {
			return solana.PublicKey{}, errors.New("on curve")
		}
		return original(seeds, programID)
	}

	_, bump, err := Derive([][]byte{[]byte(AuthoritySeed)}, ProgramID)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), bump)
}

func TestDeriveDoesNotMutateSeeds(t *testing.T) {
	seeds := make([][]byte, 1, 4)
	seeds[0] = []byte(SaleSeed)

	_, _, err := Derive(seeds, ProgramID)
	require.NoError(t, err)

	assert.Len(t, seeds, 1)
	assert.Equal(t, []byte(SaleSeed), seeds[0])
}

func TestAssociatedTokenAddress(t *testing.T) {
	owner, mint := newKey(), newKey()

	got, err := AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	expected, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
