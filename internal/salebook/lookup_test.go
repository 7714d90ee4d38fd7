package salebook

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLookupSale(t *testing.T) {
	ledger := new(MockLedger)
	tokens := new(MockDelegations)
	engine := newTestEngine(t, ledger, tokens)

	raw := rawSale(newKey(), newKey(), newKey(), 42)
	record, err := DecodeSale(raw.Data, raw.Address)
	require.NoError(t, err)

	ledger.On("FetchOne", mock.Anything, ProgramID, raw.Address).Return(raw.Data, nil).Once()
	tokens.On("FetchDelegation", mock.Anything, record.TokenAccount).
		Return(delegatedTo(engine.BookAuthority().Address, 9), nil).Once()

	sale, err := engine.LookupSale(context.Background(), raw.Address)
	require.NoError(t, err)
	assert.Equal(t, record, sale.SaleRecord)
	assert.Equal(t, StatusActive, sale.Status)
	assert.Equal(t, uint64(9), sale.DelegatedAmount)
}

func TestLookupSaleErrors(t *testing.T) {
	address := newKey()

	tests := []struct {
		name     string
		data     []byte
		fetchErr error
		want     error
	}{
		{"not found", nil, fmt.Errorf("get account: %w", ErrAccountNotFound), ErrSaleNotFound},
		{"source down", nil, errors.New("502 bad gateway"), ErrSourceUnavailable},
		{"malformed", make([]byte, SaleAccountSize), nil, ErrMalformedRecord},
		{"other program", nil, fmt.Errorf("%w: %s", ErrForeignAccount, address), ErrSaleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(MockLedger)
			tokens := new(MockDelegations)
			engine := newTestEngine(t, ledger, tokens)

			ledger.On("FetchOne", mock.Anything, ProgramID, address).Return(tt.data, tt.fetchErr).Once()

			sale, err := engine.LookupSale(context.Background(), address)
			assert.Nil(t, sale)
			assert.ErrorIs(t, err, tt.want)
			tokens.AssertNotCalled(t, "FetchDelegation", mock.Anything, mock.Anything)
		})
	}
}

func TestLookupSaleDegraded(t *testing.T) {
	ledger := new(MockLedger)
	tokens := new(MockDelegations)
	engine := newTestEngine(t, ledger, tokens)

	raw := rawSale(newKey(), newKey(), newKey(), 42)
	ledger.On("FetchOne", mock.Anything, ProgramID, raw.Address).Return(raw.Data, nil).Once()
	tokens.On("FetchDelegation", mock.Anything, mock.Anything).
		Return(DelegationState{}, errors.New("timeout")).Once()

	sale, err := engine.LookupSale(context.Background(), raw.Address)
	require.NoError(t, err)
	assert.Equal(t, StatusZero, sale.Status)
	assert.True(t, sale.Degraded)
}

func TestLookupSaleForOwner(t *testing.T) {
	ledger := new(MockLedger)
	tokens := new(MockDelegations)
	engine := newTestEngine(t, ledger, tokens)

	owner, mint := newKey(), newKey()
	tokenAccount, err := AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	saleAddress, bump, err := SaleAddress(ProgramID, tokenAccount)
	require.NoError(t, err)

	data := EncodeSale(SaleRecord{
		Seller:       owner,
		TokenAccount: tokenAccount,
		TokenMint:    mint,
		AskPrice:     7,
		Bump:         bump,
	})
	ledger.On("FetchOne", mock.Anything, ProgramID, saleAddress).Return(data, nil).Once()
	tokens.On("FetchDelegation", mock.Anything, tokenAccount).
		Return(delegatedTo(engine.BookAuthority().Address, 0), nil).Once()

	sale, err := engine.LookupSaleForOwner(context.Background(), owner, mint)
	require.NoError(t, err)
	assert.Equal(t, saleAddress, sale.Address)
	assert.Equal(t, StatusZero, sale.Status)
	assert.False(t, sale.Degraded)
	ledger.AssertExpectations(t)
}
