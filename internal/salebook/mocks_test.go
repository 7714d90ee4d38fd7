// internal/salebook/mocks_test.go
package salebook

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

// MockLedger реализует LedgerAccountSource
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) FetchByFilter(ctx context.Context, programID solana.PublicKey, dataSize uint64, filters []MemcmpFilter) ([]KeyedAccount, error) {
	args := m.Called(ctx, programID, dataSize, filters)
	accounts, _ := args.Get(0).([]KeyedAccount)
	return accounts, args.Error(1)
}

func (m *MockLedger) FetchOne(ctx context.Context, owner, address solana.PublicKey) ([]byte, error) {
	args := m.Called(ctx, owner, address)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// MockDelegations реализует TokenDelegationSource
type MockDelegations struct {
	mock.Mock
}

func (m *MockDelegations) FetchDelegation(ctx context.Context, tokenAccount solana.PublicKey) (DelegationState, error) {
	args := m.Called(ctx, tokenAccount)
	return args.Get(0).(DelegationState), args.Error(1)
}

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func delegatedTo(delegate solana.PublicKey, amount uint64) DelegationState {
	return DelegationState{Delegate: &delegate, DelegatedAmount: amount}
}

func rawSale(seller, tokenAccount, mint solana.PublicKey, price uint64) KeyedAccount {
	address := newKey()
	return KeyedAccount{
		Address: address,
		Data: EncodeSale(SaleRecord{
			Seller:       seller,
			TokenAccount: tokenAccount,
			TokenMint:    mint,
			AskPrice:     price,
			Bump:         254,
		}),
	}
}
