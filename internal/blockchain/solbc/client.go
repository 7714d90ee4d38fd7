// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/salebook/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/salebook/internal/salebook"
)

// Client – тонкий адаптер чтения аккаунтов Solana поверх пула RPC узлов.
type Client struct {
	pool       *rpc.Pool
	commitment solanarpc.CommitmentType
	logger     *zap.Logger
}

// Проверяем, что Client реализует источники данных salebook.
var (
	_ salebook.LedgerAccountSource   = (*Client)(nil)
	_ salebook.TokenDelegationSource = (*Client)(nil)
)

// NewClient создаёт новый клиент, принимая пул и логгер через dependency injection.
func NewClient(pool *rpc.Pool, logger *zap.Logger) *Client {
	return &Client{
		pool:       pool,
		commitment: solanarpc.CommitmentConfirmed,
		logger:     logger.Named("solbc-client"),
	}
}

// FetchByFilter returns the accounts of programID that are exactly dataSize
// bytes long and match every memcmp filter.
func (c *Client) FetchByFilter(
	ctx context.Context,
	programID solana.PublicKey,
	dataSize uint64,
	filters []salebook.MemcmpFilter,
) ([]salebook.KeyedAccount, error) {
	opts := solanarpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    []solanarpc.RPCFilter{{DataSize: dataSize}},
	}
	for _, f := range filters {
		opts.Filters = append(opts.Filters, solanarpc.RPCFilter{
			Memcmp: &solanarpc.RPCFilterMemcmp{
				Offset: f.Offset,
				Bytes:  f.Bytes,
			},
		})
	}

	var result solanarpc.GetProgramAccountsResult
	err := c.pool.Execute(ctx, "getProgramAccounts", func(ctx context.Context, client *solanarpc.Client) error {
		var err error
		result, err = client.GetProgramAccountsWithOpts(ctx, programID, &opts)
		return err
	})
	if err != nil {
		c.logger.Debug("GetProgramAccounts error",
			zap.String("program_id", programID.String()),
			zap.Error(err))
		return nil, err
	}

	accounts := make([]salebook.KeyedAccount, 0, len(result))
	for _, keyed := range result {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}
		accounts = append(accounts, salebook.KeyedAccount{
			Address: keyed.Pubkey,
			Data:    keyed.Account.Data.GetBinary(),
		})
	}

	c.logger.Debug("Program accounts fetched",
		zap.String("program_id", programID.String()),
		zap.Int("filters", len(filters)),
		zap.Int("accounts", len(accounts)))
	return accounts, nil
}

// FetchOne returns the raw data of one account owned by owner. A missing
// account yields an error wrapping salebook.ErrAccountNotFound.
func (c *Client) FetchOne(ctx context.Context, owner, address solana.PublicKey) ([]byte, error) {
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if !account.Owner.Equals(owner) {
		return nil, fmt.Errorf("%w: %s is owned by %s", salebook.ErrForeignAccount, address, account.Owner)
	}
	return account.Data.GetBinary(), nil
}

func (c *Client) getAccount(ctx context.Context, address solana.PublicKey) (*solanarpc.Account, error) {
	var result *solanarpc.GetAccountInfoResult
	err := c.pool.Execute(ctx, "getAccountInfo", func(ctx context.Context, client *solanarpc.Client) error {
		var err error
		result, err = client.GetAccountInfoWithOpts(ctx, address, &solanarpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: c.commitment,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", salebook.ErrAccountNotFound, address)
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", address.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil || result.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", salebook.ErrAccountNotFound, address)
	}
	return result.Value, nil
}

// FetchDelegation reads the live delegate and delegated amount of an SPL
// token account.
func (c *Client) FetchDelegation(ctx context.Context, tokenAccount solana.PublicKey) (salebook.DelegationState, error) {
	account, err := c.getAccount(ctx, tokenAccount)
	if err != nil {
		return salebook.DelegationState{}, err
	}
	if !account.Owner.Equals(solana.TokenProgramID) {
		return salebook.DelegationState{}, fmt.Errorf("%w: %s is owned by %s",
			ErrNotTokenAccount, tokenAccount, account.Owner)
	}

	state, err := DecodeDelegation(account.Data.GetBinary())
	if err != nil {
		return salebook.DelegationState{}, fmt.Errorf("token account %s: %w", tokenAccount, err)
	}
	return state, nil
}
