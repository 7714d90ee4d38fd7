// =============================
// File: internal/salebook/lookup.go
// =============================
package salebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// LookupSale reads and classifies the sale stored at saleAddress.
func (e *Engine) LookupSale(ctx context.Context, saleAddress solana.PublicKey) (*ClassifiedSale, error) {
	data, err := e.ledger.FetchOne(ctx, e.programID, saleAddress)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case errors.Is(err, ErrAccountNotFound):
			return nil, fmt.Errorf("%w: %s", ErrSaleNotFound, saleAddress)
		case errors.Is(err, ErrForeignAccount):
			return nil, fmt.Errorf("%w: %w", ErrSaleNotFound, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
	}

	record, err := DecodeSale(data, saleAddress)
	if err != nil {
		return nil, err
	}

	sale, err := e.classifyOne(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return &sale, nil
}

// LookupSaleForOwner finds the sale backed by owner's associated token
// account for mint.
func (e *Engine) LookupSaleForOwner(ctx context.Context, owner, mint solana.PublicKey) (*ClassifiedSale, error) {
	tokenAccount, err := AssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	saleAddress, _, err := e.SaleAddress(tokenAccount)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Looking up sale for owner",
		zap.String("owner", owner.String()),
		zap.String("mint", mint.String()),
		zap.String("token_account", tokenAccount.String()),
		zap.String("sale", saleAddress.String()))

	return e.LookupSale(ctx, saleAddress)
}
