// =============================
// File: internal/salebook/engine.go
// =============================
package salebook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EngineOptions tunes a query engine.
type EngineOptions struct {
	// Concurrency bounds the delegation fetches in flight for one query.
	Concurrency int
	// FetchRetries is the number of attempts for the filtered account fetch.
	FetchRetries int
	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration
}

// DefaultEngineOptions returns the defaults used when no options are given.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Concurrency:  8,
		FetchRetries: 3,
		RetryDelay:   500 * time.Millisecond,
	}
}

// Engine answers sale queries for one registry program.
//
// The filtered fetch and each delegation fetch read the ledger at different
// moments, so a sale can change state between them. Results are point-in-time
// hints for display and ranking; the program re-checks the delegation when a
// purchase is made.
type Engine struct {
	ledger    LedgerAccountSource
	tokens    TokenDelegationSource
	programID solana.PublicKey
	authority AuthorityDescriptor
	opts      EngineOptions
	logger    *zap.Logger
}

// NewEngine creates an engine over the given sources. The book authority is
// derived once here.
func NewEngine(
	ledger LedgerAccountSource,
	tokens TokenDelegationSource,
	programID solana.PublicKey,
	logger *zap.Logger,
	opts ...EngineOptions,
) (*Engine, error) {
	if ledger == nil || tokens == nil {
		return nil, errors.New("ledger and token sources are required")
	}

	options := DefaultEngineOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Concurrency <= 0 {
		options.Concurrency = 1
	}
	if options.FetchRetries <= 0 {
		options.FetchRetries = 1
	}

	authority, err := BookAuthority(programID)
	if err != nil {
		return nil, err
	}

	logger = logger.Named("sale-engine")
	logger.Debug("Sale engine created",
		zap.String("program_id", programID.String()),
		zap.String("book_authority", authority.Address.String()),
		zap.Uint8("book_authority_bump", authority.Bump),
		zap.Int("concurrency", options.Concurrency))

	return &Engine{
		ledger:    ledger,
		tokens:    tokens,
		programID: programID,
		authority: authority,
		opts:      options,
		logger:    logger,
	}, nil
}

// BookAuthority returns the derived authority sellers delegate to.
func (e *Engine) BookAuthority() AuthorityDescriptor {
	return e.authority
}

// ProgramID returns the registry program the engine queries.
func (e *Engine) ProgramID() solana.PublicKey {
	return e.programID
}

// SaleAddress derives the sale account that a token account would back.
func (e *Engine) SaleAddress(tokenAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	return SaleAddress(e.programID, tokenAccount)
}

// SalesForMint returns every sale of mint, partitioned into active and zero.
// The result is not sorted; see SortByPrice.
func (e *Engine) SalesForMint(ctx context.Context, mint solana.PublicKey) (*QueryResult, error) {
	return e.query(ctx, "mint", MemcmpFilter{Offset: MintOffset, Bytes: mint.Bytes()})
}

// SalesForWallet returns every sale posted by seller, partitioned into
// active and zero.
func (e *Engine) SalesForWallet(ctx context.Context, seller solana.PublicKey) (*QueryResult, error) {
	return e.query(ctx, "wallet", MemcmpFilter{Offset: SellerOffset, Bytes: seller.Bytes()})
}

func (e *Engine) query(ctx context.Context, kind string, filter MemcmpFilter) (*QueryResult, error) {
	logger := e.logger.With(
		zap.String("query", kind),
		zap.String("key", solana.PublicKeyFromBytes(filter.Bytes).String()))

	accounts, err := e.fetchCandidates(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{}
	records := make([]SaleRecord, 0, len(accounts))
	for _, acc := range accounts {
		record, err := DecodeSale(acc.Data, acc.Address)
		if err != nil {
			logger.Warn("Skipping malformed sale account",
				zap.String("address", acc.Address.String()),
				zap.Error(err))
			result.DecodeErrors = append(result.DecodeErrors, err)
			continue
		}
		records = append(records, record)
	}

	sales, err := e.classifyAll(ctx, records)
	if err != nil {
		return nil, err
	}
	result.Active, result.Zero = partition(sales)

	logger.Info("Sale query completed",
		zap.Int("candidates", len(accounts)),
		zap.Int("active", len(result.Active)),
		zap.Int("zero", len(result.Zero)),
		zap.Int("malformed", len(result.DecodeErrors)))

	return result, nil
}

// fetchCandidates runs the filtered fetch with bounded retries.
func (e *Engine) fetchCandidates(ctx context.Context, filter MemcmpFilter) ([]KeyedAccount, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.opts.RetryDelay
	policy.MaxInterval = e.opts.RetryDelay * 10

	notify := func(err error, delay time.Duration) {
		e.logger.Debug("Filtered fetch failed, retrying",
			zap.Error(err),
			zap.Duration("backoff", delay))
	}

	operation := func() ([]KeyedAccount, error) {
		return e.ledger.FetchByFilter(ctx, e.programID, SaleAccountSize, []MemcmpFilter{filter})
	}

	accounts, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(e.opts.FetchRetries)),
		backoff.WithNotify(notify))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		e.logger.Error("Filtered fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return accounts, nil
}

// classifyAll fetches the delegation of every record concurrently and
// classifies each one. Output order matches records.
func (e *Engine) classifyAll(ctx context.Context, records []SaleRecord) ([]ClassifiedSale, error) {
	sales := make([]ClassifiedSale, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, record := range records {
		g.Go(func() error {
			sale, err := e.classifyOne(gctx, record)
			if err != nil {
				return err
			}
			sales[i] = sale
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return sales, nil
}

// classifyOne returns an error only when ctx ended; any other fetch failure
// yields a degraded zero sale.
func (e *Engine) classifyOne(ctx context.Context, record SaleRecord) (ClassifiedSale, error) {
	if err := ctx.Err(); err != nil {
		return ClassifiedSale{}, err
	}

	state, err := e.tokens.FetchDelegation(ctx, record.TokenAccount)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ClassifiedSale{}, ctxErr
		}
		e.logger.Warn("Delegation unavailable, classifying sale as zero",
			zap.String("sale", record.Address.String()),
			zap.String("token_account", record.TokenAccount.String()),
			zap.Error(err))
		return degraded(record, err), nil
	}

	sale := Classify(record, state, e.authority.Address)
	e.logger.Debug("Sale classified",
		zap.String("sale", record.Address.String()),
		zap.String("status", string(sale.Status)),
		zap.Uint64("ask_price", record.AskPrice),
		zap.Uint64("delegated_amount", sale.DelegatedAmount))
	return sale, nil
}
