// =============================
// File: internal/salebook/errors.go
// =============================
package salebook

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/multierr"
)

var (
	// ErrDerivationExhausted is returned when no bump in 255..0 yields an
	// off-curve address.
	ErrDerivationExhausted = errors.New("program address derivation exhausted")

	// ErrInvalidSeeds is returned for seed sets the ledger would never accept.
	ErrInvalidSeeds = errors.New("invalid program address seeds")

	// ErrMalformedRecord marks a single account that is not a sale record.
	ErrMalformedRecord = errors.New("malformed sale record")

	// ErrSourceUnavailable means the ledger could not be queried; the whole
	// call can be retried.
	ErrSourceUnavailable = errors.New("account source unavailable")

	// ErrCancelled is returned when the caller's context ends mid-query. No
	// partial result accompanies it.
	ErrCancelled = errors.New("query cancelled")

	// ErrAccountNotFound is returned by sources when an address holds no account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrForeignAccount is returned by sources when an account belongs to
	// another program.
	ErrForeignAccount = errors.New("account owned by another program")

	// ErrSaleNotFound is returned by point lookups when no sale exists.
	ErrSaleNotFound = errors.New("sale not found")
)

// MalformedRecordError describes why one raw account failed to decode.
type MalformedRecordError struct {
	Address solana.PublicKey
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrMalformedRecord, e.Address, e.Reason)
}

// Unwrap lets callers match ErrMalformedRecord with errors.Is.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Err combines all per-record decode errors, or returns nil when there were none.
func (r *QueryResult) Err() error {
	return multierr.Combine(r.DecodeErrors...)
}
