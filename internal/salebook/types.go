// =============================
// File: internal/salebook/types.go
// =============================
package salebook

import (
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the deployed zero_liquid sale registry.
var ProgramID = solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")

// SaleRecord is a decoded sale account. Address is where the record lives on
// the ledger and is not part of the serialized bytes.
type SaleRecord struct {
	Address      solana.PublicKey
	Seller       solana.PublicKey
	TokenAccount solana.PublicKey
	TokenMint    solana.PublicKey
	AskPrice     uint64 // lamports per token, unscaled
	Bump         uint8
}

// DelegationState is the live spending authorization on a token account.
// Delegate is nil when the account has no delegate.
type DelegationState struct {
	Delegate        *solana.PublicKey
	DelegatedAmount uint64
}

// SaleStatus is the classification of a sale against its live delegation.
type SaleStatus string

const (
	StatusActive SaleStatus = "active"
	StatusZero   SaleStatus = "zero"
)

// ClassifiedSale is a point-in-time view of a sale. It is built fresh by
// every query and never updated afterwards.
type ClassifiedSale struct {
	SaleRecord
	DelegatedAmount uint64
	Status          SaleStatus

	// Degraded is set when the delegation could not be fetched. Such sales
	// are always reported as zero with DelegatedAmount 0.
	Degraded       bool
	DegradedReason error
}

// AuthorityDescriptor is the book authority PDA that holds delegated
// spending rights for every sale of a program.
type AuthorityDescriptor struct {
	Address solana.PublicKey
	Bump    uint8
}

// QueryResult partitions the sales returned by one query.
type QueryResult struct {
	Active       []ClassifiedSale
	Zero         []ClassifiedSale
	DecodeErrors []error
}

// Total returns the number of classified sales.
func (r *QueryResult) Total() int {
	return len(r.Active) + len(r.Zero)
}

// Closable returns the zero sales whose token account was observed with
// nothing delegated. close_sale rejects any other sale, including one that is
// zero only because its tokens are delegated to someone else. Degraded sales
// are left out because their delegation was never read.
func (r *QueryResult) Closable() []ClassifiedSale {
	var out []ClassifiedSale
	for _, s := range r.Zero {
		if !s.Degraded && s.DelegatedAmount == 0 {
			out = append(out, s)
		}
	}
	return out
}
