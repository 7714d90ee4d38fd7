// =============================
// File: internal/salebook/classify.go
// =============================
package salebook

import (
	"sort"

	"github.com/gagliardetto/solana-go"
)

// Classify reconciles a sale record with the delegation observed on its
// token account. A sale is active only while authority is the delegate and
// some amount is still delegated. The record itself is never trusted to say
// a sale is live.
//
// A partially consumed delegation stays active at the posted price for the
// remaining amount.
func Classify(record SaleRecord, state DelegationState, authority solana.PublicKey) ClassifiedSale {
	sale := ClassifiedSale{
		SaleRecord:      record,
		DelegatedAmount: state.DelegatedAmount,
		Status:          StatusZero,
	}
	if state.Delegate != nil && state.Delegate.Equals(authority) && state.DelegatedAmount > 0 {
		sale.Status = StatusActive
	}
	return sale
}

// degraded is the classification used when the delegation could not be read.
func degraded(record SaleRecord, reason error) ClassifiedSale {
	return ClassifiedSale{
		SaleRecord:     record,
		Status:         StatusZero,
		Degraded:       true,
		DegradedReason: reason,
	}
}

// partition splits classified sales by status, keeping their relative order.
func partition(sales []ClassifiedSale) (active, zero []ClassifiedSale) {
	active = make([]ClassifiedSale, 0, len(sales))
	zero = make([]ClassifiedSale, 0)
	for _, s := range sales {
		if s.Status == StatusActive {
			active = append(active, s)
		} else {
			zero = append(zero, s)
		}
	}
	return active, zero
}

// SortByPrice orders sales by ascending ask price in place. Ties keep their
// incoming order.
func SortByPrice(sales []ClassifiedSale) {
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].AskPrice < sales[j].AskPrice
	})
}
