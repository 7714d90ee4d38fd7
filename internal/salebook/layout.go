// =============================
// File: internal/salebook/layout.go
// =============================
package salebook

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"

	binutil "github.com/rovshanmuradov/salebook/internal/utils/binary"
)

// Sale account layout. Offsets are fixed by the on-chain program; filtered
// queries match raw bytes at SellerOffset and MintOffset.
const (
	DiscriminatorOffset = 0
	SellerOffset        = 8
	TokenAccountOffset  = 40
	MintOffset          = 72
	PriceOffset         = 104
	BumpOffset          = 112

	// SaleAccountSize is the exact length of a sale account.
	SaleAccountSize = 113
)

// SaleDiscriminator is the Anchor account tag for Sale: sha256("account:Sale")[:8].
var SaleDiscriminator = accountDiscriminator("Sale")

func accountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:8]
}

// EncodeSale serializes r into a SaleAccountSize buffer. r.Address is not encoded.
func EncodeSale(r SaleRecord) []byte {
	return binutil.NewWriter(SaleAccountSize).
		Bytes(SaleDiscriminator).
		PubKey(r.Seller).
		PubKey(r.TokenAccount).
		PubKey(r.TokenMint).
		Uint64(r.AskPrice).
		Uint8(r.Bump).
		Data()
}

// DecodeSale parses a sale account stored at address. Only the length and
// the discriminator are checked.
func DecodeSale(data []byte, address solana.PublicKey) (SaleRecord, error) {
	if len(data) != SaleAccountSize {
		return SaleRecord{}, &MalformedRecordError{
			Address: address,
			Reason:  fmt.Sprintf("expected %d bytes, got %d", SaleAccountSize, len(data)),
		}
	}

	r := binutil.NewReader(data)
	if tag := r.Bytes(len(SaleDiscriminator)); !bytes.Equal(tag, SaleDiscriminator) {
		return SaleRecord{}, &MalformedRecordError{
			Address: address,
			Reason:  fmt.Sprintf("unexpected discriminator %x", tag),
		}
	}

	record := SaleRecord{
		Address:      address,
		Seller:       r.PubKey(),
		TokenAccount: r.PubKey(),
		TokenMint:    r.PubKey(),
		AskPrice:     r.Uint64(),
		Bump:         r.Uint8(),
	}
	if err := r.Err(); err != nil {
		return SaleRecord{}, &MalformedRecordError{Address: address, Reason: err.Error()}
	}
	return record, nil
}
