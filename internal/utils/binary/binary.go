// internal/utils/binary/binary.go
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PubKeySize is the width of an encoded public key.
const PubKeySize = 32

// ErrShortBuffer is returned when a field runs past the end of the data.
var ErrShortBuffer = errors.New("short buffer")

// Reader decodes fixed-width little-endian fields in order. The first
// failure sticks: later reads return zero values and Err reports it.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader starts reading data at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, len(r.data))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Bytes returns the next n raw bytes.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

// PubKey reads a 32 byte public key.
func (r *Reader) PubKey() solana.PublicKey {
	b := r.take(PubKeySize)
	if b == nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

// Uint64 reads a little-endian u64.
func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Offset is the position of the next field.
func (r *Reader) Offset() int {
	return r.off
}

// Err returns the first decoding failure.
func (r *Reader) Err() error {
	return r.err
}

// Writer appends fixed-width little-endian fields.
type Writer struct {
	buf []byte
}

// NewWriter preallocates size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

func (w *Writer) Bytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) PubKey(key solana.PublicKey) *Writer {
	w.buf = append(w.buf, key[:]...)
	return w
}

func (w *Writer) Uint64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *Writer) Uint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// Data returns the encoded bytes.
func (w *Writer) Data() []byte {
	return w.buf
}
