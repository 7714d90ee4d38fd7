// internal/blockchain/solbc/rpc/errors.go
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	// ErrNoRPCNodes возникает, когда пул создаётся без узлов
	ErrNoRPCNodes = errors.New("no RPC nodes configured")

	// ErrNoActiveClients возникает, когда все узлы выведены из ротации
	ErrNoActiveClients = errors.New("no active RPC clients available")
)

// Error is a failed call on one node.
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

// Error prints the node without path or query, which often carry API keys.
// Errors raised before any node was picked carry no node.
func (e *Error) Error() string {
	if e.NodeURL == "" {
		return fmt.Sprintf("%s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Method, RedactURL(e.NodeURL), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает новую ошибку RPC
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// RedactURL keeps only the scheme and host of a node URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid url>"
	}
	return u.Scheme + "://" + u.Host
}

// IsPermanentError reports errors that another attempt cannot fix.
func IsPermanentError(err error) bool {
	return errors.Is(err, solanarpc.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		IsCriticalError(err)
}

// IsCriticalError reports a node that is misconfigured rather than busy:
// it rejects the request shape or our credentials.
func IsCriticalError(err error) bool {
	if err == nil {
		return false
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		// -32600 invalid request, -32601 method not found
		return rpcErr.Code == -32600 || rpcErr.Code == -32601
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "forbidden")
}

// IsRateLimited reports a node asking us to slow down. Such errors are
// retried on the next node.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
