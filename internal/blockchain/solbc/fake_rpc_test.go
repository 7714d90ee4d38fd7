// internal/blockchain/solbc/fake_rpc_test.go
package solbc

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/salebook/internal/blockchain/solbc/rpc"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// fakeHandler answers one JSON-RPC call with either a result or an error.
type fakeHandler func(req rpcRequest) (any, *rpcErrorBody)

// fakeNode is a minimal Solana JSON-RPC endpoint.
type fakeNode struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]fakeHandler
	calls    map[string]int
	requests []rpcRequest
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	node := &fakeNode{
		handlers: make(map[string]fakeHandler),
		calls:    make(map[string]int),
	}
	node.Server = httptest.NewServer(http.HandlerFunc(node.serve))
	t.Cleanup(node.Close)
	return node
}

func (n *fakeNode) handle(method string, h fakeHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) callCount(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) lastRequest() rpcRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.requests[len(n.requests)-1]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	n.requests = append(n.requests, req)
	h := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if h == nil {
		resp["error"] = rpcErrorBody{Code: -32601, Message: "Method not found"}
	} else if result, rpcErr := h(req); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func accountJSON(owner solana.PublicKey, data []byte) map[string]any {
	return map[string]any{
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"lamports":   2039280,
		"owner":      owner.String(),
		"rentEpoch":  0,
		"space":      len(data),
	}
}

func accountInfoResult(owner solana.PublicKey, data []byte) map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   accountJSON(owner, data),
	}
}

func missingAccountResult() map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   nil,
	}
}

func newTestClient(t *testing.T, nodes ...*fakeNode) *Client {
	t.Helper()
	urls := make([]string, len(nodes))
	for i, n := range nodes {
		urls[i] = n.URL
	}
	pool, err := rpc.NewPool(urls, zaptest.NewLogger(t), rpc.PoolOptions{RetryDelay: 1})
	require.NoError(t, err)
	return NewClient(pool, zaptest.NewLogger(t))
}
