package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/salebook/internal/config"
	"github.com/rovshanmuradov/salebook/internal/export"
	"github.com/rovshanmuradov/salebook/internal/logger"
	"github.com/rovshanmuradov/salebook/internal/salebook"
)

// книга из одной продажи, у которой делегирование уже израсходовано
type fakeBook struct {
	sale []byte
}

func (b *fakeBook) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	account := func(owner solana.PublicKey, data []byte) map[string]any {
		return map[string]any{
			"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
			"executable": false,
			"lamports":   1,
			"owner":      owner.String(),
			"rentEpoch":  0,
		}
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch req.Method {
	case "getProgramAccounts":
		resp["result"] = []map[string]any{
			{"pubkey": solana.NewWallet().PublicKey().String(), "account": account(salebook.ProgramID, b.sale)},
		}
	case "getAccountInfo":
		// empty token account: no delegate
		data := make([]byte, 165)
		data[108] = 1
		resp["result"] = map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   account(solana.TokenProgramID, data),
		}
	default:
		resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestRunner(t *testing.T, url string) (*Runner, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		RPCList:          []string{url},
		ProgramID:        salebook.ProgramID.String(),
		Concurrency:      2,
		Retries:          1,
		RetryDelayMs:     1,
		RequestTimeoutMs: 2000,
	}
	log, err := logger.NewWithConsole(logger.DefaultConfig(), logger.NewLogBuffer(50))
	require.NoError(t, err)

	var out bytes.Buffer
	runner, err := NewRunner(cfg, log, &out)
	require.NoError(t, err)
	return runner, &out
}

func startBook(t *testing.T, price uint64) (*httptest.Server, salebook.SaleRecord) {
	t.Helper()
	record := salebook.SaleRecord{
		Seller:       solana.NewWallet().PublicKey(),
		TokenAccount: solana.NewWallet().PublicKey(),
		TokenMint:    solana.NewWallet().PublicKey(),
		AskPrice:     price,
	}
	book := &fakeBook{sale: salebook.EncodeSale(record)}
	server := httptest.NewServer(http.HandlerFunc(book.serve))
	t.Cleanup(server.Close)
	return server, record
}

func TestRunnerAuthority(t *testing.T) {
	runner, out := newTestRunner(t, "http://127.0.0.1:1")

	runner.Authority()

	authority, err := salebook.BookAuthority(salebook.ProgramID)
	require.NoError(t, err)
	assert.Contains(t, out.String(), authority.Address.String())
	assert.Contains(t, out.String(), salebook.ProgramID.String())
}

func TestRunnerRejectsInvalidKeys(t *testing.T) {
	runner, _ := newTestRunner(t, "http://127.0.0.1:1")
	ctx := context.Background()

	assert.ErrorContains(t, runner.SalesForMint(ctx, "not-a-key", OutputOptions{}), "invalid mint")
	assert.ErrorContains(t, runner.SalesForWallet(ctx, "???", OutputOptions{}), "invalid seller")
	assert.ErrorContains(t, runner.Lookup(ctx, solana.NewWallet().PublicKey().String(), "x"), "invalid mint")
}

func TestRunnerSalesForMintTable(t *testing.T) {
	server, record := startBook(t, 1_500_000_000)
	runner, out := newTestRunner(t, server.URL)

	err := runner.SalesForMint(context.Background(), record.TokenMint.String(), OutputOptions{ShowZero: true})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "0 active")
	assert.Contains(t, text, "1 closable")
	assert.Contains(t, text, "1.5")
}

func TestRunnerClosableCSV(t *testing.T) {
	server, record := startBook(t, 42)
	runner, out := newTestRunner(t, server.URL)

	err := runner.SalesForWallet(context.Background(), record.Seller.String(), OutputOptions{
		Format:   OutputCSV,
		Closable: true,
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, export.CSVHeaders(), rows[0])
	assert.Equal(t, "42", rows[1][4])
	assert.Equal(t, "zero", rows[1][7])
}

func TestRunnerJSONReport(t *testing.T) {
	server, record := startBook(t, 7)
	runner, out := newTestRunner(t, server.URL)

	err := runner.SalesForMint(context.Background(), record.TokenMint.String(), OutputOptions{Format: OutputJSON})
	require.NoError(t, err)

	var report export.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "mint", report.Query)
	assert.Equal(t, record.TokenMint.String(), report.Key)
	assert.Equal(t, 1, report.Summary.Zero)
	assert.Empty(t, report.Sales, "zero sales hidden without ShowZero")
}

func TestRunnerUnknownFormat(t *testing.T) {
	server, record := startBook(t, 7)
	runner, _ := newTestRunner(t, server.URL)

	err := runner.SalesForMint(context.Background(), record.TokenMint.String(), OutputOptions{Format: "xml"})
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestRunnerSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	runner, _ := newTestRunner(t, server.URL)

	err := runner.SalesForMint(context.Background(), solana.NewWallet().PublicKey().String(), OutputOptions{})
	assert.True(t, errors.Is(err, salebook.ErrSourceUnavailable))
}

func TestRunnerRecordsMetrics(t *testing.T) {
	server, record := startBook(t, 7)
	runner, _ := newTestRunner(t, server.URL)

	result, err := runner.Querier().SalesForMint(context.Background(), record.TokenMint)
	require.NoError(t, err)
	require.Len(t, result.Zero, 1)

	families, err := runner.Metrics().Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["salebook_queries_total"])
	assert.True(t, names["salebook_rpc_requests_total"])
	assert.True(t, names["salebook_sales_classified_total"])
}

func TestRunnerServeMetricsDisabled(t *testing.T) {
	runner, _ := newTestRunner(t, "http://127.0.0.1:1")
	assert.NoError(t, runner.ServeMetrics(context.Background()))
}
