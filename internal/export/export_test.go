package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/salebook/internal/salebook"
)

func sale(price, delegated uint64, status salebook.SaleStatus) salebook.ClassifiedSale {
	return salebook.ClassifiedSale{
		SaleRecord: salebook.SaleRecord{
			Address:      solana.NewWallet().PublicKey(),
			Seller:       solana.NewWallet().PublicKey(),
			TokenAccount: solana.NewWallet().PublicKey(),
			TokenMint:    solana.NewWallet().PublicKey(),
			AskPrice:     price,
		},
		DelegatedAmount: delegated,
		Status:          status,
	}
}

func generateTestResult() *salebook.QueryResult {
	degraded := sale(5, 0, salebook.StatusZero)
	degraded.Degraded = true
	return &salebook.QueryResult{
		Active: []salebook.ClassifiedSale{
			sale(3_000_000_000, 10, salebook.StatusActive),
			sale(20, 70, salebook.StatusActive),
		},
		Zero: []salebook.ClassifiedSale{
			sale(40, 0, salebook.StatusZero),
			degraded,
		},
		DecodeErrors: []error{errors.New("bad discriminator")},
	}
}

func TestSaleExportCSV(t *testing.T) {
	exporter := NewSaleExporter(zap.NewNop())
	result := generateTestResult()

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, result, ExportOptions{Format: FormatCSV}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus active sales only")
	assert.Equal(t, CSVHeaders(), records[0])
	assert.Equal(t, "20", records[1][4])
	assert.Equal(t, "0.00000002", records[1][5])
	assert.Equal(t, "3", records[2][5])
	assert.Equal(t, "active", records[2][7])
}

func TestSaleExportCSVIncludeZero(t *testing.T) {
	exporter := NewSaleExporter(zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, generateTestResult(), ExportOptions{Format: FormatCSV, IncludeZero: true}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "5", records[3][4], "zero sales sorted by price")
	assert.Equal(t, "true", records[3][8])
	assert.Equal(t, "zero", records[4][7])
}

func TestSaleExportJSON(t *testing.T) {
	exporter := NewSaleExporter(zap.NewNop())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	exporter.now = func() time.Time { return fixed }

	var buf bytes.Buffer
	err := exporter.Export(&buf, generateTestResult(), ExportOptions{
		Format: FormatJSON, Query: "mint", Key: "M1", IncludeZero: true,
	})
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, fixed, report.ExportTime)
	assert.Equal(t, "mint", report.Query)
	assert.Len(t, report.Sales, 4)
	assert.Equal(t, ExportSummary{
		Active:         2,
		Zero:           2,
		Closable:       1,
		Degraded:       1,
		Malformed:      1,
		BestAsk:        uint64Ptr(20),
		BestAskSOL:     "0.00000002",
		TotalDelegated: 80,
	}, report.Summary)
}

func TestSaleExportDoesNotReorderResult(t *testing.T) {
	exporter := NewSaleExporter(zap.NewNop())
	result := generateTestResult()
	first := result.Active[0].Address

	require.NoError(t, exporter.Export(&bytes.Buffer{}, result, ExportOptions{Format: FormatCSV}))
	assert.Equal(t, first, result.Active[0].Address)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	err = NewSaleExporter(zap.NewNop()).Export(&bytes.Buffer{}, generateTestResult(), ExportOptions{Format: "xml"})
	assert.Error(t, err)
}

func TestCalculateSummaryEmpty(t *testing.T) {
	summary := CalculateSummary(&salebook.QueryResult{})
	assert.Equal(t, ExportSummary{}, summary)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "best_ask")
}

func TestCalculateSummaryFreeAsk(t *testing.T) {
	result := &salebook.QueryResult{Active: []salebook.ClassifiedSale{
		sale(9, 1, salebook.StatusActive),
		sale(0, 1, salebook.StatusActive),
	}}

	summary := CalculateSummary(result)
	require.NotNil(t, summary.BestAsk)
	assert.Equal(t, uint64(0), *summary.BestAsk)
	assert.Equal(t, "0", summary.BestAskSOL)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"best_ask":0`)
}

func TestCalculateSummaryTotalSaturates(t *testing.T) {
	result := &salebook.QueryResult{Active: []salebook.ClassifiedSale{
		sale(1, math.MaxUint64-5, salebook.StatusActive),
		sale(2, 10, salebook.StatusActive),
		sale(3, 1, salebook.StatusActive),
	}}

	assert.Equal(t, uint64(math.MaxUint64), CalculateSummary(result).TotalDelegated)
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
