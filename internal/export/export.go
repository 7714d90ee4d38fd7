package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/salebook/internal/format"
	"github.com/rovshanmuradov/salebook/internal/salebook"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case FormatCSV, FormatJSON:
		return ExportFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format      ExportFormat
	IncludeZero bool // also write zero sales
	Query       string
	Key         string
}

// SaleExporter writes query results as CSV or JSON reports.
type SaleExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSaleExporter creates a new sale exporter
func NewSaleExporter(logger *zap.Logger) *SaleExporter {
	return &SaleExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// SaleRow is one exported sale.
type SaleRow struct {
	Sale            string `json:"sale"`
	Seller          string `json:"seller"`
	TokenAccount    string `json:"token_account"`
	Mint            string `json:"mint"`
	AskPrice        uint64 `json:"ask_price"`
	AskPriceSOL     string `json:"ask_price_sol"`
	DelegatedAmount uint64 `json:"delegated_amount"`
	Status          string `json:"status"`
	Degraded        bool   `json:"degraded"`
}

// ExportSummary contains summary statistics for an exported result
type ExportSummary struct {
	Active         int     `json:"active"`
	Zero           int     `json:"zero"`
	Closable       int     `json:"closable"`
	Degraded       int     `json:"degraded"`
	Malformed      int     `json:"malformed"`
	BestAsk        *uint64 `json:"best_ask,omitempty"` // nil when nothing is active
	BestAskSOL     string  `json:"best_ask_sol,omitempty"`
	TotalDelegated uint64  `json:"total_delegated"` // saturates at MaxUint64
}

// Report is the JSON document written for one query.
type Report struct {
	ExportTime time.Time     `json:"export_time"`
	Query      string        `json:"query,omitempty"`
	Key        string        `json:"key,omitempty"`
	Summary    ExportSummary `json:"summary"`
	Sales      []SaleRow     `json:"sales"`
}

// CSVHeaders returns the column names of a CSV export
func CSVHeaders() []string {
	return []string{"sale", "seller", "token_account", "mint", "ask_price", "ask_price_sol", "delegated_amount", "status", "degraded"}
}

// ToCSV renders the row in CSVHeaders order
func (r SaleRow) ToCSV() []string {
	return []string{
		r.Sale,
		r.Seller,
		r.TokenAccount,
		r.Mint,
		strconv.FormatUint(r.AskPrice, 10),
		r.AskPriceSOL,
		strconv.FormatUint(r.DelegatedAmount, 10),
		r.Status,
		strconv.FormatBool(r.Degraded),
	}
}

// Export writes result to w. Active sales come first, each group ordered by
// ascending ask price.
func (se *SaleExporter) Export(w io.Writer, result *salebook.QueryResult, options ExportOptions) error {
	rows := se.rows(result, options.IncludeZero)

	var err error
	switch options.Format {
	case FormatCSV:
		err = se.exportToCSV(w, rows)
	case FormatJSON:
		err = se.exportToJSON(w, rows, result, options)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return err
	}

	se.logger.Debug("Sales exported",
		zap.Int("count", len(rows)),
		zap.String("format", string(options.Format)))
	return nil
}

func (se *SaleExporter) rows(result *salebook.QueryResult, includeZero bool) []SaleRow {
	active := append([]salebook.ClassifiedSale(nil), result.Active...)
	salebook.SortByPrice(active)

	rows := make([]SaleRow, 0, result.Total())
	for _, s := range active {
		rows = append(rows, toRow(s))
	}
	if includeZero {
		zero := append([]salebook.ClassifiedSale(nil), result.Zero...)
		salebook.SortByPrice(zero)
		for _, s := range zero {
			rows = append(rows, toRow(s))
		}
	}
	return rows
}

func toRow(s salebook.ClassifiedSale) SaleRow {
	return SaleRow{
		Sale:            s.Address.String(),
		Seller:          s.Seller.String(),
		TokenAccount:    s.TokenAccount.String(),
		Mint:            s.TokenMint.String(),
		AskPrice:        s.AskPrice,
		AskPriceSOL:     format.SOL(s.AskPrice),
		DelegatedAmount: s.DelegatedAmount,
		Status:          string(s.Status),
		Degraded:        s.Degraded,
	}
}

func (se *SaleExporter) exportToCSV(w io.Writer, rows []SaleRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.ToCSV()); err != nil {
			return fmt.Errorf("failed to write sale: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (se *SaleExporter) exportToJSON(w io.Writer, rows []SaleRow, result *salebook.QueryResult, options ExportOptions) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	report := Report{
		ExportTime: se.now().UTC(),
		Query:      options.Query,
		Key:        options.Key,
		Summary:    CalculateSummary(result),
		Sales:      rows,
	}
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// CalculateSummary calculates summary statistics for a query result
func CalculateSummary(result *salebook.QueryResult) ExportSummary {
	summary := ExportSummary{
		Active:    len(result.Active),
		Zero:      len(result.Zero),
		Closable:  len(result.Closable()),
		Malformed: len(result.DecodeErrors),
	}

	for _, s := range result.Active {
		if summary.BestAsk == nil || s.AskPrice < *summary.BestAsk {
			price := s.AskPrice
			summary.BestAsk = &price
		}
		summary.TotalDelegated = addSaturating(summary.TotalDelegated, s.DelegatedAmount)
	}
	if summary.BestAsk != nil {
		summary.BestAskSOL = format.SOL(*summary.BestAsk)
	}

	for _, s := range result.Zero {
		if s.Degraded {
			summary.Degraded++
		}
	}
	return summary
}

func addSaturating(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}
