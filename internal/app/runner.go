// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/salebook/internal/blockchain/solbc"
	"github.com/rovshanmuradov/salebook/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/salebook/internal/config"
	"github.com/rovshanmuradov/salebook/internal/export"
	"github.com/rovshanmuradov/salebook/internal/format"
	"github.com/rovshanmuradov/salebook/internal/logger"
	"github.com/rovshanmuradov/salebook/internal/metrics"
	"github.com/rovshanmuradov/salebook/internal/salebook"
	"github.com/rovshanmuradov/salebook/internal/ui"
)

// Output formats accepted by the query commands.
const (
	OutputTable = "table"
	OutputCSV   = "csv"
	OutputJSON  = "json"
)

// OutputOptions controls how query results are printed.
type OutputOptions struct {
	Format   string
	ShowZero bool
	Closable bool // print only zero sales that anyone may close
}

// Runner wires the config, RPC pool and sale engine behind the CLI commands.
type Runner struct {
	logger   *logger.Logger
	config   *config.Config
	engine   *salebook.Engine
	exporter *export.SaleExporter
	metrics  *metrics.Collector
	out      io.Writer
}

// NewRunner builds the RPC pool and sale engine described by cfg.
func NewRunner(cfg *config.Config, log *logger.Logger, out io.Writer) (*Runner, error) {
	collector := metrics.NewCollector()
	pool, err := rpc.NewPool(cfg.RPCList, log.Logger, rpc.PoolOptions{
		RetryDelay:     cfg.RetryDelay(),
		RequestTimeout: cfg.RequestTimeout(),
		Observer:       collector,
	})
	if err != nil {
		return nil, err
	}
	client := solbc.NewClient(pool, log.Logger)

	engine, err := salebook.NewEngine(client, client, cfg.Program(), log.Logger, cfg.EngineOptions())
	if err != nil {
		return nil, fmt.Errorf("create sale engine: %w", err)
	}

	return &Runner{
		logger:   log,
		config:   cfg,
		engine:   engine,
		exporter: export.NewSaleExporter(log.WithComponent("export")),
		metrics:  collector,
		out:      out,
	}, nil
}

// Querier returns the mint query used by the live view. Its queries are
// recorded in the same metrics as the CLI commands.
func (r *Runner) Querier() ui.SaleQuerier {
	return mintQuerier{r}
}

type mintQuerier struct{ r *Runner }

func (q mintQuerier) SalesForMint(ctx context.Context, mint solana.PublicKey) (*salebook.QueryResult, error) {
	return q.r.QueryMint(ctx, mint)
}

// Metrics returns the collector fed by the pool and every query.
func (r *Runner) Metrics() *metrics.Collector {
	return r.metrics
}

// ServeMetrics publishes metrics on the configured address until ctx is done.
// It returns immediately when no address is configured.
func (r *Runner) ServeMetrics(ctx context.Context) error {
	if r.config.MetricsAddr == "" {
		return nil
	}
	return r.metrics.Serve(ctx, r.config.MetricsAddr, r.logger.Named("metrics"))
}

// QueryMint runs the mint query and records its outcome.
func (r *Runner) QueryMint(ctx context.Context, mint solana.PublicKey) (*salebook.QueryResult, error) {
	start := time.Now()
	result, err := r.engine.SalesForMint(ctx, mint)
	r.metrics.RecordQuery("mint", time.Since(start), result, err)
	return result, err
}

// SalesForMint prints every sale of mint.
func (r *Runner) SalesForMint(ctx context.Context, mint string, opts OutputOptions) error {
	key, err := parseKey("mint", mint)
	if err != nil {
		return err
	}

	opLogger, end := r.logger.TrackPerformance("sales_for_mint")
	defer end()
	opLogger.Info("Querying sales for mint", zap.String("mint", mint))

	result, err := r.QueryMint(ctx, key)
	if err != nil {
		return err
	}
	return r.print(result, "mint", mint, opts)
}

// SalesForWallet prints every sale posted by seller.
func (r *Runner) SalesForWallet(ctx context.Context, seller string, opts OutputOptions) error {
	key, err := parseKey("seller", seller)
	if err != nil {
		return err
	}

	opLogger, end := r.logger.TrackPerformance("sales_for_wallet")
	defer end()
	opLogger.Info("Querying sales for wallet", zap.String("seller", seller))

	start := time.Now()
	result, err := r.engine.SalesForWallet(ctx, key)
	r.metrics.RecordQuery("wallet", time.Since(start), result, err)
	if err != nil {
		return err
	}
	return r.print(result, "wallet", seller, opts)
}

// Lookup prints the sale backed by owner's associated token account for mint.
func (r *Runner) Lookup(ctx context.Context, owner, mint string) error {
	ownerKey, err := parseKey("owner", owner)
	if err != nil {
		return err
	}
	mintKey, err := parseKey("mint", mint)
	if err != nil {
		return err
	}

	opLogger, end := r.logger.TrackPerformance("lookup_sale")
	defer end()
	opLogger.Info("Looking up sale", zap.String("owner", owner), zap.String("mint", mint))

	start := time.Now()
	sale, err := r.engine.LookupSaleForOwner(ctx, ownerKey, mintKey)
	r.metrics.RecordQuery("lookup", time.Since(start), nil, err)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "sale:       %s\n", sale.Address)
	fmt.Fprintf(r.out, "seller:     %s\n", sale.Seller)
	fmt.Fprintf(r.out, "account:    %s\n", sale.TokenAccount)
	fmt.Fprintf(r.out, "mint:       %s\n", sale.TokenMint)
	fmt.Fprintf(r.out, "price:      %s SOL (%d lamports)\n", format.SOL(sale.AskPrice), sale.AskPrice)
	fmt.Fprintf(r.out, "delegated:  %d\n", sale.DelegatedAmount)
	fmt.Fprintf(r.out, "status:     %s\n", sale.Status)
	if sale.Degraded {
		fmt.Fprintf(r.out, "degraded:   %v\n", sale.DegradedReason)
	}
	return nil
}

// Authority prints the book authority of the configured program.
func (r *Runner) Authority() {
	authority := r.engine.BookAuthority()
	fmt.Fprintf(r.out, "program:    %s\n", r.engine.ProgramID())
	fmt.Fprintf(r.out, "authority:  %s\n", authority.Address)
	fmt.Fprintf(r.out, "bump:       %d\n", authority.Bump)
}

func (r *Runner) print(result *salebook.QueryResult, query, key string, opts OutputOptions) error {
	if err := result.Err(); err != nil {
		r.logger.Warn("Some sale accounts could not be decoded", zap.Error(err))
	}

	if opts.Closable {
		result = &salebook.QueryResult{Zero: result.Closable(), DecodeErrors: result.DecodeErrors}
		opts.ShowZero = true
	}

	switch opts.Format {
	case "", OutputTable:
		fmt.Fprintln(r.out, ui.RenderSales(result, ui.RenderOptions{ShowZero: opts.ShowZero}))
		return nil
	case OutputCSV, OutputJSON:
		return r.exporter.Export(r.out, result, export.ExportOptions{
			Format:      export.ExportFormat(opts.Format),
			IncludeZero: opts.ShowZero,
			Query:       query,
			Key:         key,
		})
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func parseKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return key, nil
}
