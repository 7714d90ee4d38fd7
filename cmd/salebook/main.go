package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/salebook/internal/app"
	"github.com/rovshanmuradov/salebook/internal/config"
	"github.com/rovshanmuradov/salebook/internal/logger"
	"github.com/rovshanmuradov/salebook/internal/salebook"
	"github.com/rovshanmuradov/salebook/internal/ui"
)

const usage = `usage: salebook [flags] <command> [args]

commands:
  mint MINT           sales of one token mint
  wallet SELLER       sales posted by one seller
  lookup OWNER MINT   the sale backed by OWNER's token account for MINT
  authority           the book authority of the program
  tui MINT            live order book for MINT

flags:
`

// exit codes
const (
	exitOK = iota
	exitError
	exitUsage
	exitCancelled
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("salebook", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to config file (yaml or json)")
	outputFormat := flags.String("format", app.OutputTable, "Output format: table, csv or json")
	showZero := flags.Bool("zero", false, "Include sales with nothing left to sell")
	closable := flags.Bool("closable", false, "Show only zero sales that may be closed")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	command := flags.Args()
	if len(command) == 0 || !validArgs(command) {
		flags.Usage()
		return exitUsage
	}

	// Create context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitError
	}

	logCfg := logger.ForCLI(cfg.LogFile, cfg.DebugLogging)

	// в TUI консольный вывод логов уходит в буфер
	var logs *logger.LogBuffer
	var appLogger *logger.Logger
	if command[0] == "tui" {
		logs = logger.NewLogBuffer(200)
		appLogger, err = logger.NewWithConsole(logCfg, logs)
	} else {
		appLogger, err = logger.NewWithConsole(logCfg, stderr)
	}
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		return exitError
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	runner, err := app.NewRunner(cfg, appLogger, stdout)
	if err != nil {
		appLogger.Error("Failed to initialize", zap.Error(err))
		return exitError
	}

	if cfg.MetricsAddr != "" {
		metricsCtx, cancelMetrics := context.WithCancel(ctx)
		defer cancelMetrics()
		go func() {
			if err := runner.ServeMetrics(metricsCtx); err != nil {
				appLogger.Warn("Metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	opts := app.OutputOptions{Format: *outputFormat, ShowZero: *showZero, Closable: *closable}

	switch command[0] {
	case "mint":
		err = runner.SalesForMint(ctx, command[1], opts)
	case "wallet":
		err = runner.SalesForWallet(ctx, command[1], opts)
	case "lookup":
		err = runner.Lookup(ctx, command[1], command[2])
	case "authority":
		runner.Authority()
	case "tui":
		err = runTUI(ctx, runner, command[1], logs)
	}

	return exitCode(appLogger, err)
}

func validArgs(command []string) bool {
	want := map[string]int{"mint": 2, "wallet": 2, "lookup": 3, "authority": 1, "tui": 2}
	n, ok := want[command[0]]
	return ok && len(command) == n
}

func runTUI(ctx context.Context, runner *app.Runner, mint string, logs *logger.LogBuffer) error {
	key, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return fmt.Errorf("invalid mint %q: %w", mint, err)
	}

	program := tea.NewProgram(
		ui.NewBookModel(ctx, runner.Querier(), key, logs),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func exitCode(appLogger *logger.Logger, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, salebook.ErrCancelled), errors.Is(err, context.Canceled):
		appLogger.Warn("Interrupted")
		return exitCancelled
	default:
		appLogger.Error("Command failed", zap.Error(err))
		return exitError
	}
}
