package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stockpulse/ranker/internal/clients/yahoo"
	"github.com/stockpulse/ranker/internal/config"
	"github.com/stockpulse/ranker/internal/database"
	"github.com/stockpulse/ranker/internal/modules/backtest"
	"github.com/stockpulse/ranker/internal/modules/snapshots"
	"github.com/stockpulse/ranker/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		snapshotID      = flag.String("snapshot-id", "", "validate a specific snapshot")
		autoValidateAll = flag.Bool("auto-validate-all", false, "validate every eligible snapshot non-interactively")
		report          = flag.Bool("report", false, "print the aggregated performance report")
		horizonMonths   = flag.Int("horizon-months", 0, "validation horizon in months (default from config)")
		verbose         = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true})

	horizon := cfg.HorizonMonths
	if *horizonMonths > 0 {
		horizon = *horizonMonths
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		return 1
	}

	snapshotRepo := snapshots.NewRepository(db.Conn(), log)
	resultRepo := backtest.NewRepository(db.Conn(), log)
	pool := backtest.NewFetchPool(yahoo.NewClient(log), cfg.FetchConcurrency, cfg.FetchTimeout, log)
	validator := backtest.NewValidator(snapshotRepo, resultRepo, pool, cfg.BenchmarkSymbol, log)

	cli := &cli{
		snapshots: snapshotRepo,
		results:   resultRepo,
		validator: validator,
		horizon:   horizon,
		topN:      cfg.TopN,
	}

	switch {
	case *report:
		return cli.printReport()
	case *snapshotID != "":
		return cli.validateOne(*snapshotID)
	case *autoValidateAll:
		return cli.validateAll()
	default:
		return cli.interactive()
	}
}

type cli struct {
	snapshots *snapshots.Repository
	results   *backtest.Repository
	validator *backtest.Validator
	horizon   int
	topN      int
}

func (c *cli) validateOne(snapshotID string) int {
	result, err := c.validator.Validate(context.Background(), snapshotID, c.horizon, c.topN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return 1
	}
	printResult(result)
	return 0
}

func (c *cli) validateAll() int {
	results, err := c.validator.ValidateAllEligible(context.Background(), c.horizon, c.topN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return 1
	}
	if len(results) == 0 {
		fmt.Printf("No snapshots eligible for validation at %d-month horizon.\n", c.horizon)
		return 0
	}
	for _, result := range results {
		printResult(result)
		fmt.Println()
	}
	fmt.Printf("Validated %d snapshot(s).\n", len(results))
	return 0
}

func (c *cli) interactive() int {
	eligible, err := c.snapshots.ListEligibleForValidation(time.Now(), c.horizon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list snapshots: %v\n", err)
		return 1
	}
	if len(eligible) == 0 {
		fmt.Printf("No snapshots eligible for validation at %d-month horizon.\n", c.horizon)
		return 0
	}

	fmt.Printf("Snapshots eligible at %d-month horizon:\n\n", c.horizon)
	for i, meta := range eligible {
		fmt.Printf("  [%d] %s  philosophy=%s  companies=%d  created=%s\n",
			i+1, meta.SnapshotID, meta.Philosophy, meta.CompanyCount,
			meta.CreatedAt.Format("2006-01-02"))
	}
	fmt.Printf("\nSelect a snapshot to validate [1-%d], or q to quit: ", len(eligible))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input: %v\n", err)
		return 1
	}
	input = strings.TrimSpace(input)
	if input == "q" || input == "" {
		return 0
	}

	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > len(eligible) {
		fmt.Fprintf(os.Stderr, "invalid selection %q\n", input)
		return 1
	}

	return c.validateOne(eligible[choice-1].SnapshotID)
}

func (c *cli) printReport() int {
	results, err := c.results.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load results: %v\n", err)
		return 1
	}

	report := backtest.BuildReport(results)
	if report.TotalValidations == 0 {
		fmt.Println("No validation results recorded yet.")
		return 0
	}

	fmt.Printf("Validation runs:  %d (%d with full coverage)\n", report.TotalValidations, report.FullyCovered)
	fmt.Printf("Average alpha:    %+.2f%%\n", report.AvgAlpha)
	fmt.Printf("Average hit rate: %.0f%%\n", report.AvgHitRate*100)
	fmt.Printf("Best snapshot:    %s\n", report.BestSnapshot)
	fmt.Printf("Worst snapshot:   %s\n\n", report.WorstSnapshot)

	fmt.Println("By philosophy:")
	for _, perf := range report.ByPhilosophy {
		line := fmt.Sprintf("  %-10s runs=%d  alpha=%+.2f%%  hit=%.0f%%  win=%.0f%%",
			perf.Philosophy, perf.Validations, perf.AvgAlpha, perf.AvgHitRate*100, perf.AvgWinRate*100)
		if perf.AvgSharpe != nil {
			line += fmt.Sprintf("  sharpe=%.2f", *perf.AvgSharpe)
		}
		fmt.Println(line)
	}
	return 0
}

func printResult(result *backtest.Result) {
	fmt.Printf("Snapshot %s (%s, %d-month horizon)\n",
		result.SnapshotID, result.Philosophy, result.HorizonMonths)
	fmt.Printf("  Status:       %s\n", result.Status)
	fmt.Printf("  Coverage:     %d/%d tickers fetched\n", result.FetchedCount, result.TotalCount)
	fmt.Printf("  Benchmark:    %+.2f%% (%s)\n", result.BenchmarkReturn, result.BenchmarkSource)
	fmt.Printf("  Win rate:     %.0f%%\n", result.WinRate*100)
	fmt.Printf("  Hit rate:     %.0f%%\n", result.HitRate*100)
	fmt.Printf("  Alpha:        %+.2f%%\n", result.Alpha)
	if result.Sharpe != nil {
		fmt.Printf("  Sharpe:       %.2f\n", *result.Sharpe)
	} else {
		fmt.Printf("  Sharpe:       n/a\n")
	}
	fmt.Printf("  Max drawdown: %+.2f%% (worst single return)\n", result.MaxDrawdownApprox)

	for _, company := range result.PerCompany {
		if company.Missing {
			fmt.Printf("    #%-2d %-12s missing\n", company.Rank, company.Ticker)
			continue
		}
		fmt.Printf("    #%-2d %-12s %+.2f%%\n", company.Rank, company.Ticker, *company.Return)
	}
}
