package account

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/dTX/cmd/util"
	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for dTX servers",
		Long:    "Creates a set of test accounts and runs balance reads and transfers against them from several goroutines.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfAccountPrefix  = "__perf"
	perfInitialBalance = int64(1_000_000)
	perfNumThreads     = 10
	perfNumAccounts    = 100
	perfDuration       = 5 * time.Second
	perfSkip           = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. balance,mixed)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines to use for the benchmark"))
	key = "accounts"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many accounts to spread the load over (at least 4)"))
	key = "duration"
	perfTestCmd.Flags().Duration(key, 5*time.Second, util.WrapString("How long each benchmark runs"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfNumThreads = max(1, viper.GetInt("threads"))
	perfNumAccounts = viper.GetInt("accounts")
	perfDuration = viper.GetDuration("duration")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfNumAccounts < 4 {
		return fmt.Errorf("at least 4 accounts are needed, got %d", perfNumAccounts)
	}
	return nil
}

// perfResult is the outcome of one benchmark
type perfResult struct {
	name    string
	skipped bool
	ops     gometrics.Timer
	errors  gometrics.Meter
	elapsed time.Duration
}

func runPerf(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintln(out, "Performance testing tool for dTX servers")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, util.GetClientConfig().String())
	fmt.Fprintf(out, "Threads: %d, Accounts: %d, Duration: %s\n", perfNumThreads, perfNumAccounts, perfDuration)
	fmt.Fprintln(out)

	// fresh accounts for every run, the server has no delete operation
	names, err := createPerfAccounts(ctx, rpcAccounts, perfNumAccounts)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "starting tests...")

	registry := gometrics.NewRegistry()
	results := []perfResult{
		runBenchmark(ctx, registry, "balance", func(ctx context.Context, rnd *rand.Rand) error {
			_, err := rpcAccounts.GetBalance(ctx, names[rnd.Intn(len(names))])
			return err
		}),
		runBenchmark(ctx, registry, "transfer", func(ctx context.Context, rnd *rand.Rand) error {
			return randomTransfer(ctx, rpcAccounts, names, rnd)
		}),
		runBenchmark(ctx, registry, "mixed", func(ctx context.Context, rnd *rand.Rand) error {
			if rnd.Intn(2) == 0 {
				_, err := rpcAccounts.GetBalance(ctx, names[rnd.Intn(len(names))])
				return err
			}
			return randomTransfer(ctx, rpcAccounts, names, rnd)
		}),
	}

	for _, r := range results {
		printResult(out, r)
	}

	// the transfers only move money around
	var total int64
	for _, name := range names {
		b, err := rpcAccounts.GetBalance(ctx, name)
		if err != nil {
			return err
		}
		total += b
	}
	if want := perfInitialBalance * int64(len(names)); total != want {
		return fmt.Errorf("money was not conserved: total %d, expected %d", total, want)
	}
	fmt.Fprintf(out, "\ntotal balance of the test accounts unchanged (%d)\n", total)

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Fprintf(out, "\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Fprintln(out, "Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// createPerfAccounts creates n accounts with a random run prefix
func createPerfAccounts(ctx context.Context, svc account.IAccountService, n int) ([]string, error) {
	run := uuid.NewString()[:8]
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s-%s-%d", perfAccountPrefix, run, i)
		if err := svc.CreateAccount(ctx, names[i], perfInitialBalance); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// randomTransfer moves a small amount between four distinct random accounts
func randomTransfer(ctx context.Context, svc account.IAccountService, names []string, rnd *rand.Rand) error {
	p := rnd.Perm(len(names))[:4]
	return svc.TransferFundsWithBroker(ctx, names[p[0]], names[p[1]], names[p[2]], names[p[3]], 1+rnd.Int63n(10), rnd.Int63n(2))
}

// runBenchmark calls op from perfNumThreads goroutines for perfDuration and records
// the latency of every call. Insufficient funds are counted as regular outcomes.
func runBenchmark(ctx context.Context, registry gometrics.Registry, name string, op func(context.Context, *rand.Rand) error) perfResult {
	if shouldSkip(name) {
		return perfResult{name: name, skipped: true}
	}

	timer := gometrics.GetOrRegisterTimer(name+".latency", registry)
	errs := gometrics.GetOrRegisterMeter(name+".errors", registry)

	// running calls are not cancelled at the deadline, so no transfer is in flight afterwards
	start := time.Now()
	deadline := start.Add(perfDuration)
	var wg sync.WaitGroup
	for i := 0; i < perfNumThreads; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil && time.Now().Before(deadline) {
				opStart := time.Now()
				err := op(ctx, rnd)
				timer.UpdateSince(opStart)
				if err != nil && store.CodeOf(err) != store.RetCInsufficientFunds {
					errs.Mark(1)
				}
			}
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()

	return perfResult{
		name:    name,
		ops:     timer.Snapshot(),
		errors:  errs.Snapshot(),
		elapsed: time.Since(start),
	}
}

// printResult prints the result of a benchmark in a formatted way
func printResult(out io.Writer, r perfResult) {
	if r.skipped || r.ops.Count() == 0 {
		fmt.Fprintf(out, "%-12sskipped\n", r.name)
		return
	}

	ps := r.ops.Percentiles([]float64{0.5, 0.99})
	fmt.Fprintf(out, "%-12s%8d ops\t%.0f ops/sec\tmean %s\tp50 %s\tp99 %s\terrors %d\n",
		r.name,
		r.ops.Count(),
		float64(r.ops.Count())/r.elapsed.Seconds(),
		time.Duration(r.ops.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		r.errors.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	config := util.GetClientConfig()

	header := []string{
		"Test", "Ops", "OpsPerSec", "MeanNs", "P50Ns", "P99Ns", "Errors", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "Serializer", "Transport",
		"Threads", "Accounts", "Duration",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, r := range results {
		row := []string{r.name, "0", "0", "0", "0", "0", "0", "true"}
		if !r.skipped && r.ops.Count() > 0 {
			ps := r.ops.Percentiles([]float64{0.5, 0.99})
			row = []string{
				r.name,
				strconv.FormatInt(r.ops.Count(), 10),
				fmt.Sprintf("%.0f", float64(r.ops.Count())/r.elapsed.Seconds()),
				fmt.Sprintf("%.0f", r.ops.Mean()),
				fmt.Sprintf("%.0f", ps[0]),
				fmt.Sprintf("%.0f", ps[1]),
				strconv.FormatInt(r.errors.Count(), 10),
				"false",
			}
		}
		row = append(row,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfNumAccounts),
			perfDuration.String(),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
