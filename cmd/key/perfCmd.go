package key

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zxliu/RedisDesktopManager/cmd/util"
	"github.com/zxliu/RedisDesktopManager/lib/keymodel"
	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for key-value servers",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of pooled connections used in parallel"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Print the collected metrics in Prometheus format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread < 1 {
		return fmt.Errorf("keys must be at least 1")
	}
	return nil
}

// benchmark is a single named test run in parallel on pooled connections
type benchmark struct {
	name    string
	prepare func(ctx context.Context) error
	op      func(ctx context.Context, c *client.Connection, i int) error
	cleanup func(ctx context.Context)
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	config := util.GetConnectionConfig()
	db := util.GetDB()

	fmt.Println("Performance testing tool for key-value servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	// pooled connections share the connector, so the mem transport serves one store
	pool := client.NewPool(ctx, config, connector, perfNumThreads)
	defer pool.Close(ctx)

	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)
	exec := func(ctx context.Context, c *client.Connection, args ...string) error {
		_, err := client.Execute(ctx, c, db, args)
		return err
	}

	benchmarks := []benchmark{
		{
			name: "set",
			op: func(ctx context.Context, c *client.Connection, i int) error {
				return exec(ctx, c, "SET", getKey("set", i), "test")
			},
			cleanup: func(ctx context.Context) { deleteKeys(ctx, "set", db) },
		},
		{
			name: "set-large",
			op: func(ctx context.Context, c *client.Connection, i int) error {
				return exec(ctx, c, "SET", getKey("set-large", i), largeValue)
			},
			cleanup: func(ctx context.Context) { deleteKeys(ctx, "set-large", db) },
		},
		{
			name: "get",
			prepare: func(ctx context.Context) error {
				return forKeys("get", func(key string) error {
					return exec(ctx, conn, "SET", key, "test")
				})
			},
			op: func(ctx context.Context, c *client.Connection, i int) error {
				return exec(ctx, c, "GET", getKey("get", i))
			},
			cleanup: func(ctx context.Context) { deleteKeys(ctx, "get", db) },
		},
		{
			name: "lpush",
			op: func(ctx context.Context, c *client.Connection, i int) error {
				return exec(ctx, c, "LPUSH", getKey("lpush", i), "test")
			},
			cleanup: func(ctx context.Context) { deleteKeys(ctx, "lpush", db) },
		},
		{
			name: "lrange",
			prepare: func(ctx context.Context) error {
				return forKeys("lrange", func(key string) error {
					return exec(ctx, conn, "RPUSH", key, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
				})
			},
			op: func(ctx context.Context, c *client.Connection, i int) error {
				return exec(ctx, c, "LRANGE", getKey("lrange", i), "0", "-1")
			},
			cleanup: func(ctx context.Context) { deleteKeys(ctx, "lrange", db) },
		},
		{
			// optimistic row update through a list model, conflicts are expected
			name: "list-update-row",
			prepare: func(ctx context.Context) error {
				return forKeys("list-update-row", func(key string) error {
					return exec(ctx, conn, "RPUSH", key, "a", "b", "c")
				})
			},
			op: func(ctx context.Context, c *client.Connection, i int) error {
				model := keymodel.NewListModel(c, getKey("list-update-row", i), db, keymodel.NoExpiry)
				defer model.Close()
				if err := loadRows(ctx, model, 3); err != nil {
					return err
				}
				err := model.UpdateRow(ctx, i%3, keymodel.ValueRow(strconv.Itoa(i)))
				if common.CodeOf(err) == common.RetCConcurrentModification {
					return nil
				}
				return err
			},
			cleanup: func(ctx context.Context) { deleteKeys(ctx, "list-update-row", db) },
		},
	}

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			printResult(bm.name, testing.BenchmarkResult{})
			continue
		}

		if bm.prepare != nil {
			if err := bm.prepare(ctx); err != nil {
				return fmt.Errorf("(%s) - failed to prepare: %w", bm.name, err)
			}
		}

		result := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				counter := 0
				for pb.Next() {
					counter++
					err := pool.Do(ctx, func(c *client.Connection) error {
						return bm.op(ctx, c, counter)
					})
					if err != nil {
						log.Printf("(%s) - error: %v\n", bm.name, err)
					}
				}
			})
		})

		if bm.cleanup != nil {
			bm.cleanup(ctx)
		}

		results[bm.name] = result
		printResult(bm.name, result)
	}

	stats := conn.Stats()
	fmt.Println()
	fmt.Printf("Control connection: %d completed, %d failed, mean latency %s\n", stats.Completed, stats.Failed, stats.MeanLatency)
	fmt.Printf("Pool: %d active, %d idle\n", pool.Active(), pool.Idle())

	if viper.GetBool("metrics") {
		fmt.Println()
		metrics.WritePrometheus(os.Stdout, false)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// getKey returns the test key of a benchmark by index (with wraparound)
func getKey(prefix string, i int) string {
	return fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i%perfKeySpread)
}

// forKeys calls fn for every test key of a benchmark
func forKeys(prefix string, fn func(key string) error) error {
	for i := 0; i < perfKeySpread; i++ {
		if err := fn(getKey(prefix, i)); err != nil {
			return err
		}
	}
	return nil
}

func deleteKeys(ctx context.Context, prefix string, db int) {
	err := forKeys(prefix, func(key string) error {
		_, err := client.Execute(ctx, conn, db, []string{"DEL", key})
		return err
	})
	if err != nil {
		log.Printf("(%s) - error deleting keys: %v\n", prefix, err)
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config common.ConnectionConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoint", "Transport", "ExecutionTimeoutMs", "RetryCount",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Endpoint,
			viper.GetString("transport"),
			strconv.Itoa(config.ExecutionTimeoutMs),
			strconv.Itoa(config.Retries()),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
