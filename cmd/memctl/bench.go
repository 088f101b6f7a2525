package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/internal/trace"
)

var benchIterations int

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchIterations, "iterations", 3, "Replays per policy; best time wins")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench <trace>",
		Short: "Compare placement policies on one trace",
		Long: `The bench command replays a trace under every placement policy and
reports throughput and utilization side by side, making the
speed/fragmentation trade-off concrete for a given workload.

Example:
  memctl bench binary.rep
  memctl bench --iterations 10 binary.rep
  memctl bench --json binary.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(args)
		},
	}
	return cmd
}

// BenchRow is one policy's result on the benched trace.
type BenchRow struct {
	Policy      string  `json:"policy"`
	KopsPerSec  float64 `json:"kops_per_sec"`
	Utilization float64 `json:"utilization"`
	HeapSize    int     `json:"heap_bytes"`
}

func runBench(args []string) error {
	tr, err := trace.ParseFile(args[0])
	if err != nil {
		return err
	}
	if benchIterations < 1 {
		benchIterations = 1
	}

	rows := make([]BenchRow, 0, 3)
	for _, cfg := range []*alloc.Config{
		&alloc.ConfigFirstFit,
		&alloc.ConfigBestFit,
		&alloc.ConfigCompact,
	} {
		best := time.Duration(0)
		var res *trace.Result
		for i := 0; i < benchIterations; i++ {
			start := time.Now()
			r, err := trace.Run(tr, cfg, nil)
			elapsed := time.Since(start)
			if err != nil {
				return fmt.Errorf("replay %s under %s: %w", tr.Name, cfg.Name, err)
			}
			if best == 0 || elapsed < best {
				best = elapsed
				res = r
			}
		}

		kops := float64(res.Ops) / best.Seconds() / 1000
		rows = append(rows, BenchRow{
			Policy:      cfg.Name,
			KopsPerSec:  kops,
			Utilization: res.Utilization,
			HeapSize:    res.HeapSize,
		})
		printVerbose("%s: best of %d runs = %s\n", cfg.Name, benchIterations, best)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"trace":    tr.Name,
			"ops":      len(tr.Ops),
			"policies": rows,
		})
	}

	printInfo("\nBenchmark: %s (%d ops, best of %d)\n\n", tr.Name, len(tr.Ops), benchIterations)
	printInfo("%-10s %12s %12s %12s\n", "POLICY", "KOPS/S", "UTIL", "HEAP")
	for _, r := range rows {
		printInfo("%-10s %12.1f %11.1f%% %12d\n",
			r.Policy, r.KopsPerSec, r.Utilization*100, r.HeapSize)
	}
	return nil
}
