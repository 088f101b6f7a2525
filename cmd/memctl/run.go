package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/trace"
)

var runPolicy string

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runPolicy, "policy", "bestfit", "Placement policy (firstfit, bestfit, compact)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>...",
		Short: "Replay allocation traces and report utilization",
		Long: `The run command replays one or more allocation trace files against a
fresh allocator and reports peak memory utilization and operation counts.

A trace is a line-oriented script of a/r/f operations:
  a <id> <size>   allocate
  r <id> <size>   resize
  f <id>          free

Example:
  memctl run coalescing.rep
  memctl run --policy firstfit traces/*.rep
  memctl run --json binary.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

// TraceReport is the per-trace result of a replay.
type TraceReport struct {
	Trace       string  `json:"trace"`
	Policy      string  `json:"policy"`
	Ops         int     `json:"ops"`
	Allocs      int     `json:"allocs"`
	Reallocs    int     `json:"reallocs"`
	Frees       int     `json:"frees"`
	PeakLive    int64   `json:"peak_live_bytes"`
	HeapSize    int     `json:"heap_bytes"`
	Utilization float64 `json:"utilization"`
}

func runRun(args []string) error {
	cfg, err := policyByName(runPolicy)
	if err != nil {
		return err
	}

	reports := make([]TraceReport, 0, len(args))
	for _, path := range args {
		printVerbose("Parsing trace: %s\n", path)
		tr, err := trace.ParseFile(path)
		if err != nil {
			return err
		}

		res, err := trace.Run(tr, cfg, nil)
		if err != nil {
			return fmt.Errorf("replay %s: %w", path, err)
		}

		reports = append(reports, TraceReport{
			Trace:       tr.Name,
			Policy:      cfg.Name,
			Ops:         res.Ops,
			Allocs:      res.Allocs,
			Reallocs:    res.Reallocs,
			Frees:       res.Frees,
			PeakLive:    res.PeakLive,
			HeapSize:    res.HeapSize,
			Utilization: res.Utilization,
		})
	}

	if jsonOut {
		return printJSON(reports)
	}

	for _, r := range reports {
		printInfo("\nTrace: %s (policy %s)\n", r.Trace, r.Policy)
		printInfo("  Ops: %d (%d alloc, %d realloc, %d free)\n",
			r.Ops, r.Allocs, r.Reallocs, r.Frees)
		printInfo("  Peak live: %d bytes\n", r.PeakLive)
		printInfo("  Heap size: %d bytes\n", r.HeapSize)
		printInfo("  Utilization: %.1f%%\n", r.Utilization*100)
	}
	return nil
}
