package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/trace"
)

var statsPolicy string

func init() {
	cmd := newStatsCmd()
	cmd.Flags().StringVar(&statsPolicy, "policy", "bestfit", "Placement policy (firstfit, bestfit, compact)")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <trace>",
		Short: "Show detailed allocator statistics for one trace",
		Long: `The stats command replays a single trace and dumps the allocator's
internal counters: fast/slow path splits, heap growth, block splitting,
coalescing by direction, realloc resolution, and fit-search probe counts.

Example:
  memctl stats binary.rep
  memctl stats binary.rep --policy compact
  memctl stats binary.rep --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatsCmd(args)
		},
	}
	return cmd
}

func runStatsCmd(args []string) error {
	cfg, err := policyByName(statsPolicy)
	if err != nil {
		return err
	}

	tr, err := trace.ParseFile(args[0])
	if err != nil {
		return err
	}
	res, err := trace.Run(tr, cfg, nil)
	if err != nil {
		return fmt.Errorf("replay %s: %w", args[0], err)
	}
	st := res.Stats

	if jsonOut {
		return printJSON(map[string]interface{}{
			"trace":       tr.Name,
			"policy":      cfg.Name,
			"utilization": res.Utilization,
			"stats":       st,
		})
	}

	printInfo("\nAllocator Statistics: %s (policy %s)\n\n", tr.Name, cfg.Name)

	printInfo("Requests:\n")
	printInfo("  Alloc:   %d (%d fast path, %d grew the heap)\n",
		st.AllocCalls, st.AllocFastPath, st.AllocSlowPath)
	printInfo("  Free:    %d\n", st.FreeCalls)
	printInfo("  Realloc: %d (%d in place, %d moved)\n",
		st.ReallocCalls, st.ReallocInPlace, st.ReallocMoved)
	printInfo("  Calloc:  %d\n\n", st.CallocCalls)

	printInfo("Heap:\n")
	printInfo("  Growths: %d (%d bytes total)\n", st.GrowCalls, st.GrowBytes)
	printInfo("  Final size: %d bytes\n", res.HeapSize)
	printInfo("  Peak live: %d bytes (%.1f%% utilization)\n\n",
		res.PeakLive, res.Utilization*100)

	printInfo("Placement:\n")
	printInfo("  Splits: %d\n", st.SplitCount)
	printInfo("  Coalesces: %d forward, %d backward, %d both\n",
		st.CoalesceForward, st.CoalesceBackward, st.CoalesceBoth)
	printInfo("  Fit probes: %d", st.FitProbes)
	if st.AllocCalls > 0 {
		printInfo(" (%.1f per alloc)", float64(st.FitProbes)/float64(st.AllocCalls))
	}
	printInfo("\n")

	return nil
}
