package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/verify"
	"github.com/joshuapare/memkit/internal/trace"
)

var checkPolicy string

func init() {
	cmd := newCheckCmd()
	cmd.Flags().StringVar(&checkPolicy, "policy", "bestfit", "Placement policy (firstfit, bestfit, compact)")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>...",
		Short: "Replay traces with full heap validation at every step",
		Long: `The check command replays allocation traces and runs the heap validator
after every operation: sentinel integrity, header/footer mirroring,
prev-alloc bit consistency, free-list membership, and coalescing
completeness. Every violation is reported, not just the first.

This is much slower than run; use it to pin down where a workload first
corrupts the heap.

Example:
  memctl check coalescing.rep
  memctl check --policy compact traces/*.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	cfg, err := policyByName(checkPolicy)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		tr, err := trace.ParseFile(path)
		if err != nil {
			return err
		}

		violations := 0
		hook := func(a *alloc.Allocator, step int, op trace.Op) error {
			errs := verify.Check(a)
			if len(errs) == 0 {
				return nil
			}
			violations += len(errs)
			tag := fmt.Sprintf("%s step %d (%c %d)", tr.Name, step, op.Kind, op.ID)
			verify.Report(os.Stderr, tag, errs)
			return nil
		}

		printVerbose("Checking trace: %s (%d ops)\n", tr.Name, len(tr.Ops))
		if _, err := trace.Run(tr, cfg, hook); err != nil {
			return fmt.Errorf("replay %s: %w", path, err)
		}

		if violations > 0 {
			failed++
			printInfo("✗ %s: %d violation(s)\n", tr.Name, violations)
		} else {
			printInfo("✓ %s: heap consistent after all %d ops\n", tr.Name, len(tr.Ops))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d trace(s) produced heap violations", failed, len(args))
	}
	return nil
}
