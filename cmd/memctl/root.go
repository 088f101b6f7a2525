package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/heap/alloc"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "memctl",
	Short: "Replay and analyze allocation trace workloads",
	Long: `memctl is a tool for replaying malloc-style allocation traces against
the memkit allocator. It reports utilization and throughput, validates heap
consistency at every step, and compares placement policies side by side.`,
	Version: "0.1.0",
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// policyByName maps a --policy flag value to its preset.
func policyByName(name string) (*alloc.Config, error) {
	switch name {
	case "firstfit":
		return &alloc.ConfigFirstFit, nil
	case "bestfit":
		return &alloc.ConfigBestFit, nil
	case "compact":
		return &alloc.ConfigCompact, nil
	default:
		return nil, fmt.Errorf("unknown policy: %s (must be firstfit, bestfit, or compact)", name)
	}
}
