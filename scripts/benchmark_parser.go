package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Policy      string // "FirstFit", "BestFit", "Compact"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonRow collects one operation's numbers across every policy.
type ComparisonRow struct {
	Operation string
	ByPolicy  map[string]BenchmarkResult
}

var policyOrder = []string{"FirstFit", "BestFit", "Compact"}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	var scanner *bufio.Scanner
	var inputF *os.File
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		inputF = f
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(os.Stdin)
	}

	results := parseBenchmarks(scanner)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	rows := groupByOperation(results)
	report := generateMarkdownReport(rows)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			if inputF != nil {
				inputF.Close()
			}
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}

	if inputF != nil {
		inputF.Close()
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// Regex to parse benchmark output lines
	// Benchmark_AllocFree_FixedSize/BestFit-8   10000   1245 ns/op   96 B/op   2 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+(?:B|MB)/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Try to parse as JSON (from -json flag)
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		name := matches[1]
		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)

		var bytesPerOp, allocsPerOp int64
		if matches[4] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		operation, policy := splitBenchmarkName(name)
		results = append(results, BenchmarkResult{
			Name:        name,
			Operation:   operation,
			Policy:      policy,
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}

	return results
}

// splitBenchmarkName extracts the operation and the policy sub-benchmark.
// Format: Benchmark_<Operation>/<Policy>-<procs>, policy segment optional.
func splitBenchmarkName(name string) (string, string) {
	parts := strings.Split(name, "/")

	operation := strings.TrimPrefix(parts[0], "Benchmark_")
	operation = strings.TrimPrefix(operation, "Benchmark")

	policy := ""
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if dashIdx := strings.LastIndex(last, "-"); dashIdx > 0 {
			policy = last[:dashIdx]
		} else {
			policy = last
		}
	} else if dashIdx := strings.LastIndex(operation, "-"); dashIdx > 0 {
		operation = operation[:dashIdx]
	}

	return operation, policy
}

func groupByOperation(results []BenchmarkResult) []ComparisonRow {
	grouped := make(map[string]map[string]BenchmarkResult)
	for _, result := range results {
		if grouped[result.Operation] == nil {
			grouped[result.Operation] = make(map[string]BenchmarkResult)
		}
		key := result.Policy
		if key == "" {
			key = "BestFit" // un-parameterized benchmarks run the default policy
		}
		grouped[result.Operation][key] = result
	}

	rows := make([]ComparisonRow, 0, len(grouped))
	for op, byPolicy := range grouped {
		rows = append(rows, ComparisonRow{Operation: op, ByPolicy: byPolicy})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Operation < rows[j].Operation
	})
	return rows
}

func generateMarkdownReport(rows []ComparisonRow) string {
	var sb strings.Builder

	sb.WriteString("# Allocator Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	sb.WriteString("## Results by Policy\n\n")
	sb.WriteString("| Operation | FirstFit (ns/op) | BestFit (ns/op) | Compact (ns/op) | Fastest |\n")
	sb.WriteString("|-----------|------------------|-----------------|-----------------|--------|\n")

	for _, row := range rows {
		cells := make([]string, len(policyOrder))
		fastest := ""
		best := 0.0
		for i, policy := range policyOrder {
			r, ok := row.ByPolicy[policy]
			if !ok {
				cells[i] = "*N/A*"
				continue
			}
			cells[i] = formatNumber(r.NsPerOp)
			if fastest == "" || r.NsPerOp < best {
				fastest, best = policy, r.NsPerOp
			}
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | **%s** |\n",
			row.Operation, cells[0], cells[1], cells[2], fastest))
	}
	sb.WriteString("\n")

	// Relative cost of best-fit search vs first-fit, where both ran.
	sb.WriteString("## BestFit Overhead vs FirstFit\n\n")
	for _, row := range rows {
		ff, okFF := row.ByPolicy["FirstFit"]
		bf, okBF := row.ByPolicy["BestFit"]
		if !okFF || !okBF || ff.NsPerOp == 0 {
			continue
		}
		ratio := bf.NsPerOp / ff.NsPerOp
		sb.WriteString(fmt.Sprintf("- **%s**: %.2fx\n", row.Operation, ratio))
	}
	sb.WriteString("\n")

	sb.WriteString("## Notes\n\n")
	sb.WriteString("- ns/op: lower is better\n")
	sb.WriteString("- FirstFit trades fragmentation for speed; Compact trades speed for packing\n")
	sb.WriteString("- Pair this report with `memctl bench` for utilization numbers\n")

	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}
