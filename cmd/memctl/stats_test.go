package main

import "testing"

func TestStatsCommand(t *testing.T) {
	resetFlags(t)
	path := writeTrace(t, "churn.rep", churnTrace)

	output, err := captureOutput(t, func() error {
		return runStatsCmd([]string{path})
	})
	if err != nil {
		t.Fatalf("runStatsCmd failed: %v", err)
	}
	assertContains(t, output, []string{
		"Allocator Statistics: churn.rep",
		"Free:    3",
		"Coalesces:",
		"Fit probes:",
	})
}

func TestStatsCommandJSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	defer func() { jsonOut = false }()
	path := writeTrace(t, "churn.rep", churnTrace)

	output, err := captureOutput(t, func() error {
		return runStatsCmd([]string{path})
	})
	if err != nil {
		t.Fatalf("runStatsCmd failed: %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{`"policy": "BestFit"`})
}
