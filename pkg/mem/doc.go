/*
Package mem provides a high-level, ergonomic API for arena-style dynamic
memory management.

# Quick Start

Create an arena, allocate, and free:

	ar, err := mem.New(nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer ar.Close()

	ref, buf, _ := ar.Alloc(1024)
	copy(buf, payload)
	ar.Free(ref)

# Features

  - Simple Alloc/Free/Realloc/Calloc API with int sizes
  - Segregated free lists with immediate coalescing
  - Pluggable placement policy (first fit, best fit, compact)
  - Slice-backed or mmap-backed arenas
  - Built-in heap validation for tests and debugging
  - Allocation statistics for benchmarking

# Choosing a Policy

The default policy balances throughput and fragmentation. Pick a preset
when the workload is known:

	// Fastest, most fragmentation.
	ar, _ := mem.New(&mem.FirstFit)

	// Tightest packing, slowest.
	ar, _ := mem.New(&mem.Compact)

# Mapped Arenas

A slice-backed arena may relocate when it grows, invalidating previously
returned payload slices (re-derive them with Payload). A mapped arena
reserves its capacity up front and never moves:

	ar, err := mem.NewMapped(64<<20, nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer ar.Close()

# Validation

Check inspects the whole arena and returns every violation found, not
just the first:

	if errs := ar.Check(); len(errs) != 0 {
	    for _, e := range errs {
	        log.Println(e)
	    }
	}

# Error Handling

All failures are sentinel errors from the alloc package, re-exported
here. ErrNoSpace is the only out-of-memory signal:

	_, _, err := ar.Alloc(huge)
	if errors.Is(err, mem.ErrNoSpace) {
	    // shed load
	}

For fine-grained control, use the low-level packages directly:

	import (
	    "github.com/joshuapare/memkit/heap"
	    "github.com/joshuapare/memkit/heap/alloc"
	)

	h := heap.New(heap.NewSliceGrower(0))
	a, _ := alloc.New(h, &alloc.ConfigBestFit)
*/
package mem
