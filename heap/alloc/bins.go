package alloc

import "github.com/joshuapare/memkit/internal/format"

// Segregated free-list index. Each size class owns one doubly linked list of
// free blocks, threaded through the blocks' own payload bytes. head and tail
// are payload offsets; 0 means empty.
type freeList struct {
	head  int32
	tail  int32
	count int
}

// binFor returns the size-class index covering an aligned block size.
func (a *Allocator) binFor(size int32) int {
	for i, bound := range a.bounds {
		if size <= bound {
			return i
		}
	}
	return len(a.bounds) - 1
}

// insertFreeBlock registers bp in the bin covering its current size.
// The block's header must already carry its final size and free state.
func (a *Allocator) insertFreeBlock(bp int32) {
	data := a.h.Bytes()
	list := &a.lists[a.binFor(blockSize(data, bp))]

	if a.cfg.Insert == InsertAddressOrdered {
		a.insertOrdered(data, list, bp)
	} else {
		a.insertLIFO(data, list, bp)
	}
	list.count++
}

// insertLIFO pushes bp at the list head. O(1).
func (a *Allocator) insertLIFO(data []byte, list *freeList, bp int32) {
	setLinkPred(data, bp, format.NilRef)
	setLinkSucc(data, bp, list.head)
	if list.head != format.NilRef {
		setLinkPred(data, list.head, bp)
	} else {
		list.tail = bp
	}
	list.head = bp
}

// insertOrdered splices bp into address-sorted position, starting the scan
// from whichever end of the list is closer to bp's offset.
func (a *Allocator) insertOrdered(data []byte, list *freeList, bp int32) {
	switch {
	case list.head == format.NilRef:
		setLinkPred(data, bp, format.NilRef)
		setLinkSucc(data, bp, format.NilRef)
		list.head = bp
		list.tail = bp
		return
	case bp < list.head:
		setLinkPred(data, bp, format.NilRef)
		setLinkSucc(data, bp, list.head)
		setLinkPred(data, list.head, bp)
		list.head = bp
		return
	case bp > list.tail:
		setLinkPred(data, bp, list.tail)
		setLinkSucc(data, bp, format.NilRef)
		setLinkSucc(data, list.tail, bp)
		list.tail = bp
		return
	}

	// Interior splice: find the greatest element below bp, scanning from
	// the nearer end.
	var after int32
	if bp-list.head <= list.tail-bp {
		after = list.head
		for next := linkSucc(data, after); next != format.NilRef && next < bp; next = linkSucc(data, after) {
			after = next
		}
	} else {
		after = list.tail
		for after > bp {
			after = linkPred(data, after)
		}
	}

	next := linkSucc(data, after)
	setLinkSucc(data, after, bp)
	setLinkPred(data, bp, after)
	setLinkSucc(data, bp, next)
	setLinkPred(data, next, bp)
}

// removeFreeBlock unlinks bp from its bin. O(1) via the doubly linked
// fields. Must run before the block's header size changes, since the bin is
// found through the current size.
func (a *Allocator) removeFreeBlock(bp int32) {
	data := a.h.Bytes()
	list := &a.lists[a.binFor(blockSize(data, bp))]

	pred := linkPred(data, bp)
	succ := linkSucc(data, bp)

	if pred != format.NilRef {
		setLinkSucc(data, pred, succ)
	} else {
		list.head = succ
	}
	if succ != format.NilRef {
		setLinkPred(data, succ, pred)
	} else {
		list.tail = pred
	}
	list.count--
}

// findFit locates a free block of at least asize bytes, scanning bins from
// the smallest class that can contain asize upward. Returns NilRef on miss.
func (a *Allocator) findFit(asize int32) int32 {
	data := a.h.Bytes()
	for bin := a.binFor(asize); bin < len(a.lists); bin++ {
		if bp := a.searchBin(data, bin, asize); bp != format.NilRef {
			return bp
		}
	}
	return format.NilRef
}

// searchBin scans one bin under the configured fit policy. Under BestFit a
// candidate whose remainder falls below FitSlack ends the scan immediately;
// with FitSlack 0 the whole bin is scanned for the true minimum.
func (a *Allocator) searchBin(data []byte, bin int, asize int32) int32 {
	best := int32(format.NilRef)
	var bestSize int32

	for bp := a.lists[bin].head; bp != format.NilRef; bp = linkSucc(data, bp) {
		a.stats.FitProbes++
		sz := blockSize(data, bp)
		if sz < asize {
			continue
		}
		if a.cfg.Fit == FirstFit {
			return bp
		}
		if sz-asize < a.cfg.FitSlack {
			return bp
		}
		if best == format.NilRef || sz < bestSize {
			best = bp
			bestSize = sz
		}
	}
	return best
}
