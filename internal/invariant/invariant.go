// Package invariant is the test-only harness that checks the structural
// invariants P1-P5 (spec §8) across the slot list and size heap. It is
// never imported by the facade itself — only by _test.go files — so a
// build that strips test code never pays for it.
package invariant

import (
	"fmt"

	"github.com/quantapool/quanta/internal/sizeheap"
	"github.com/quantapool/quanta/internal/slotlist"
)

// Violation is one broken invariant, tagged with the property it
// violates so test failures point straight at the offending rule.
type Violation struct {
	Property string
	Detail   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Property, v.Detail)
}

// Check walks list and heap and returns every violation of P1-P5 found.
// A nil/empty result means the allocator's cross-structure invariants
// currently hold.
func Check(list *slotlist.List, heap *sizeheap.Heap, capacityChunks uint32) []Violation {
	var violations []Violation

	violations = append(violations, checkListTiling(list)...)
	violations = append(violations, checkNoAdjacentFree(list)...)
	violations = append(violations, checkChunkSum(list, capacityChunks)...)
	violations = append(violations, checkHeapBackPointers(list, heap)...)
	violations = append(violations, checkHeapOrder(heap)...)

	return violations
}

// checkListTiling is P1/P2: the list tiles the region exactly, with
// correct prev/next back-links at every slot.
func checkListTiling(list *slotlist.List) []Violation {
	var violations []Violation

	prevOffset := slotlist.NoOffset
	list.Walk(func(offset uint32) bool {
		h := list.HeaderAt(offset)

		if h.Prev != prevOffset {
			violations = append(violations, Violation{"P1", fmt.Sprintf(
				"slot at %d has prev=%d, want %d", offset, h.Prev, prevOffset)})
		}

		if prevOffset != slotlist.NoOffset {
			if prevNext := list.HeaderAt(prevOffset).Next; prevNext != offset {
				violations = append(violations, Violation{"P1", fmt.Sprintf(
					"slot at %d's next=%d, want %d", prevOffset, prevNext, offset)})
			}
		}

		next := list.NextHeaderOffset(offset)
		if next != list.End() && h.Next != next {
			violations = append(violations, Violation{"P1", fmt.Sprintf(
				"slot at %d has next=%d, want %d", offset, h.Next, next)})
		}

		if next == list.End() && h.Next != slotlist.NoOffset {
			violations = append(violations, Violation{"P1", fmt.Sprintf(
				"tail slot at %d has next=%d, want NoOffset", offset, h.Next)})
		}

		prevOffset = offset

		return true
	})

	return violations
}

// checkNoAdjacentFree is P4: no two adjacent slots are both free.
func checkNoAdjacentFree(list *slotlist.List) []Violation {
	var violations []Violation

	var prevFree bool

	var prevOffset uint32

	first := true

	list.Walk(func(offset uint32) bool {
		free := list.IsFree(offset)
		if !first && prevFree && free {
			violations = append(violations, Violation{"P4", fmt.Sprintf(
				"slots at %d and %d are both free", prevOffset, offset)})
		}

		prevFree = free
		prevOffset = offset
		first = false

		return true
	})

	return violations
}

// checkChunkSum is P5: chunk counts across the list sum to capacity.
func checkChunkSum(list *slotlist.List, capacityChunks uint32) []Violation {
	var sum uint32

	list.Walk(func(offset uint32) bool {
		sum += list.HeaderAt(offset).Chunks
		return true
	})

	if sum != capacityChunks {
		return []Violation{{"P5", fmt.Sprintf("chunk sum %d != capacity %d", sum, capacityChunks)}}
	}

	return nil
}

// checkHeapBackPointers is P2/I4: heap_index >= 0 iff the header appears
// in the live heap entries at exactly that index, and every free header
// is reachable through the heap.
func checkHeapBackPointers(list *slotlist.List, heap *sizeheap.Heap) []Violation {
	var violations []Violation

	live := make(map[uint32]int, heap.Size)
	for i := 0; i < heap.Size; i++ {
		live[heap.Entries[i]] = i
	}

	list.Walk(func(offset uint32) bool {
		h := list.HeaderAt(offset)
		idx, inHeap := live[offset]

		switch {
		case h.HeapIndex == slotlist.Occupied && inHeap:
			violations = append(violations, Violation{"P2", fmt.Sprintf(
				"occupied slot at %d still present in heap at %d", offset, idx)})
		case h.HeapIndex != slotlist.Occupied && !inHeap:
			violations = append(violations, Violation{"P2", fmt.Sprintf(
				"free slot at %d missing from heap", offset)})
		case h.HeapIndex != slotlist.Occupied && int32(idx) != h.HeapIndex:
			violations = append(violations, Violation{"P2", fmt.Sprintf(
				"slot at %d has heap_index=%d, actually at %d", offset, h.HeapIndex, idx)})
		}

		return true
	})

	for i := 0; i < heap.Size; i++ {
		offset := heap.Entries[i]
		if list.HeaderAt(offset).HeapIndex != int32(i) {
			violations = append(violations, Violation{"P2", fmt.Sprintf(
				"heap[%d]=%d but that header's heap_index=%d", i, offset, list.HeaderAt(offset).HeapIndex)})
		}
	}

	return violations
}

// checkHeapOrder is P3: the max-heap property holds over Chunks.
func checkHeapOrder(heap *sizeheap.Heap) []Violation {
	var violations []Violation

	for i := 1; i < heap.Size; i++ {
		parent := (i - 1) / 2
		if heap.Src.ChunksAt(heap.Entries[parent]) < heap.Src.ChunksAt(heap.Entries[i]) {
			violations = append(violations, Violation{"P3", fmt.Sprintf(
				"heap[%d].chunks < heap[%d].chunks", parent, i)})
		}
	}

	return violations
}
