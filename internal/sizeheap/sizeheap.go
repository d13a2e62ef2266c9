// Package sizeheap implements the binary max-heap over free-slot sizes.
// It is deliberately decoupled from package slotlist: it knows nothing
// about headers, only about a Chunker that can report and update the
// size key for whatever opaque offset it is handed. The allocator facade
// wires the two together.
package sizeheap

// Chunker is the minimal view the heap needs of the slot list: the key
// (chunk count) for a slot, and the ability to write back the slot's
// heap position after a move.
type Chunker interface {
	ChunksAt(offset uint32) uint32
	SetHeapIndexAt(offset uint32, idx int32)
}

// Occupied is the heap index Remove writes back through
// Chunker.SetHeapIndexAt for an evicted slot.
const Occupied int32 = -1

// Heap is a densely packed max-heap of free-slot offsets, keyed by
// Chunker.ChunksAt. Entries has a fixed capacity (an upper bound on the
// number of free slots a region can ever hold); Size is the number of
// live entries.
type Heap struct {
	Entries []uint32
	Size    int
	Src     Chunker
}

// New creates a heap backed by entries (len(entries) is the capacity)
// and src for key lookups.
func New(entries []uint32, src Chunker) *Heap {
	return &Heap{Entries: entries, Src: src}
}

func (h *Heap) chunksAt(i int) uint32 {
	return h.Src.ChunksAt(h.Entries[i])
}

func (h *Heap) swap(i, j int) {
	h.Entries[i], h.Entries[j] = h.Entries[j], h.Entries[i]
	h.Src.SetHeapIndexAt(h.Entries[i], int32(i))
	h.Src.SetHeapIndexAt(h.Entries[j], int32(j))
}

// Insert appends offset as a new free slot and restores the heap
// property by sifting it up.
func (h *Heap) Insert(offset uint32) {
	i := h.Size
	h.Entries[i] = offset
	h.Src.SetHeapIndexAt(offset, int32(i))
	h.Size++
	h.SiftUp(i)
}

// Remove evicts the entry at heap position i, marking its slot occupied
// and restoring the heap property. If i is not the last live entry, the
// last entry is moved into its place and re-settled with a sift in both
// directions (one direction is always a no-op).
func (h *Heap) Remove(i int) {
	last := h.Size - 1
	h.Src.SetHeapIndexAt(h.Entries[i], Occupied)

	if i != last {
		h.Entries[i] = h.Entries[last]
		h.Src.SetHeapIndexAt(h.Entries[i], int32(i))
		h.Size--
		h.SiftUp(i)
		h.SiftDown(i)

		return
	}

	h.Size--
}

// SiftUp moves the entry at i toward the root while it strictly exceeds
// its parent's key. Equal sizes do not bubble, keeping the heap's shape
// stable under repeated equal-size churn.
func (h *Heap) SiftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.chunksAt(parent) >= h.chunksAt(i) {
			break
		}

		h.swap(parent, i)
		i = parent
	}
}

// SiftDown moves the entry at i toward its larger child while that
// child strictly exceeds it, preferring the left child on a tie.
func (h *Heap) SiftDown(i int) {
	for {
		left, right := 2*i+1, 2*i+2
		largest := i

		if left < h.Size && h.chunksAt(left) > h.chunksAt(largest) {
			largest = left
		}

		if right < h.Size && h.chunksAt(right) > h.chunksAt(largest) {
			largest = right
		}

		if largest == i {
			return
		}

		h.swap(i, largest)
		i = largest
	}
}

// Root returns the offset of the largest free slot, or ok=false if the
// heap is empty.
func (h *Heap) Root() (offset uint32, ok bool) {
	if h.Size == 0 {
		return 0, false
	}

	return h.Entries[0], true
}

// PeekFit descends from the root toward a locally-smallest free slot
// that still has at least n chunks, preferring the larger child on each
// step and the left child on a tie. It stops as soon as neither child
// qualifies. This is an O(log Size) approximation of best-fit, not a
// full-tree scan for the true minimum sufficient slot — deliberately, so
// that a single descent both rejects over-capacity requests (via Root)
// and locates a fit without ever risking a dead end.
func (h *Heap) PeekFit(n uint32) (offset uint32, ok bool) {
	if h.Size == 0 || h.chunksAt(0) < n {
		return 0, false
	}

	i := 0
	for 2*i+2 < h.Size {
		left, right := 2*i+1, 2*i+2
		leftFits := h.chunksAt(left) >= n
		rightFits := h.chunksAt(right) >= n

		switch {
		case leftFits && rightFits:
			if h.chunksAt(left) >= h.chunksAt(right) {
				i = left
			} else {
				i = right
			}
		case leftFits:
			i = left
		case rightFits:
			i = right
		default:
			return h.Entries[i], true
		}
	}

	// Zero or one leaf may remain below i; a lone left child that still
	// fits is strictly better than stopping at i.
	if left := 2*i + 1; left < h.Size && h.chunksAt(left) >= n {
		i = left
	}

	return h.Entries[i], true
}
