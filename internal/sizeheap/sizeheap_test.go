package sizeheap

import "testing"

// fakeList is a minimal Chunker over a plain slice, standing in for
// slotlist.List so this package's tests never need a real backing region.
type fakeList struct {
	chunks    map[uint32]uint32
	heapIndex map[uint32]int32
}

func newFakeList() *fakeList {
	return &fakeList{chunks: map[uint32]uint32{}, heapIndex: map[uint32]int32{}}
}

func (f *fakeList) ChunksAt(offset uint32) uint32 { return f.chunks[offset] }

func (f *fakeList) SetHeapIndexAt(offset uint32, idx int32) { f.heapIndex[offset] = idx }

func checkHeapProperty(t *testing.T, h *Heap) {
	t.Helper()

	for i := 1; i < h.Size; i++ {
		parent := (i - 1) / 2
		if h.chunksAt(parent) < h.chunksAt(i) {
			t.Fatalf("heap property broken at index %d: parent %d < child %d", i, h.chunksAt(parent), h.chunksAt(i))
		}
	}
}

func TestInsertMaintainsHeapProperty(t *testing.T) {
	src := newFakeList()
	h := New(make([]uint32, 16), src)

	sizes := []uint32{5, 1, 9, 3, 12, 7, 2, 8}
	for i, sz := range sizes {
		offset := uint32(i + 1)
		src.chunks[offset] = sz
		h.Insert(offset)
	}

	checkHeapProperty(t, h)

	root, ok := h.Root()
	if !ok || src.ChunksAt(root) != 12 {
		t.Errorf("Root() = %d (chunks %d), want the slot with 12 chunks", root, src.ChunksAt(root))
	}
}

func TestInsertKeepsHeapIndexInSync(t *testing.T) {
	src := newFakeList()
	h := New(make([]uint32, 16), src)

	for i, sz := range []uint32{5, 1, 9, 3, 12, 7, 2, 8} {
		offset := uint32(i + 1)
		src.chunks[offset] = sz
		h.Insert(offset)
	}

	for i := 0; i < h.Size; i++ {
		offset := h.Entries[i]
		if src.heapIndex[offset] != int32(i) {
			t.Errorf("offset %d: heapIndex = %d, want %d", offset, src.heapIndex[offset], i)
		}
	}
}

func TestRemoveLastEntry(t *testing.T) {
	src := newFakeList()
	h := New(make([]uint32, 4), src)

	src.chunks[1] = 5
	h.Insert(1)

	h.Remove(0)

	if h.Size != 0 {
		t.Errorf("Size = %d, want 0", h.Size)
	}
	if src.heapIndex[1] != Occupied {
		t.Errorf("heapIndex after remove = %d, want Occupied", src.heapIndex[1])
	}
}

func TestRemoveMiddleEntryResettlesBothDirections(t *testing.T) {
	src := newFakeList()
	h := New(make([]uint32, 16), src)

	for i, sz := range []uint32{10, 8, 9, 1, 2, 3, 4} {
		offset := uint32(i + 1)
		src.chunks[offset] = sz
		h.Insert(offset)
	}

	// Remove the root's left child: the last entry is moved into the hole
	// and re-settled by Remove's sift in both directions, after which the
	// heap property must still hold.
	removeIdx := 1
	removedOffset := h.Entries[removeIdx]

	h.Remove(removeIdx)

	checkHeapProperty(t, h)

	for i := 0; i < h.Size; i++ {
		if h.Entries[i] == removedOffset {
			t.Fatalf("removed offset %d still present in heap at index %d", removedOffset, i)
		}
	}
	if src.heapIndex[removedOffset] != Occupied {
		t.Errorf("removed offset's heapIndex = %d, want Occupied", src.heapIndex[removedOffset])
	}
}

func TestPeekFitReturnsSmallestSufficientAlongDescent(t *testing.T) {
	src := newFakeList()
	h := New(make([]uint32, 16), src)

	for i, sz := range []uint32{20, 15, 18, 5, 11, 9, 17} {
		offset := uint32(i + 1)
		src.chunks[offset] = sz
		h.Insert(offset)
	}
	checkHeapProperty(t, h)

	offset, ok := h.PeekFit(10)
	if !ok {
		t.Fatal("PeekFit(10) = false, want true")
	}
	// Heap is [20, 15, 18, 5, 11, 9, 17]: the descent goes 20 -> 18 (the
	// larger fitting child) -> 17 (the only fitting child), a leaf.
	if got := src.ChunksAt(offset); got != 17 {
		t.Errorf("PeekFit(10) returned a slot with %d chunks, want 17", got)
	}
}

func TestPeekFitFailsWhenRootTooSmall(t *testing.T) {
	src := newFakeList()
	h := New(make([]uint32, 4), src)

	src.chunks[1] = 3
	h.Insert(1)

	if _, ok := h.PeekFit(4); ok {
		t.Error("PeekFit(4) = true, want false when the largest slot has only 3 chunks")
	}
}

func TestPeekFitEmptyHeap(t *testing.T) {
	h := New(make([]uint32, 4), newFakeList())

	if _, ok := h.PeekFit(1); ok {
		t.Error("PeekFit on an empty heap = true, want false")
	}
}
