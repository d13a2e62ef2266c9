// Package slotlist implements the address-ordered doubly linked list of
// slots that tiles an allocator's backing region end to end. Headers live
// in-band: each one is a small, pointerless struct overlaid directly on
// the region's bytes via unsafe.Pointer, exactly the way the teacher's
// BlockManager overlays *BlockHeader on raw memory. Because Header has no
// Go-pointer fields, overlaying it on a buffer obtained outside the Go
// heap (mmap'd memory, see host_unix.go in package quanta) is safe: the
// garbage collector never needs to trace through it.
//
// Neighbors are stored as chunk-aligned byte offsets from the start of
// the region, and heap position as an integer index into the size heap
// (neither as addresses), per the offset-indexing approach called out for
// safe-code encapsulations: it keeps the list portable across a region
// that may not be backed by ordinary Go memory.
package slotlist

import "unsafe"

// NoOffset marks an absent neighbor (the ends of the list).
const NoOffset uint32 = ^uint32(0)

// Occupied is the HeapIndex sentinel for a slot that is not in the size
// heap, i.e. currently allocated to a client.
const Occupied int32 = -1

const (
	headerMagic = 0xC7715A10
	headerGuard = 0xCAFEBEEF
)

// Header is the in-band record at the start of every slot. Its four
// logical fields are exactly those required by the specification
// (chunks, prev, next, heap_index); Magic and Guard are additive
// corruption checks written once at creation and never consulted by the
// core split/absorb/list-walk logic, only by the facade's pointer-recovery
// path as a first line of defense against a garbage argument. The
// invariant harness does not check them.
type Header struct {
	Magic     uint32
	Chunks    uint32
	HeapIndex int32
	Guard     uint32
	Prev      uint32
	Next      uint32
}

// HeaderSize is the physical footprint of Header. It must fit within one
// chunk; the unused remainder of the header's chunk is wasted padding,
// not available payload (see List.PayloadAt).
const HeaderSize = uint32(unsafe.Sizeof(Header{}))

// List is the address-ordered slot list embedded in region.
type List struct {
	Region    []byte
	ChunkSize uint32
}

// New wraps region as a slot list using chunkSize-byte chunks. region's
// length must already be a multiple of chunkSize.
func New(region []byte, chunkSize uint32) *List {
	return &List{Region: region, ChunkSize: chunkSize}
}

// HeaderAt overlays a *Header on the bytes at offset. offset must be a
// chunk-aligned slot start within Region.
func (l *List) HeaderAt(offset uint32) *Header {
	return (*Header)(unsafe.Pointer(&l.Region[offset]))
}

// InitBase installs the single header spanning the whole region, as
// required at the start of every allocator lifetime. It returns the base
// offset (always 0).
func (l *List) InitBase(totalChunks uint32) uint32 {
	h := l.HeaderAt(0)
	h.Magic = headerMagic
	h.Guard = headerGuard
	h.Chunks = totalChunks
	h.Prev = NoOffset
	h.Next = NoOffset
	h.HeapIndex = 0

	return 0
}

// PayloadAt returns the client-visible bytes of the slot at offset: the
// chunk reserved for the header is skipped entirely (consuming exactly
// one chunk's worth of leading bytes per the header's contract), so the
// payload begins at the next chunk boundary and runs to the end of the
// slot.
func (l *List) PayloadAt(offset uint32) []byte {
	h := l.HeaderAt(offset)
	start := offset + l.ChunkSize
	end := offset + h.Chunks*l.ChunkSize

	return l.Region[start:end]
}

// NextHeaderOffset computes the address arithmetic NEXT_HEADER(h): the
// offset one past the slot at offset, i.e. where the following slot (or
// the end of the region) begins.
func (l *List) NextHeaderOffset(offset uint32) uint32 {
	h := l.HeaderAt(offset)
	return offset + h.Chunks*l.ChunkSize
}

// End returns one-past-the-end offset of the whole region.
func (l *List) End() uint32 {
	return uint32(len(l.Region))
}

// Split reduces the slot at offset to n chunks and forms a new header h'
// at NextHeaderOffset(offset) holding the remaining chunks, linked
// between offset and its old next neighbor. Precondition: the slot at
// offset has more than n chunks. Split does not touch HeapIndex on
// either header beyond defaulting h' to Occupied: the caller owns heap
// bookkeeping for whichever of the two slots ends up free, exactly as
// specified.
func (l *List) Split(offset, n uint32) uint32 {
	h := l.HeaderAt(offset)
	oldChunks := h.Chunks
	h.Chunks = n

	newOffset := offset + n*l.ChunkSize
	nh := l.HeaderAt(newOffset)
	nh.Magic = headerMagic
	nh.Guard = headerGuard
	nh.Chunks = oldChunks - n
	nh.HeapIndex = Occupied
	nh.Prev = offset

	oldNext := h.Next
	nh.Next = oldNext
	if oldNext != NoOffset {
		l.HeaderAt(oldNext).Prev = newOffset
	}
	h.Next = newOffset

	return newOffset
}

// AbsorbNext merges the slot following offset into the slot at offset:
// chunks accumulate and the following header is unlinked from the list.
// Precondition: the slot at offset has a next neighbor.
func (l *List) AbsorbNext(offset uint32) {
	h := l.HeaderAt(offset)
	next := h.Next
	nh := l.HeaderAt(next)

	h.Chunks += nh.Chunks
	h.Next = nh.Next
	if nh.Next != NoOffset {
		l.HeaderAt(nh.Next).Prev = offset
	}
}

// IsFree reports whether the header at offset is currently in the size
// heap.
func (l *List) IsFree(offset uint32) bool {
	return l.HeaderAt(offset).HeapIndex != Occupied
}

// ChunksAt implements sizeheap.Chunker.
func (l *List) ChunksAt(offset uint32) uint32 {
	return l.HeaderAt(offset).Chunks
}

// SetHeapIndexAt implements sizeheap.Chunker.
func (l *List) SetHeapIndexAt(offset uint32, idx int32) {
	l.HeaderAt(offset).HeapIndex = idx
}

// Walk calls visit with the offset of every slot in address order,
// stopping early if visit returns false.
func (l *List) Walk(visit func(offset uint32) bool) {
	offset := uint32(0)
	end := l.End()
	for offset < end {
		if !visit(offset) {
			return
		}
		offset = l.NextHeaderOffset(offset)
	}
}

// IsCorrupt reports whether the header at offset fails its magic/guard
// stamp check — a cheap signal that ptr did not come from this
// allocator, used only at the facade's pointer-recovery boundary, never
// on the hot split/absorb path and not by the invariant harness.
func (l *List) IsCorrupt(offset uint32) bool {
	h := l.HeaderAt(offset)
	return h.Magic != headerMagic || h.Guard != headerGuard
}
