// Package quanta implements a fixed-capacity byte allocator over a single
// contiguous backing region obtained once from a Host. It is the
// allocator facade: the five public operations (Init, Deinit, Allocate,
// Resize, Release) orchestrate an address-ordered slot list
// (internal/slotlist) and a max-heap over free-slot sizes
// (internal/sizeheap), keeping the two structures' invariants in lock
// step on every call.
//
// Pool is single-threaded and non-reentrant, exactly like the teacher's
// BlockManager/RegionAllocator facades: every exported method assumes
// exclusive access. Concurrent use requires an external mutex around
// every call — see SafePool for a ready-made wrapper — because the
// cross-structure invariants between the slot list and the size heap
// cannot be protected by finer-grained locking.
package quanta

import (
	"fmt"
	"unsafe"

	"github.com/quantapool/quanta/internal/chunkmath"
	"github.com/quantapool/quanta/internal/sizeheap"
	"github.com/quantapool/quanta/internal/slotlist"
)

// DefaultChunkSize is the allocation quantum Init uses (InitWithHost
// takes the chunk size as an argument): 512 bytes, at least the header size and at least
// the alignment required by any scalar this allocator promises to
// support.
const DefaultChunkSize = 512

// Pool is a single fixed-capacity backing region plus the slot list and
// size heap describing its free/occupied state. Zero value is not
// usable; construct with Init or InitWithHost.
type Pool struct {
	host    Host
	region  []byte
	heapBuf []byte

	list *slotlist.List
	heap *sizeheap.Heap

	chunkSize      uint32
	capacityChunks uint32
	zeroOnFree     bool
	traceHook      TraceFunc
}

// Init rounds capacity down to a whole number of chunks and obtains a
// backing region of that size from the default Host (see DefaultHost),
// installing a single free slot spanning it. It returns ErrCapacityTooSmall
// if the rounded capacity is zero, or ErrHostAllocFailed if either host
// buffer could not be obtained — any buffer already obtained is released
// first.
//
// Init must be called exactly once per Pool's lifetime. Calling it again
// on an already-initialized Pool is undefined, per spec; callers that
// need re-init should Deinit first and construct a fresh Pool.
func Init(capacity int) (*Pool, error) {
	return InitWithHost(DefaultHost(), capacity, DefaultChunkSize)
}

// InitWithHost is Init with an explicit Host and chunk size, for tests
// that want to inject a scripted or failing Host, or a non-default
// chunk size satisfying the power-of-two/alignment constraints in
// spec.md §3.
func InitWithHost(host Host, capacity int, chunkSize uint32) (*Pool, error) {
	if chunkSize == 0 || !chunkmath.IsPowerOfTwo(uint64(chunkSize)) {
		return nil, fmt.Errorf("%w: chunk size %d is not a power of two", ErrCapacityTooSmall, chunkSize)
	}

	rounded := chunkmath.RoundDown(uint64(capacity), uint64(chunkSize))
	if rounded == 0 {
		return nil, fmt.Errorf("%w: %d bytes rounds down to 0 chunks of %d", ErrCapacityTooSmall, capacity, chunkSize)
	}

	totalChunks := rounded / uint64(chunkSize)

	region, err := host.Obtain(int(rounded))
	if err != nil {
		return nil, fmt.Errorf("%w: region: %v", ErrHostAllocFailed, err)
	}

	heapBuf, err := host.Obtain(int(totalChunks) * 4)
	if err != nil {
		host.Release(region)
		return nil, fmt.Errorf("%w: size heap: %v", ErrHostAllocFailed, err)
	}

	list := slotlist.New(region, chunkSize)
	base := list.InitBase(uint32(totalChunks))

	entries := uint32SliceOf(heapBuf)
	heap := sizeheap.New(entries, list)
	heap.Entries[0] = base
	heap.Size = 1

	return &Pool{
		host:           host,
		region:         region,
		heapBuf:        heapBuf,
		list:           list,
		heap:           heap,
		chunkSize:      chunkSize,
		capacityChunks: uint32(totalChunks),
	}, nil
}

// Deinit returns the backing region and heap array to the host. Calling
// Deinit on a Pool that was never initialized, or twice, is undefined.
func (p *Pool) Deinit() {
	p.host.Release(p.region)
	p.host.Release(p.heapBuf)
	p.region = nil
	p.heapBuf = nil
	p.list = nil
	p.heap = nil
}

// uint32SliceOf reinterprets buf (whose length must be a multiple of 4)
// as a []uint32 without copying. Header and the heap's Entries array
// hold no Go pointers, so this reinterpretation is safe even when buf
// was obtained outside the Go heap (see host_unix.go).
func uint32SliceOf(buf []byte) []uint32 {
	if len(buf) == 0 {
		return nil
	}

	return unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), len(buf)/4)
}

// Allocate reserves a slot able to hold size bytes of payload and
// returns a slice over it. It returns ErrZeroSize for size == 0 (spec.md
// §9 leaves allocate(0) undefined and recommends rejecting it at the
// boundary) and ErrCapacityExhausted if no free slot is large enough,
// whether from outright exhaustion or fragmentation; allocator state is
// unchanged on that path.
func (p *Pool) Allocate(size int) ([]byte, error) {
	if size == 0 {
		p.trace("allocate size=0 rejected: %v", ErrZeroSize)
		return nil, ErrZeroSize
	}

	needed := uint32(chunkmath.NumChunks(uint64(size), uint64(p.chunkSize)))

	root, ok := p.heap.Root()
	if !ok || p.list.ChunksAt(root) < needed {
		p.trace("allocate size=%d chunks=%d failed: %v", size, needed, ErrCapacityExhausted)
		return nil, ErrCapacityExhausted
	}

	offset, ok := p.heap.PeekFit(needed)
	if !ok {
		p.trace("allocate size=%d chunks=%d failed: %v", size, needed, ErrCapacityExhausted)
		return nil, ErrCapacityExhausted
	}

	h := p.list.HeaderAt(offset)

	if h.Chunks == needed {
		p.heap.Remove(int(h.HeapIndex))
		p.trace("allocate size=%d chunks=%d offset=%d exact-fit", size, needed, offset)
		return p.list.PayloadAt(offset), nil
	}

	// Split policy: cut from the high end of the free slot, so the free
	// slot's identity (and heap entry) stays at the low address end and
	// needs only a key update, never a reinstallation.
	lowChunks := h.Chunks - needed
	newOffset := p.list.Split(offset, lowChunks)
	p.heap.SiftDown(int(h.HeapIndex))

	p.trace("allocate size=%d chunks=%d offset=%d split-from=%d", size, needed, newOffset, offset)

	return p.list.PayloadAt(newOffset), nil
}

// Release returns the slot backing ptr to the free pool, coalescing with
// free neighbors. Releasing a pointer that is already free is a silent
// no-op (detected via the header's occupancy sentinel), matching
// spec.md's double-free contract. Release returns ErrInvalidPointer only
// as a best-effort check that ptr plausibly came from this Pool — a
// pointer into the middle of a payload, or one this Pool never returned,
// remains undefined behavior per spec.md §7.
func (p *Pool) Release(ptr []byte) error {
	offset, err := p.offsetOf(ptr)
	if err != nil {
		p.trace("release failed: %v", err)
		return err
	}

	return p.releaseAt(offset)
}

func (p *Pool) releaseAt(offset uint32) error {
	h := p.list.HeaderAt(offset)
	if h.HeapIndex != slotlist.Occupied {
		p.trace("release offset=%d double-free ignored", offset)
		return nil
	}

	p.trace("release offset=%d chunks=%d", offset, h.Chunks)

	if p.zeroOnFree {
		clear(p.list.PayloadAt(offset))
	}

	prevOffset, nextOffset := h.Prev, h.Next
	prevFree := prevOffset != slotlist.NoOffset && p.list.IsFree(prevOffset)
	nextFree := nextOffset != slotlist.NoOffset && p.list.IsFree(nextOffset)

	switch {
	case prevFree && nextFree:
		prevH := p.list.HeaderAt(prevOffset)
		nextH := p.list.HeaderAt(nextOffset)

		p.list.AbsorbNext(prevOffset) // prev absorbs h
		p.list.AbsorbNext(prevOffset) // prev absorbs the original next

		// Sift first, then remove: sifting prev's grown key can move the
		// original next's heap entry to a new index (if they happen to
		// be on the same root-to-leaf path). nextH.HeapIndex is re-read
		// after the sift precisely to pick up that move — removing by a
		// captured pre-sift index would evict whatever now sits there
		// instead of the entry we mean to drop.
		p.heap.SiftUp(int(prevH.HeapIndex))
		p.heap.Remove(int(nextH.HeapIndex))

	case prevFree:
		prevH := p.list.HeaderAt(prevOffset)
		p.list.AbsorbNext(prevOffset)
		p.heap.SiftUp(int(prevH.HeapIndex))

	case nextFree:
		nextH := p.list.HeaderAt(nextOffset)
		heapIdx := nextH.HeapIndex

		p.list.AbsorbNext(offset)
		h.HeapIndex = heapIdx
		p.heap.Entries[heapIdx] = offset
		p.heap.SiftUp(int(heapIdx)) // key grew

	default:
		p.heap.Insert(offset)
	}

	if prevFree {
		// h's header now lies inside prev's free slot. Clearing its
		// occupancy sentinel sends a repeated Release of the same pointer
		// down the double-free no-op path above.
		h.HeapIndex = p.list.HeaderAt(prevOffset).HeapIndex
	}

	return nil
}

// Resize dispatches on (ptr, size) exactly as spec.md §4.4 describes: a
// nil ptr allocates, a zero size releases, an unchanged chunk count
// returns ptr unmodified, a smaller chunk count shrinks in place, and a
// larger one grows in place when the following slot is free and big
// enough, or relocates otherwise. On a relocating failure the original
// block is left untouched and ErrCapacityExhausted is returned.
func (p *Pool) Resize(ptr []byte, size int) ([]byte, error) {
	if ptr == nil {
		return p.Allocate(size)
	}

	needed := uint32(chunkmath.NumChunks(uint64(size), uint64(p.chunkSize)))

	offset, err := p.offsetOf(ptr)
	if err != nil {
		p.trace("resize failed: %v", err)
		return nil, err
	}

	if needed == 0 {
		p.trace("resize offset=%d size=0 releasing", offset)
		return nil, p.releaseAt(offset)
	}

	h := p.list.HeaderAt(offset)

	switch {
	case needed == h.Chunks:
		p.trace("resize offset=%d chunks=%d unchanged", offset, h.Chunks)
		return ptr, nil
	case needed < h.Chunks:
		p.trace("resize offset=%d chunks=%d->%d shrink", offset, h.Chunks, needed)
		return p.shrinkInPlace(offset, needed)
	default:
		p.trace("resize offset=%d chunks=%d->%d grow", offset, h.Chunks, needed)
		return p.growOrRelocate(offset, needed, size)
	}
}

// shrinkInPlace implements spec.md §4.4's "shrink in place" resize case.
func (p *Pool) shrinkInPlace(offset, needed uint32) ([]byte, error) {
	freedOffset := p.list.Split(offset, needed)
	fh := p.list.HeaderAt(freedOffset)

	if next := fh.Next; next != slotlist.NoOffset && p.list.IsFree(next) {
		nh := p.list.HeaderAt(next)
		heapIdx := nh.HeapIndex

		p.list.AbsorbNext(freedOffset)
		fh.HeapIndex = heapIdx
		p.heap.Entries[heapIdx] = freedOffset
		p.heap.SiftUp(int(heapIdx)) // key grew (absorbed the neighbor's chunks)
	} else {
		p.heap.Insert(freedOffset)
	}

	if p.zeroOnFree {
		clear(p.list.PayloadAt(freedOffset))
	}

	return p.list.PayloadAt(offset), nil
}

// growOrRelocate implements spec.md §4.4's "grow" resize case: in-place
// exact/partial absorption of a free next neighbor when it is large
// enough, otherwise allocate-copy-release.
func (p *Pool) growOrRelocate(offset, needed uint32, requestedSize int) ([]byte, error) {
	h := p.list.HeaderAt(offset)
	next := h.Next

	if next != slotlist.NoOffset && p.list.IsFree(next) {
		nh := p.list.HeaderAt(next)
		combined := h.Chunks + nh.Chunks

		if combined >= needed {
			heapIdx := nh.HeapIndex

			if combined == needed {
				p.heap.Remove(int(heapIdx))
				p.list.AbsorbNext(offset)

				return p.list.PayloadAt(offset), nil
			}

			// Partial: fully absorb the neighbor, then split the excess
			// back off into a new free header inheriting the neighbor's
			// heap slot. The key shrank (combined-needed < nh.Chunks), so
			// this sifts down, unlike the sibling shrink-in-place path
			// above, which grows its merged key and sifts up.
			p.list.AbsorbNext(offset)
			newFreeOffset := p.list.Split(offset, needed)
			nf := p.list.HeaderAt(newFreeOffset)
			nf.HeapIndex = heapIdx
			p.heap.Entries[heapIdx] = newFreeOffset
			p.heap.SiftDown(int(heapIdx))

			return p.list.PayloadAt(offset), nil
		}
	}

	newPayload, err := p.Allocate(requestedSize)
	if err != nil {
		p.trace("resize offset=%d relocate failed: %v", offset, err)
		return nil, err
	}

	oldPayload := p.list.PayloadAt(offset)
	copy(newPayload, oldPayload)

	if err := p.releaseAt(offset); err != nil {
		return nil, err
	}

	return newPayload, nil
}

// offsetOf recovers the header offset preceding ptr's payload by pointer
// arithmetic, rejecting anything that plausibly could not have come from
// this Pool: out-of-range, misaligned to a chunk boundary, or failing the
// header's magic/guard stamp check.
func (p *Pool) offsetOf(ptr []byte) (uint32, error) {
	if len(ptr) == 0 || len(p.region) == 0 {
		return 0, ErrInvalidPointer
	}

	base := uintptr(unsafe.Pointer(&p.region[0]))
	addr := uintptr(unsafe.Pointer(&ptr[0]))

	if addr < base+uintptr(p.chunkSize) {
		return 0, ErrInvalidPointer
	}

	rel := addr - base
	if rel >= uintptr(len(p.region)) {
		return 0, ErrInvalidPointer
	}

	payloadRel := rel - uintptr(p.chunkSize)
	if payloadRel%uintptr(p.chunkSize) != 0 {
		return 0, ErrInvalidPointer
	}

	offset := uint32(payloadRel)
	if p.list.IsCorrupt(offset) {
		return 0, ErrInvalidPointer
	}

	return offset, nil
}
