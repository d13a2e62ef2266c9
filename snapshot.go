package quanta

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/quantapool/quanta/internal/slotlist"
)

// snapshotFormatVersion is stamped on every Snapshot so a consumer parsing
// serialized snapshots (a log aggregator, a debugging CLI) can tell which
// field set to expect. It follows semantic versioning: a new optional
// field bumps the minor version, a field removal or meaning change bumps
// the major version.
var snapshotFormatVersion = semver.MustParse("1.0.0")

// Snapshot is a point-in-time accounting of a Pool's slot list and size
// heap, intended for diagnostics and tests, never for control flow: taking
// one does not lock out concurrent use of the Pool, so its fields can be
// stale by the time a caller reads them.
type Snapshot struct {
	FormatVersion *semver.Version

	CapacityChunks uint32
	OccupiedChunks uint32
	FreeChunks     uint32

	SlotCount      int
	FreeSlotCount  int
	LargestFreeRun uint32
}

// Stats builds a Snapshot by walking the slot list once. It is O(slot
// count), not O(1): the underlying structures don't maintain running
// totals, since nothing on the hot allocate/release/resize path needs
// them.
func (p *Pool) Stats() Snapshot {
	s := Snapshot{
		FormatVersion:  snapshotFormatVersion,
		CapacityChunks: p.capacityChunks,
	}

	p.list.Walk(func(offset uint32) bool {
		h := p.list.HeaderAt(offset)
		s.SlotCount++

		if h.HeapIndex == slotlist.Occupied {
			s.OccupiedChunks += h.Chunks
		} else {
			s.FreeChunks += h.Chunks
			s.FreeSlotCount++
			if h.Chunks > s.LargestFreeRun {
				s.LargestFreeRun = h.Chunks
			}
		}

		return true
	})

	return s
}

// String renders a one-line human-readable summary, used by tests and by
// the teacher's own convention of giving diagnostic structs a readable
// String() instead of relying on %+v.
func (s Snapshot) String() string {
	return fmt.Sprintf(
		"quanta.Snapshot(v%s) capacity=%d occupied=%d free=%d slots=%d free_slots=%d largest_free=%d",
		s.FormatVersion, s.CapacityChunks, s.OccupiedChunks, s.FreeChunks, s.SlotCount, s.FreeSlotCount, s.LargestFreeRun,
	)
}
