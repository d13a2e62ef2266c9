package quanta

import "testing"

func TestStatsReflectsAllocationsAndReleases(t *testing.T) {
	p := mustInit(t, 8*DefaultChunkSize)
	defer p.Deinit()

	a, err := p.Allocate(10)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	stats := p.Stats()
	if stats.CapacityChunks != 8 {
		t.Errorf("CapacityChunks = %d, want 8", stats.CapacityChunks)
	}
	if stats.OccupiedChunks != 2 {
		t.Errorf("OccupiedChunks = %d, want 2", stats.OccupiedChunks)
	}
	if stats.FreeChunks != 6 {
		t.Errorf("FreeChunks = %d, want 6", stats.FreeChunks)
	}
	if stats.FormatVersion == nil || stats.FormatVersion.String() != "1.0.0" {
		t.Errorf("FormatVersion = %v, want 1.0.0", stats.FormatVersion)
	}

	if err := p.Release(a); err != nil {
		t.Fatalf("Release: %v", err)
	}

	stats = p.Stats()
	if stats.OccupiedChunks != 0 {
		t.Errorf("OccupiedChunks = %d, want 0 after release", stats.OccupiedChunks)
	}
	if stats.SlotCount != 1 {
		t.Errorf("SlotCount = %d, want 1 after coalescing back to one free slot", stats.SlotCount)
	}
}

func TestSnapshotStringIsHumanReadable(t *testing.T) {
	p := mustInit(t, 4*DefaultChunkSize)
	defer p.Deinit()

	s := p.Stats().String()
	if s == "" {
		t.Error("Snapshot.String() returned an empty string")
	}
}
