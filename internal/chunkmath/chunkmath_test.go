package chunkmath

import "testing"

func TestRoundDown(t *testing.T) {
	cases := []struct {
		x, chunkSize, want uint64
	}{
		{0, 512, 0},
		{511, 512, 0},
		{512, 512, 512},
		{513, 512, 512},
		{4096, 512, 4096},
	}

	for _, c := range cases {
		if got := RoundDown(c.x, c.chunkSize); got != c.want {
			t.Errorf("RoundDown(%d, %d) = %d, want %d", c.x, c.chunkSize, got, c.want)
		}
	}
}

func TestNumChunks(t *testing.T) {
	const chunkSize = 512

	cases := []struct {
		name string
		x    uint64
		want uint64
	}{
		{"zero is zero chunks", 0, 0},
		{"tiny payload still needs header + one chunk", 1, 2},
		{"payload exactly filling one chunk", chunkSize, 2},
		{"payload one byte over one chunk", chunkSize + 1, 3},
		{"scenario S2: 500 bytes -> 2 chunks", 500, 2},
		{"scenario S3: 2000 bytes -> 5 chunks", 2000, 5},
		{"scenario S7: 3000 bytes -> 7 chunks", 3000, 7},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NumChunks(c.x, chunkSize); got != c.want {
				t.Errorf("NumChunks(%d) = %d, want %d", c.x, got, c.want)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []uint64{1, 2, 4, 512, 1024} {
		if !IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", v)
		}
	}

	for _, v := range []uint64{0, 3, 5, 511, 513} {
		if IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", v)
		}
	}
}
