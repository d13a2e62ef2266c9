// Package chunkmath provides the pure size/offset arithmetic shared by the
// slot list and the allocator facade. It holds no state and touches no
// memory; every function is a closed-form computation over byte counts.
package chunkmath

// RoundDown clears the bits of x below chunkSize, which must be a power of
// two. Used once at init to fit a requested capacity to a whole number of
// chunks.
func RoundDown(x, chunkSize uint64) uint64 {
	return x &^ (chunkSize - 1)
}

// NumChunks returns the number of chunks a slot must span to hold x bytes
// of client payload. The header always consumes one full leading chunk
// (see Header in package slotlist) regardless of its own struct size, so
// this is 0 for x == 0 and 1+ceil(x/chunkSize) otherwise: one chunk for
// the header plus enough chunks to cover the payload.
//
// Equivalently, the smallest n with n*chunkSize >= x+chunkSize.
func NumChunks(x, chunkSize uint64) uint64 {
	if x == 0 {
		return 0
	}

	return RoundDown(x+2*chunkSize-1, chunkSize) / chunkSize
}

// IsPowerOfTwo reports whether v is a power of two. Used to validate a
// non-default chunk size passed to InitWithHost.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
