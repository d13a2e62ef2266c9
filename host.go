package quanta

import "fmt"

// Host is the two-operation contract the allocator consumes from its
// environment: obtain a fixed number of raw bytes once, and return them
// once. Init and Deinit are the only callers — the allocator never asks
// the host for more memory mid-lifetime, matching the fixed-capacity,
// single-region contract.
//
//go:generate mockgen -source=host.go -destination=internal/mockhost/mock_host.go -package=mockhost
type Host interface {
	// Obtain returns a buffer of exactly n bytes, or an error if the host
	// cannot satisfy the request.
	Obtain(n int) ([]byte, error)
	// Release returns a buffer previously obtained from this Host. It is
	// only ever called with a buffer this Host itself produced.
	Release(buf []byte)
}

// ErrHostExhausted is wrapped into whatever a Host.Obtain implementation
// returns when the underlying platform call fails, so callers can
// recognize the failure class without parsing error text.
var ErrHostExhausted = fmt.Errorf("quanta: host allocation failed")

// DefaultHost returns the platform's preferred Host: an mmap-backed
// implementation on platforms that support it (see host_unix.go), or a
// Go-heap-backed fallback everywhere else (see host_portable.go).
func DefaultHost() Host {
	return defaultHost()
}

// portableHost obtains memory straight from the Go heap. It is always
// available and is what DefaultHost falls back to on platforms without a
// direct mmap binding, and what tests use when they don't care about the
// backing region's provenance.
type portableHost struct{}

// NewPortableHost returns a Host backed by ordinary make([]byte, n)
// allocations, with no platform-specific system call involved.
func NewPortableHost() Host {
	return portableHost{}
}

func (portableHost) Obtain(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: non-positive size %d", ErrHostExhausted, n)
	}

	return make([]byte, n), nil
}

func (portableHost) Release([]byte) {
	// Go-heap memory is reclaimed by the garbage collector; nothing to do.
}
