//go:build !linux && !darwin

package quanta

// defaultHost falls back to the Go heap on platforms without an mmap
// binding wired up (see host_unix.go for linux/darwin).
func defaultHost() Host {
	return portableHost{}
}
