//go:build linux

package channel

// newPlatformFactory binds channels to real POSIX message queues on
// Linux, the kernel-visible transport spec.md §4.3 requires.
func newPlatformFactory() transportFactory {
	return mqueueFactory{}
}
