//go:build linux

package task

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// schedFIFO is Linux's SCHED_FIFO scheduling policy value; spec.md §4.4
// calls for "real-time fixed-priority band, first-in-first-out among
// equals".
const schedFIFO = 1

type schedParam struct {
	priority int32
}

// applyScheduling pins the calling OS thread (tid 0 means "caller") to
// coreMask and raises it to SCHED_FIFO at priority, as two independent
// best-effort steps — matching original_source's thread_baseTaskCode,
// which calls pthread_setaffinity_np and pthread_setschedparam one after
// the other and warns on each independently rather than bailing out
// after the first failure. A permission failure on one (typically EPERM
// without CAP_SYS_NICE) must never suppress an attempt at the other.
func applyScheduling(priority int, coreMask uint64) (affinityErr, priorityErr error) {
	if coreMask != 0 {
		var set unix.CPUSet
		for cpu := 0; cpu < 64; cpu++ {
			if coreMask&(1<<uint(cpu)) != 0 {
				set.Set(cpu)
			}
		}
		affinityErr = unix.SchedSetaffinity(0, &set)
	}

	param := schedParam{priority: int32(priority)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, 0, uintptr(schedFIFO), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		priorityErr = errno
	}
	return affinityErr, priorityErr
}
