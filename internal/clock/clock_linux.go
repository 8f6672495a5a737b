//go:build linux

package clock

import "golang.org/x/sys/unix"

// NowNs returns a CLOCK_MONOTONIC nanosecond timestamp via
// unix.ClockGettime, matching original_source's get_time_ns
// (clock_gettime(CLOCK_MONOTONIC, ...)). It is not wall-clock time, is
// immune to wall-clock steps (NTP adjustment, manual clock set), and
// must only ever be compared against other values from NowNs.
func NowNs() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}
