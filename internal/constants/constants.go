// Package constants centralizes the numeric and timing defaults the
// runtime core is built around, so the task, label and channel packages
// agree on them without importing each other.
package constants

import "time"

// Channel wire defaults (spec.md §4.3/§6).
const (
	// ChannelMsgType marks a message as in-band edgert traffic.
	ChannelMsgType uint32 = 10

	// ReplyOK marks a reply acknowledgement message.
	ReplyOK uint32 = 20

	// MaxPayloadSize is the largest payload (excluding the header) a
	// channel will accept.
	MaxPayloadSize = 8192

	// DefaultQueueDepth is the bounded number of in-flight messages a
	// channel's transport will queue before Send blocks (or, in
	// non-blocking mode, fails with ErrWouldBlock).
	DefaultQueueDepth = 10

	// HeaderSize is the on-wire size of the {type, size} message header.
	HeaderSize = 8
)

// Task engine defaults (spec.md §3/§4.4).
const (
	// MinPriority and MaxPriority are the ends of the real-time
	// fixed-priority band (a typical SCHED_FIFO range). AddThread does not
	// check a descriptor's priority against them.
	MinPriority = 1
	MaxPriority = 99

	// StatsHistoryBuckets sizes the per-thread execution-time histogram
	// kept alongside the spec-mandated sum/count accumulator.
	StatsHistoryBuckets = 8
)

// ExecLatencyBuckets defines the execution-time histogram buckets in
// nanoseconds, covering from 10us to 100ms log-spaced — the useful range
// for sub-millisecond control-loop jobs through a missed 50ms period.
var ExecLatencyBuckets = [StatsHistoryBuckets]uint64{
	10_000,      // 10us
	50_000,      // 50us
	100_000,     // 100us
	500_000,     // 500us
	1_000_000,   // 1ms
	5_000_000,   // 5ms
	10_000_000,  // 10ms
	100_000_000, // 100ms
}

// SchedWarmup is the grace period the demo host program waits after
// creating threads before treating a missing activation as a problem.
const SchedWarmup = 50 * time.Millisecond
