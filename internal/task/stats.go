package task

import (
	"sync/atomic"

	"github.com/edgert-io/edgert/internal/constants"
)

// Stats accumulates per-thread execution timing, matching spec.md
// §3/§4.4's sum/count accumulator and extending it with min/max, a
// deadline-miss counter, and a cumulative execution-time histogram (the
// spec allows such extensions explicitly). All fields are accessed only
// via atomics so the owning thread can update them without locking while
// a concurrent reader (the metrics surface) takes a snapshot. The
// histogram follows the teacher's own cumulative-bucket `recordLatency`
// pattern in `metrics.go`.
type Stats struct {
	sumNs          uint64
	count          uint64
	minNs          uint64
	maxNs          uint64
	deadlineMisses uint64
	buckets        [constants.StatsHistoryBuckets]uint64
}

// Snapshot is a point-in-time copy of Stats safe to read without races.
type Snapshot struct {
	SumNs          uint64
	Count          uint64
	MinNs          uint64
	MaxNs          uint64
	DeadlineMisses uint64

	// Buckets[i] counts jobs whose execution time was <=
	// constants.ExecLatencyBuckets[i], cumulatively.
	Buckets [constants.StatsHistoryBuckets]uint64
}

// Mean returns the average execution time in nanoseconds, or 0 if no
// jobs have completed yet.
func (s Snapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.SumNs) / float64(s.Count)
}

// Record folds one job's execution time into the accumulator and its
// cumulative histogram bucket.
func (s *Stats) Record(execNs int64) {
	n := uint64(execNs)
	atomic.AddUint64(&s.sumNs, n)
	atomic.AddUint64(&s.count, 1)
	casMin(&s.minNs, n)
	casMax(&s.maxNs, n)
	for i, bucket := range constants.ExecLatencyBuckets {
		if n <= bucket {
			atomic.AddUint64(&s.buckets[i], 1)
		}
	}
}

// RecordDeadlineMiss increments the observation-only deadline-miss
// counter; spec.md §7 treats DeadlineMiss as "counted, execution
// continues" — never corrective.
func (s *Stats) RecordDeadlineMiss() {
	atomic.AddUint64(&s.deadlineMisses, 1)
}

// Load returns a consistent snapshot of the accumulator.
func (s *Stats) Load() Snapshot {
	snap := Snapshot{
		SumNs:          atomic.LoadUint64(&s.sumNs),
		Count:          atomic.LoadUint64(&s.count),
		MinNs:          atomic.LoadUint64(&s.minNs),
		MaxNs:          atomic.LoadUint64(&s.maxNs),
		DeadlineMisses: atomic.LoadUint64(&s.deadlineMisses),
	}
	for i := range s.buckets {
		snap.Buckets[i] = atomic.LoadUint64(&s.buckets[i])
	}
	return snap
}

func casMin(addr *uint64, v uint64) {
	for {
		cur := atomic.LoadUint64(addr)
		if cur != 0 && cur <= v {
			return
		}
		if atomic.CompareAndSwapUint64(addr, cur, v) {
			return
		}
	}
}

func casMax(addr *uint64, v uint64) {
	for {
		cur := atomic.LoadUint64(addr)
		if cur >= v {
			return
		}
		if atomic.CompareAndSwapUint64(addr, cur, v) {
			return
		}
	}
}
