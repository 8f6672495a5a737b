package edgert

import "github.com/edgert-io/edgert/internal/constants"

// ThreadMetrics is the public snapshot of one thread's execution-time
// accumulator and deadline-miss counter (spec.md §3 "execution-time
// accumulator", §7 DeadlineMiss "surfaced via statistics").
type ThreadMetrics struct {
	Name           string
	JobID          uint64
	SumNs          uint64
	Count          uint64
	MinNs          uint64
	MaxNs          uint64
	DeadlineMisses uint64

	// Buckets[i] counts jobs whose execution time was <=
	// constants.ExecLatencyBuckets[i], cumulatively.
	Buckets [constants.StatsHistoryBuckets]uint64
}

// MeanNs returns the average execution time in nanoseconds.
func (m ThreadMetrics) MeanNs() float64 {
	if m.Count == 0 {
		return 0
	}
	return float64(m.SumNs) / float64(m.Count)
}

// Metrics returns a snapshot of every registered thread's statistics,
// in registration order.
func (e *Engine) Metrics() []ThreadMetrics {
	descs := e.registry.All()
	out := make([]ThreadMetrics, len(descs))
	for i, d := range descs {
		snap := d.Stats.Load()
		out[i] = ThreadMetrics{
			Name:           d.Name,
			JobID:          d.CurrentJobID(),
			SumNs:          snap.SumNs,
			Count:          snap.Count,
			MinNs:          snap.MinNs,
			MaxNs:          snap.MaxNs,
			DeadlineMisses: snap.DeadlineMisses,
			Buckets:        snap.Buckets,
		}
	}
	return out
}

// ThreadMetric returns the statistics snapshot for a single thread.
func (e *Engine) ThreadMetric(name string) (ThreadMetrics, error) {
	d, err := e.Thread(name)
	if err != nil {
		return ThreadMetrics{}, err
	}
	snap := d.Stats.Load()
	return ThreadMetrics{
		Name:           d.Name,
		JobID:          d.CurrentJobID(),
		SumNs:          snap.SumNs,
		Count:          snap.Count,
		MinNs:          snap.MinNs,
		MaxNs:          snap.MaxNs,
		DeadlineMisses: snap.DeadlineMisses,
		Buckets:        snap.Buckets,
	}, nil
}
