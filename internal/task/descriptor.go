package task

import (
	"sync/atomic"
)

// Handle is a stable, small-integer identifier for a registered thread
// descriptor, per spec.md §9's "indexed table, not an intrusive linked
// list" design note.
type Handle int

// Descriptor is one entry in the thread table (spec.md §3 "Thread
// descriptor"). Its scheduling parameters are set at registration and
// are immutable once the owning thread starts; only CurrentJobID, Stats
// and the termination flag change after that, and only the owning
// thread writes the first two.
type Descriptor struct {
	Handle Handle
	Name   string

	PeriodNs   int64
	DeadlineNs int64
	OffsetNs   int64
	Priority   int
	CoreMask   uint64
	Partition  int

	Stats Stats

	spec       *Spec
	currentJob uint64
	terminate  int32
}

// CurrentJobID returns the number of jobs this thread has completed.
func (d *Descriptor) CurrentJobID() uint64 {
	return atomic.LoadUint64(&d.currentJob)
}

// Runnable returns the bound runnable spec, or nil if unbound (the
// thread then runs empty jobs per spec.md §4.4 tie-breaks).
func (d *Descriptor) Runnable() *Spec {
	return d.spec
}

// Terminated reports whether the cooperative termination flag has been
// set. Checked once per job by the owning thread.
func (d *Descriptor) Terminated() bool {
	return atomic.LoadInt32(&d.terminate) != 0
}

// terminateNow sets the termination flag; kill_threads is the only
// caller (spec.md §4.4 lifecycle).
func (d *Descriptor) terminateNow() {
	atomic.StoreInt32(&d.terminate, 1)
}
