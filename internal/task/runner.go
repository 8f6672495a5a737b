package task

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/edgert-io/edgert/internal/clock"
	"github.com/edgert-io/edgert/internal/label"
	"github.com/edgert-io/edgert/internal/logging"
)

// CreateThreads spawns one goroutine per registered descriptor, pinned
// to its own OS thread, and returns once every thread has applied its
// scheduling parameters (or logged a warning and fallen back). It marks
// the registry started, locking out further AddThread/RegisterRunnable
// calls, per spec.md §3's "immutable once started" invariant.
func CreateThreads(r *Registry, store *label.Store, logger *logging.Logger) *sync.WaitGroup {
	r.markStarted()

	entries := r.All()
	var wg sync.WaitGroup
	var ready sync.WaitGroup
	wg.Add(len(entries))
	ready.Add(len(entries))

	for _, d := range entries {
		d := d
		go func() {
			defer wg.Done()
			runThread(d, store, logger, &ready)
		}()
	}

	ready.Wait()
	return &wg
}

// KillThreads sets every descriptor's termination flag. It never forces
// cancellation; a thread observes the flag at most one job later
// (spec.md §4.4 lifecycle, §5 cancellation model).
func KillThreads(r *Registry) {
	for _, d := range r.All() {
		d.terminateNow()
	}
}

// JoinThreads blocks until every spawned thread has returned. Callers
// must have called KillThreads first; this never times out, mirroring
// spec.md §5's "join_threads waits indefinitely".
func JoinThreads(wg *sync.WaitGroup) {
	wg.Wait()
}

// runThread is the body of one periodic thread: apply scheduling, then
// loop sleep→read→execute→write until the termination flag is set
// (spec.md §4.4 "Periodic loop (per thread)").
func runThread(d *Descriptor, store *label.Store, logger *logging.Logger, ready *sync.WaitGroup) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := logger
	if log != nil {
		log = log.With("thread", d.Name)
	}

	affinityErr, priorityErr := applyScheduling(d.Priority, d.CoreMask)
	if affinityErr != nil && log != nil {
		log.Warn("failed to apply CPU affinity, continuing unpinned", "error", affinityErr)
	}
	if priorityErr != nil && log != nil {
		log.Warn("failed to apply real-time priority, continuing with default scheduler", "error", priorityErr)
	}

	ready.Done()

	nextActivation := clock.NowNs() + d.OffsetNs

	for !d.Terminated() {
		clock.SleepUntil(nextActivation)
		if d.Terminated() {
			return
		}

		jobID := atomic.AddUint64(&d.currentJob, 1)

		start := clock.NowNs()
		runJob(d, store, log)
		end := clock.NowNs()

		d.Stats.Record(end - start)

		if d.DeadlineNs > 0 {
			if end-start > d.DeadlineNs || end > nextActivation+d.DeadlineNs {
				d.Stats.RecordDeadlineMiss()
				if log != nil {
					log.Warn("deadline miss", "job", jobID, "exec_ns", end-start)
				}
			}
		}

		// Catch-up policy (spec.md §4.4 tie-breaks): never skip a job to
		// realign; just advance by one period and let sleep_until return
		// immediately if we are already past it.
		nextActivation += d.PeriodNs
	}
}

// runJob executes one read-execute-write cycle. An unbound runnable
// produces an empty job, useful for probing pure scheduling overhead
// (spec.md §4.4 tie-breaks).
func runJob(d *Descriptor, store *label.Store, log *logging.Logger) {
	spec := d.spec
	if spec == nil {
		return
	}

	if err := spec.readInputs(store); err != nil {
		if log != nil {
			log.Error("input read failed, skipping step", "error", err)
		}
		return
	}

	spec.Runnable.Step()

	if err := spec.writeOutputs(store); err != nil {
		if log != nil {
			log.Error("output write failed", "error", err)
		}
	}
}
