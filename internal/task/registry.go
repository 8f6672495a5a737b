// Package task implements the periodic, fixed-priority task engine: a
// thread table, the per-thread periodic activation loop with its
// read-execute-write runnable phases, and the lifecycle that drives
// both (spec.md §4.4).
package task

import (
	"errors"
	"sync"
)

// Sentinel errors the root edgert package maps onto its shared Code
// taxonomy with thread-name context attached.
var (
	ErrAlreadyExists   = errors.New("thread already registered")
	ErrNotFound        = errors.New("unknown thread")
	ErrZeroPeriod      = errors.New("period must be non-zero")
	ErrAlreadyBound    = errors.New("runnable already bound")
	ErrAlreadyStarted  = errors.New("thread table already started")
)

// Registry is the node-wide thread table: a single mutex-guarded
// indexed collection, per spec.md §9's "global mutable registry is
// unavoidable by design; encapsulate it" note. Contention is limited to
// registration and shutdown; the hot path (the periodic loop) never
// touches the registry's mutex.
type Registry struct {
	mu      sync.Mutex
	byName  map[string]Handle
	entries []*Descriptor
	started bool
}

// NewRegistry creates an empty thread table.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handle)}
}

// AddThread inserts a new descriptor. Rejects a zero period (spec.md §8
// boundary behaviour) and duplicate names. Must be called before
// CreateThreads; see spec.md §4.4 registration ordering.
func (r *Registry) AddThread(name string, periodNs, deadlineNs, offsetNs int64, priority int, coreMask uint64, partition int) (Handle, error) {
	if periodNs == 0 {
		return 0, ErrZeroPeriod
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return 0, ErrAlreadyStarted
	}
	if _, ok := r.byName[name]; ok {
		return 0, ErrAlreadyExists
	}

	h := Handle(len(r.entries))
	d := &Descriptor{
		Handle:     h,
		Name:       name,
		PeriodNs:   periodNs,
		DeadlineNs: deadlineNs,
		OffsetNs:   offsetNs,
		Priority:   priority,
		CoreMask:   coreMask,
		Partition:  partition,
	}
	r.entries = append(r.entries, d)
	r.byName[name] = h
	return h, nil
}

// RegisterRunnable binds spec to the thread named name. Must be called
// before CreateThreads; rebinding an already-bound thread is rejected.
func (r *Registry) RegisterRunnable(name string, spec *Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	h, ok := r.byName[name]
	if !ok {
		return ErrNotFound
	}
	d := r.entries[h]
	if d.spec != nil {
		return ErrAlreadyBound
	}
	d.spec = spec
	return nil
}

// Lookup resolves a thread name to its descriptor.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return r.entries[h], nil
}

// All returns every registered descriptor, in registration order. The
// returned slice is a snapshot; callers must not mutate it.
func (r *Registry) All() []*Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Descriptor, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns the number of registered threads.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// markStarted prevents further registration once CreateThreads has run,
// since spec.md §3 requires scheduling parameters be immutable once a
// thread is started.
func (r *Registry) markStarted() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
}
