package edgert

import (
	"errors"
	"sync"

	"github.com/edgert-io/edgert/internal/channel"
	"github.com/edgert-io/edgert/internal/label"
	"github.com/edgert-io/edgert/internal/logging"
	"github.com/edgert-io/edgert/internal/task"
)

// Engine is the single owning object for a node's label store, channel
// set and thread registry — the "global mutable registry" spec.md §9
// says is unavoidable by design, encapsulated behind one constructed
// object rather than left as ambient package state.
type Engine struct {
	Logger *logging.Logger

	labels    *label.Store
	registry  *task.Registry
	runnables []task.Runnable

	mu       sync.Mutex
	channels []*channel.Channel

	wg *sync.WaitGroup
}

// New constructs an empty Engine. logger may be nil, in which case
// nothing is logged.
func New(logger *logging.Logger) *Engine {
	return &Engine{
		Logger:   logger,
		labels:   label.New(),
		registry: task.NewRegistry(),
	}
}

// RegisterLabel allocates a new shared variable of size bytes under
// name (spec.md §4.2 register).
func (e *Engine) RegisterLabel(name string, size int) (label.ID, error) {
	id, err := e.labels.Register(name, size)
	if err != nil {
		return 0, WrapError("RegisterLabel", NewLabelError("RegisterLabel", name, mapLabelErr(err), err.Error()))
	}
	return id, nil
}

// ReadLabel copies the current value of id into dst.
func (e *Engine) ReadLabel(id label.ID, dst []byte) error {
	if err := e.labels.Read(id, dst); err != nil {
		return WrapError("ReadLabel", NewLabelError("ReadLabel", e.labels.Name(id), mapLabelErr(err), err.Error()))
	}
	return nil
}

// WriteLabel publishes src as the new value of id.
func (e *Engine) WriteLabel(id label.ID, src []byte) error {
	if err := e.labels.Write(id, src); err != nil {
		return WrapError("WriteLabel", NewLabelError("WriteLabel", e.labels.Name(id), mapLabelErr(err), err.Error()))
	}
	return nil
}

// LookupLabel resolves a label name to its id.
func (e *Engine) LookupLabel(name string) (label.ID, bool) {
	return e.labels.Lookup(name)
}

func mapLabelErr(err error) Code {
	switch {
	case errors.Is(err, label.ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, label.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, label.ErrSizeMismatch):
		return CodeSizeMismatch
	default:
		return CodeIOError
	}
}

// AddThread inserts a descriptor into the thread registry. periodNs of
// 0 is rejected (spec.md §8 boundary behaviour).
func (e *Engine) AddThread(name string, periodNs, deadlineNs, offsetNs int64, priority int, coreMask uint64, partition int) error {
	_, err := e.registry.AddThread(name, periodNs, deadlineNs, offsetNs, priority, coreMask, partition)
	if err != nil {
		return WrapError("AddThread", NewThreadError("AddThread", name, mapTaskErr(err), err.Error()))
	}
	return nil
}

// RegisterRunnable binds a runnable spec to an existing thread. Must be
// called before CreateThreads.
func (e *Engine) RegisterRunnable(name string, spec *task.Spec) error {
	if err := e.registry.RegisterRunnable(name, spec); err != nil {
		return WrapError("RegisterRunnable", NewThreadError("RegisterRunnable", name, mapTaskErr(err), err.Error()))
	}
	e.runnables = append(e.runnables, spec.Runnable)
	return nil
}

func mapTaskErr(err error) Code {
	switch {
	case errors.Is(err, task.ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, task.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, task.ErrZeroPeriod), errors.Is(err, task.ErrAlreadyBound), errors.Is(err, task.ErrAlreadyStarted):
		return CodeInvalidParameters
	default:
		return CodeIOError
	}
}

// Thread returns the descriptor registered under name, for inspecting
// per-thread statistics.
func (e *Engine) Thread(name string) (*task.Descriptor, error) {
	d, err := e.registry.Lookup(name)
	if err != nil {
		return nil, WrapError("Thread", NewThreadError("Thread", name, mapTaskErr(err), err.Error()))
	}
	return d, nil
}

// Threads returns every registered thread descriptor.
func (e *Engine) Threads() []*task.Descriptor {
	return e.registry.All()
}

// CreateChannel creates a new server-role channel named name, tracked
// for cleanup at engine shutdown.
func (e *Engine) CreateChannel(name string, maxPayload, queueDepth int) (*channel.Channel, error) {
	ch, err := channel.Create(name, maxPayload, queueDepth)
	if err != nil {
		return nil, WrapError("CreateChannel", NewChannelError("CreateChannel", name, mapChannelErr(err), err.Error()))
	}
	e.mu.Lock()
	e.channels = append(e.channels, ch)
	e.mu.Unlock()
	return ch, nil
}

// ConnectChannel attaches to an existing server-created channel named
// name, tracked for cleanup at engine shutdown.
func (e *Engine) ConnectChannel(name string, maxPayload int) (*channel.Channel, error) {
	ch, err := channel.Connect(name, maxPayload)
	if err != nil {
		return nil, WrapError("ConnectChannel", NewChannelError("ConnectChannel", name, mapChannelErr(err), err.Error()))
	}
	e.mu.Lock()
	e.channels = append(e.channels, ch)
	e.mu.Unlock()
	return ch, nil
}

func mapChannelErr(err error) Code {
	switch {
	case errors.Is(err, channel.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, channel.ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, channel.ErrWouldBlock):
		return CodeWouldBlock
	case errors.Is(err, channel.ErrTooLarge):
		return CodeTooLarge
	case errors.Is(err, channel.ErrBroken), errors.Is(err, channel.ErrNotReady):
		return CodeBrokenChannel
	default:
		return CodeIOError
	}
}

// InitRunnables calls Init on every runnable bound to a thread, in
// registration order. Must be called before CreateThreads (spec.md §4.4
// lifecycle).
func (e *Engine) InitRunnables() error {
	for _, d := range e.registry.All() {
		spec := d.Runnable()
		if spec == nil {
			continue
		}
		if err := spec.Runnable.Init(); err != nil {
			return WrapError("InitRunnables", NewThreadError("InitRunnables", d.Name, CodeIOError, err.Error()))
		}
	}
	return nil
}

// CreateThreads spawns one goroutine per registered thread and blocks
// until every thread has applied its scheduling parameters (or fallen
// back with a logged warning). It returns no error: starting a goroutine
// cannot fail, and a thread whose scheduling parameters could not be
// applied still runs under the default scheduler.
func (e *Engine) CreateThreads() {
	e.wg = task.CreateThreads(e.registry, e.labels, e.Logger)
}

// KillThreads sets every descriptor's cooperative termination flag.
func (e *Engine) KillThreads() {
	task.KillThreads(e.registry)
}

// JoinThreads blocks until every thread has returned. Must be called
// after KillThreads.
func (e *Engine) JoinThreads() {
	if e.wg != nil {
		task.JoinThreads(e.wg)
	}
}

// DeinitRunnables calls Deinit on every bound runnable, in registration
// order, and returns the first error encountered (continuing through
// the rest so every runnable gets a chance to release its state).
func (e *Engine) DeinitRunnables() error {
	var first error
	for _, d := range e.registry.All() {
		spec := d.Runnable()
		if spec == nil {
			continue
		}
		if err := spec.Runnable.Deinit(); err != nil {
			wrapped := WrapError("DeinitRunnables", NewThreadError("DeinitRunnables", d.Name, CodeIOError, err.Error()))
			if first == nil {
				first = wrapped
			}
			if e.Logger != nil {
				e.Logger.Error("runnable deinit failed", "thread", d.Name, "error", err)
			}
		}
	}
	return first
}

// Cleanup releases every channel the engine created or connected to.
// Call after DeinitRunnables, completing the spec.md §4.4 lifecycle's
// final "cleanup of labels and channels" step (labels have no
// allocation to release beyond process exit, so only channels need it).
func (e *Engine) Cleanup() error {
	e.mu.Lock()
	channels := e.channels
	e.channels = nil
	e.mu.Unlock()

	var first error
	for _, ch := range channels {
		if err := ch.Cleanup(); err != nil && first == nil {
			first = WrapError("Cleanup", NewChannelError("Cleanup", ch.Name(), CodeBrokenChannel, err.Error()))
		}
	}
	return first
}
