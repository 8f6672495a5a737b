package task

import "github.com/edgert-io/edgert/internal/label"

// Runnable is the capability set a per-application task body implements:
// init/deinit hooks plus a step function, realized as a Go interface
// rather than the C-style function-pointer struct the original design
// used (spec.md §9 Design Notes item 2).
type Runnable interface {
	// Init prepares the runnable's opaque state. Called once, before any
	// thread using it starts.
	Init() error
	// Deinit releases the runnable's opaque state. Called once, after
	// every thread using it has stopped.
	Deinit() error
	// Step reads Spec's input buffers and writes Spec's output buffers.
	// It must not block on I/O; execute-phase blocking is a latency bug
	// the engine cannot detect, per spec.md §5.
	Step()
}

// Spec binds a Runnable to the label ids it reads and writes and the
// staging buffers it reads/writes them through. The buffers are owned
// by the runnable, not the label store; the store only ever copies
// bytes in and out of them (spec.md §3 Runnable specification).
type Spec struct {
	Runnable Runnable

	InputLabelIDs []label.ID
	InputBuffers  [][]byte

	OutputLabelIDs []label.ID
	OutputBuffers  [][]byte
}

// readInputs copies each declared input label's current value into the
// runnable's input staging buffer, in order ("read phase").
func (s *Spec) readInputs(store *label.Store) error {
	for i, id := range s.InputLabelIDs {
		if err := store.Read(id, s.InputBuffers[i]); err != nil {
			return err
		}
	}
	return nil
}

// writeOutputs publishes each output staging buffer to its declared
// label, in order ("write phase").
func (s *Spec) writeOutputs(store *label.Store) error {
	for i, id := range s.OutputLabelIDs {
		if err := store.Write(id, s.OutputBuffers[i]); err != nil {
			return err
		}
	}
	return nil
}
