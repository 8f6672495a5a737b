package channel

import "time"

// transport is the kernel-visible (or, off-Linux, in-process) object a
// Channel's Create/Connect bind to. Implementations preserve message
// boundaries: one Send call is delivered as exactly one Receive call's
// payload, in order, never split or merged.
//
// A nil deadline (zero time.Time) means block indefinitely; a deadline
// in the past means "return WouldBlock immediately if not ready",
// implementing the non-blocking mode spec.md §4.3 describes.
type transport interface {
	// send enqueues msg as a single atomic unit. Returns ErrWouldBlock if
	// the queue is full and deadline has already passed.
	send(msg []byte, deadline time.Time) error

	// receive blocks (subject to deadline) until a whole message is
	// available, returning its bytes. Returns ErrWouldBlock on timeout.
	receive(deadline time.Time) ([]byte, error)

	// close releases the caller's endpoint. unlink additionally removes
	// the kernel-visible object; only the server side does this.
	close(unlink bool) error
}

// transportFactory creates the concrete transport for a channel name.
// Swapped out in tests for the in-process loopback transport so unit
// tests do not depend on POSIX message queue support being present.
type transportFactory interface {
	create(name string, maxPayload, queueDepth int) (transport, error)
	connect(name string, maxPayload int) (transport, error)
}
