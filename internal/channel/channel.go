// Package channel implements the named, framed, unidirectional message
// transport runnables use for cross-node traffic: a server creates the
// transport, one or more clients connect to it, and messages round-trip
// byte-for-byte in order with preserved boundaries.
package channel

import (
	"errors"
	"sync"
	"time"

	"github.com/edgert-io/edgert/internal/constants"
)

// Sentinel errors the root edgert package maps onto its shared Code
// taxonomy with channel-name context attached.
var (
	ErrNotFound      = errors.New("channel transport not found")
	ErrAlreadyExists = errors.New("channel already exists")
	ErrWouldBlock    = errors.New("channel operation would block")
	ErrTooLarge      = errors.New("message exceeds maximum payload size")
	ErrBroken        = errors.New("channel transport is broken")
	ErrNotReady      = errors.New("channel is not ready")
	ErrWrongRole     = errors.New("operation not permitted for this channel's role")
)

// Role distinguishes the server (transport owner) from a client
// (transport user) side of a channel.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// State is the channel's position in its create/connect → ready →
// closed/broken state machine (spec.md §4.3).
type State int

const (
	StateUninit State = iota
	StateReady
	StateBroken
	StateClosed
)

// Channel is one endpoint — server or client — of a named transport.
// A channel is owned by whichever goroutine invoked Create or Connect;
// concurrent Send/Receive from multiple goroutines on the same Channel
// is not supported, matching the one-sender/one-receiver-per-channel
// default spec.md §5 describes.
type Channel struct {
	mu         sync.Mutex
	name       string
	role       Role
	state      State
	transport  transport
	maxPayload int
	blocking   bool
}

// Name returns the channel's logical name (not the kernel-visible
// transport name it maps to).
func (c *Channel) Name() string { return c.name }

// Role reports whether this endpoint is the server or a client.
func (c *Channel) Role() Role { return c.role }

// Ready reports whether the channel currently accepts Send/Receive.
func (c *Channel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

// SetBlocking toggles whether Send/Receive block when the transport is
// full/empty. Default is blocking, per spec.md §9's resolution of the
// "blocking vs non-blocking by default" open question.
func (c *Channel) SetBlocking(blocking bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocking = blocking
}

// activeFactory is the transportFactory Create/Connect bind against. It
// defaults to the platform factory (POSIX message queues on Linux,
// in-process loopback elsewhere) and is swapped for a loopback factory
// in tests that want hermetic behavior on Linux too.
var activeFactory transportFactory = newPlatformFactory()

// Create reserves the transport under name, clearing any stale remnant,
// and returns a ready server-role Channel. Queue depth and max payload
// take the spec.md §4.3 defaults unless overridden.
func Create(name string, maxPayload, queueDepth int) (*Channel, error) {
	if maxPayload <= 0 {
		maxPayload = constants.MaxPayloadSize
	}
	if queueDepth <= 0 {
		queueDepth = constants.DefaultQueueDepth
	}
	tr, err := activeFactory.create(name, maxPayload, queueDepth)
	if err != nil {
		return nil, err
	}
	return &Channel{
		name:       name,
		role:       RoleServer,
		state:      StateReady,
		transport:  tr,
		maxPayload: maxPayload,
		blocking:   true,
	}, nil
}

// Connect attaches to an existing server-created transport named name.
// Returns ErrNotFound if no server has created it.
func Connect(name string, maxPayload int) (*Channel, error) {
	if maxPayload <= 0 {
		maxPayload = constants.MaxPayloadSize
	}
	tr, err := activeFactory.connect(name, maxPayload)
	if err != nil {
		return nil, err
	}
	return &Channel{
		name:       name,
		role:       RoleClient,
		state:      StateReady,
		transport:  tr,
		maxPayload: maxPayload,
		blocking:   true,
	}, nil
}

// Send stamps the message type and enqueues payload as a single atomic
// unit. Only a client-role Channel may Send, mirroring
// original_source's channel.c, where the server opens its queue
// O_RDONLY and only the client opens O_WRONLY: a server calling Send
// fails with ErrWrongRole rather than silently working. Fails with
// ErrTooLarge if payload exceeds the configured maximum, ErrWouldBlock
// if non-blocking and the queue is full, and ErrBroken (after marking
// the channel Broken) on any other transport failure.
func (c *Channel) Send(payload []byte) error {
	c.mu.Lock()
	role := c.role
	state := c.state
	tr := c.transport
	maxPayload := c.maxPayload
	blocking := c.blocking
	c.mu.Unlock()

	if role != RoleClient {
		return ErrWrongRole
	}
	if state != StateReady {
		return ErrNotReady
	}
	if len(payload) > maxPayload {
		return ErrTooLarge
	}

	msg := marshalHeader(header{Type: constants.ChannelMsgType, Size: uint32(len(payload))}, payload)

	deadline := time.Time{}
	if !blocking {
		deadline = time.Now()
	}

	if err := tr.send(msg, deadline); err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return ErrWouldBlock
		}
		c.markBroken()
		return ErrBroken
	}
	return nil
}

// Receive blocks (or returns ErrWouldBlock in non-blocking mode) until a
// whole message is delivered, copying at most len(buf) bytes of payload
// into buf and returning the payload length. Only a server-role Channel
// may Receive, the other half of the role asymmetry Send enforces.
// Messages whose leading type is not CHANNEL_MSG_TYPE are silently
// dropped as foreign traffic; in blocking mode the next message is
// awaited instead, while in non-blocking mode the call returns
// ErrWouldBlock after the drop, even if further messages are queued.
func (c *Channel) Receive(buf []byte) (int, error) {
	c.mu.Lock()
	role := c.role
	state := c.state
	tr := c.transport
	blocking := c.blocking
	c.mu.Unlock()

	if role != RoleServer {
		return 0, ErrWrongRole
	}
	if state != StateReady {
		return 0, ErrNotReady
	}

	for {
		deadline := time.Time{}
		if !blocking {
			deadline = time.Now()
		}

		raw, err := tr.receive(deadline)
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return 0, ErrWouldBlock
			}
			c.markBroken()
			return 0, ErrBroken
		}

		h, payload, ok := unmarshalHeader(raw)
		if !ok || h.Type != constants.ChannelMsgType {
			// Foreign or malformed traffic: drop and wait for the next one.
			if !blocking {
				return 0, ErrWouldBlock
			}
			continue
		}

		n := copy(buf, payload)
		return n, nil
	}
}

func (c *Channel) markBroken() {
	c.mu.Lock()
	c.state = StateBroken
	c.mu.Unlock()
}

// Cleanup closes the endpoints this role owns, unlinking the
// kernel-visible transport if this is the server side, and releases
// associated buffers. Idempotent: a second call is a no-op.
func (c *Channel) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	var err error
	if c.transport != nil {
		err = c.transport.close(c.role == RoleServer)
	}
	c.state = StateClosed
	return err
}
