//go:build linux

package channel

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mqAttr mirrors the kernel's struct mq_attr (see mq_overview(7)): four
// longs plus reserved padding, all word-sized on every Linux arch this
// runs on.
type mqAttr struct {
	Flags    int64
	Maxmsg   int64
	Msgsize  int64
	Curmsgs  int64
	reserved [4]int64
}

const mqDefaultMode = 0o600

func mqPath(name string) string {
	return "/" + name + "_mq"
}

func mqOpen(path string, oflag int, attr *mqAttr) (int, error) {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return -1, err
	}
	var attrPtr uintptr
	if attr != nil {
		attrPtr = uintptr(unsafe.Pointer(attr))
	}
	fd, _, errno := unix.Syscall6(unix.SYS_MQ_OPEN, uintptr(unsafe.Pointer(p)), uintptr(oflag), uintptr(mqDefaultMode), attrPtr, 0, 0)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

func mqUnlink(path string) error {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return err
	}
	_, _, errno := unix.Syscall(unix.SYS_MQ_UNLINK, uintptr(unsafe.Pointer(p)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func mqTimedSend(fd int, msg []byte, deadline time.Time) error {
	ts, tsPtr := deadlineToTimespec(deadline)
	var msgPtr uintptr
	if len(msg) > 0 {
		msgPtr = uintptr(unsafe.Pointer(&msg[0]))
	}
	_, _, errno := unix.Syscall6(unix.SYS_MQ_TIMEDSEND, uintptr(fd), msgPtr, uintptr(len(msg)), 0, uintptr(unsafe.Pointer(tsPtr)), 0)
	_ = ts
	if errno != 0 {
		return errno
	}
	return nil
}

func mqTimedReceive(fd int, buf []byte, deadline time.Time) (int, error) {
	ts, tsPtr := deadlineToTimespec(deadline)
	var prio uint32
	n, _, errno := unix.Syscall6(unix.SYS_MQ_TIMEDRECEIVE, uintptr(fd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), uintptr(unsafe.Pointer(&prio)), uintptr(unsafe.Pointer(tsPtr)), 0)
	_ = ts
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// deadlineToTimespec returns a nil pointer for a zero deadline (mq_open
// blocking mode is selected by omitting O_NONBLOCK, not by this
// timeout), and an absolute CLOCK_REALTIME timespec otherwise.
func deadlineToTimespec(deadline time.Time) (unix.Timespec, *unix.Timespec) {
	if deadline.IsZero() {
		return unix.Timespec{}, nil
	}
	ts := unix.NsecToTimespec(deadline.UnixNano())
	return ts, &ts
}

type mqueueEndpoint struct {
	fd         int
	path       string
	maxPayload int
}

func (e *mqueueEndpoint) send(msg []byte, deadline time.Time) error {
	err := mqTimedSend(e.fd, msg, deadline)
	if err == nil {
		return nil
	}
	if errno, ok := err.(unix.Errno); ok && (errno == unix.ETIMEDOUT || errno == unix.EAGAIN) {
		return ErrWouldBlock
	}
	return err
}

func (e *mqueueEndpoint) receive(deadline time.Time) ([]byte, error) {
	buf := make([]byte, headerSize+e.maxPayload)
	n, err := mqTimedReceive(e.fd, buf, deadline)
	if err != nil {
		if errno, ok := err.(unix.Errno); ok && (errno == unix.ETIMEDOUT || errno == unix.EAGAIN) {
			return nil, ErrWouldBlock
		}
		return nil, err
	}
	return buf[:n], nil
}

func (e *mqueueEndpoint) close(unlink bool) error {
	err := unix.Close(e.fd)
	if unlink {
		if uerr := mqUnlink(e.path); uerr != nil && err == nil {
			if errno, ok := uerr.(unix.Errno); !ok || errno != unix.ENOENT {
				err = uerr
			}
		}
	}
	return err
}

type mqueueFactory struct{}

// create opens (creating fresh) the message queue backing name, first
// unlinking any stale queue left behind by a prior crashed process —
// spec.md's create semantics are "always start from a clean queue". The
// server side only ever receives, so it opens O_RDONLY, matching
// original_source's channel_create.
func (mqueueFactory) create(name string, maxPayload, queueDepth int) (transport, error) {
	path := mqPath(name)
	_ = mqUnlink(path)

	attr := &mqAttr{
		Maxmsg:  int64(queueDepth),
		Msgsize: int64(headerSize + maxPayload),
	}
	fd, err := mqOpen(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDONLY, attr)
	if err != nil {
		if errno, ok := err.(unix.Errno); ok && errno == unix.EEXIST {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &mqueueEndpoint{fd: fd, path: path, maxPayload: maxPayload}, nil
}

// connect opens an existing message queue without creating it, failing
// with ErrNotFound if no server has created it yet. The client side only
// ever sends, so it opens O_WRONLY, matching original_source's
// channel_connect.
func (mqueueFactory) connect(name string, maxPayload int) (transport, error) {
	path := mqPath(name)
	fd, err := mqOpen(path, unix.O_WRONLY, nil)
	if err != nil {
		if errno, ok := err.(unix.Errno); ok && errno == unix.ENOENT {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mqueueEndpoint{fd: fd, path: path, maxPayload: maxPayload}, nil
}
