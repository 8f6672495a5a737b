// Package edgert is the runtime core of a distributed edge-control
// platform for periodic, priority-driven real-time workloads: a
// fixed-priority periodic task engine, a label store for intra-node
// shared variables, and a framed channel transport for inter-node
// traffic. See the internal task, label and channel packages for the
// three subsystems; this file holds the error taxonomy shared across
// all of them, and engine.go holds the Engine that wires them together.
package edgert

import (
	"errors"
	"fmt"
	"syscall"
)

// Code is a high-level error category, surfaced to callers independent
// of the underlying errno or wrapped error. It implements error directly
// so call sites can compare against e.g. ErrNotFound with errors.Is.
type Code string

func (c Code) Error() string { return string(c) }

const (
	CodeAlreadyExists     Code = "already exists"
	CodeNotFound          Code = "not found"
	CodeSizeMismatch      Code = "size mismatch"
	CodePermissionDenied  Code = "permission denied"
	CodeWouldBlock        Code = "would block"
	CodeTooLarge          Code = "too large"
	CodeBrokenChannel     Code = "broken channel"
	CodeDeadlineMiss      Code = "deadline miss"
	CodeInvalidParameters Code = "invalid parameters"
	CodeIOError           Code = "I/O error"
	CodeTimeout           Code = "timeout"
)

// Sentinel errors for the error kinds spec.md §7 requires every caller
// be able to test against with errors.Is, regardless of which subsystem
// raised them.
var (
	ErrAlreadyExists     error = CodeAlreadyExists
	ErrNotFound          error = CodeNotFound
	ErrSizeMismatch      error = CodeSizeMismatch
	ErrPermissionDenied  error = CodePermissionDenied
	ErrWouldBlock        error = CodeWouldBlock
	ErrTooLarge          error = CodeTooLarge
	ErrBrokenChannel     error = CodeBrokenChannel
	ErrDeadlineMiss      error = CodeDeadlineMiss
	ErrInvalidParameters error = CodeInvalidParameters
)

// Error is a structured edgert error carrying the operation, the
// thread/label/channel it concerns, a high-level Code, and optionally a
// kernel errno and a wrapped cause.
type Error struct {
	Op          string // operation that failed, e.g. "label.Read", "channel.Send"
	ThreadName  string // thread descriptor name, "" if not applicable
	LabelName   string // label name, "" if not applicable
	ChannelName string // channel name, "" if not applicable
	Code        Code
	Errno       syscall.Errno // 0 if not applicable
	Msg         string
	Inner       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var ctx string
	switch {
	case e.ThreadName != "":
		ctx = fmt.Sprintf(" thread=%s", e.ThreadName)
	case e.LabelName != "":
		ctx = fmt.Sprintf(" label=%s", e.LabelName)
	case e.ChannelName != "":
		ctx = fmt.Sprintf(" channel=%s", e.ChannelName)
	}
	if e.Errno != 0 {
		ctx += fmt.Sprintf(" errno=%d", e.Errno)
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if e.Op != "" {
		return fmt.Sprintf("edgert: %s: %s%s", e.Op, msg, ctx)
	}
	return fmt.Sprintf("edgert: %s%s", msg, ctx)
}

// Unwrap returns the wrapped cause, and otherwise lets errors.Is match
// against the bare Code sentinels above.
func (e *Error) Unwrap() error {
	if e.Inner != nil {
		return e.Inner
	}
	return e.Code
}

// Is lets an *Error compare equal to another *Error with the same Code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// NewError creates a structured error with no thread/label/channel context.
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewThreadError creates a structured error scoped to a thread.
func NewThreadError(op, threadName string, code Code, msg string) *Error {
	return &Error{Op: op, ThreadName: threadName, Code: code, Msg: msg}
}

// NewLabelError creates a structured error scoped to a label.
func NewLabelError(op, labelName string, code Code, msg string) *Error {
	return &Error{Op: op, LabelName: labelName, Code: code, Msg: msg}
}

// NewChannelError creates a structured error scoped to a channel.
func NewChannelError(op, channelName string, code Code, msg string) *Error {
	return &Error{Op: op, ChannelName: channelName, Code: code, Msg: msg}
}

// NewErrorWithErrno creates a structured error carrying a kernel errno.
func NewErrorWithErrno(op string, code Code, errno syscall.Errno) *Error {
	return &Error{Op: op, Code: code, Errno: errno, Msg: errno.Error()}
}

// WrapError wraps an arbitrary error with edgert context, mapping common
// syscall errnos onto the Code taxonomy.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if ue, ok := inner.(*Error); ok {
		return &Error{
			Op:          op,
			ThreadName:  ue.ThreadName,
			LabelName:   ue.LabelName,
			ChannelName: ue.ChannelName,
			Code:        ue.Code,
			Errno:       ue.Errno,
			Msg:         ue.Msg,
			Inner:       ue.Inner,
		}
	}

	if errno, ok := inner.(syscall.Errno); ok {
		return &Error{Op: op, Code: mapErrnoToCode(errno), Errno: errno, Msg: errno.Error(), Inner: inner}
	}

	return &Error{Op: op, Code: CodeIOError, Msg: inner.Error(), Inner: inner}
}

// mapErrnoToCode maps a kernel errno to an edgert error category.
func mapErrnoToCode(errno syscall.Errno) Code {
	switch errno {
	case syscall.ENOENT:
		return CodeNotFound
	case syscall.EEXIST:
		return CodeAlreadyExists
	case syscall.EINVAL, syscall.E2BIG:
		return CodeInvalidParameters
	case syscall.EPERM, syscall.EACCES:
		return CodePermissionDenied
	case syscall.EAGAIN:
		return CodeWouldBlock
	case syscall.ETIMEDOUT:
		return CodeTimeout
	default:
		return CodeIOError
	}
}

// IsCode reports whether err is (or wraps) an *Error with the given Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return errors.Is(err, code)
}

// IsErrno reports whether err is (or wraps) an *Error carrying the given errno.
func IsErrno(err error, errno syscall.Errno) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Errno == errno
	}
	return false
}
