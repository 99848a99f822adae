package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *Error via errors.Is.
	ErrTransport = errors.New("transport error")

	// ErrClosed is returned when a Conn is used after Close.
	ErrClosed = errors.New("channel closed")

	// ErrNoPort is returned by Discover when no listed port answers AT.
	ErrNoPort = errors.New("no responding modem port found")

	// ErrPortNameRequired is returned by SerialDialer without a port name.
	ErrPortNameRequired = errors.New("serial port name is required")
)

// Error is an I/O fault on the modem channel. It is always fatal for the
// benchmark; no retry happens at this layer.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrTransport
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
