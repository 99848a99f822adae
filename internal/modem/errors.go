package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrStaleChannel is returned for any command issued after a factory
	// reset and before Reopen. The modem restarts its command interpreter on
	// AT&F, so the old handle must not be used again.
	ErrStaleChannel = errors.New("channel is stale after factory reset, reopen required")

	// ErrAlreadyClosed is returned when the Modem is used after Close.
	ErrAlreadyClosed = errors.New("modem already closed")
)
