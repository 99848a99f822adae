package transport

import (
	"context"
	"io"
)

// Port is an exclusively owned byte channel to the modem's AT interface.
//
// go.bug.st/serial.Port satisfies it. Read must return (0, nil) or io.EOF
// once the per-read timeout elapses without data; that is how Conn knows
// the modem has nothing more to say.
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

// Dialer opens a Port. It is kept by the modem for the whole benchmark
// because the channel has to be reopened after a factory reset.
type Dialer interface {
	Dial(ctx context.Context) (Port, error)
}

// DialerFunc adapts a plain function to Dialer.
type DialerFunc func(ctx context.Context) (Port, error)

func (f DialerFunc) Dial(ctx context.Context) (Port, error) {
	return f(ctx)
}
