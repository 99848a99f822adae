package transport

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

const readChunk = 256

// Conn is the line-oriented view of a Port. It is not safe for concurrent
// use; the modem facade owns it exclusively.
type Conn struct {
	name   string
	port   Port
	closed bool
}

func NewConn(name string, port Port) *Conn {
	return &Conn{name: name, port: port}
}

func (c *Conn) Name() string {
	return c.name
}

// Write discards stale bytes in both directions, then writes p.
func (c *Conn) Write(ctx context.Context, p []byte) error {
	if c.closed {
		return wrap("write", ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.port.ResetInputBuffer(); err != nil {
		return wrap("flush input", err)
	}
	if err := c.port.ResetOutputBuffer(); err != nil {
		return wrap("flush output", err)
	}
	logger.Log.Debugf("[%s] TX: %s", c.name, strings.TrimSpace(string(p)))
	if _, err := c.port.Write(p); err != nil {
		return wrap("write", err)
	}
	return nil
}

// ReadLines collects the lines the modem sends until a read times out
// without data, or until stop reports true for a line. Lines are returned
// in arrival order with CR/LF removed; a trailing partial line is included.
// stop may be nil.
func (c *Conn) ReadLines(ctx context.Context, stop func(line string) bool) ([]string, error) {
	if c.closed {
		return nil, wrap("read", ErrClosed)
	}

	var (
		lines   []string
		pending strings.Builder
		buf     = make([]byte, readChunk)
	)

	flushLine := func(raw string) bool {
		line := strings.TrimRight(raw, "\r\n")
		logger.Log.Debugf("[%s] RX: %s", c.name, line)
		lines = append(lines, line)
		return stop != nil && stop(line)
	}

	for {
		if err := ctx.Err(); err != nil {
			return lines, err
		}

		n, err := c.port.Read(buf)
		if n > 0 {
			pending.Write(buf[:n])
			data := pending.String()
			pending.Reset()
			for {
				i := strings.IndexByte(data, '\n')
				if i < 0 {
					break
				}
				if flushLine(data[:i+1]) {
					return lines, nil
				}
				data = data[i+1:]
			}
			pending.WriteString(data)
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return lines, wrap("read", err)
		}
		if n == 0 || errors.Is(err, io.EOF) {
			// Read window elapsed with nothing new.
			if pending.Len() > 0 {
				flushLine(pending.String())
			}
			return lines, nil
		}
	}
}

func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return wrap("close", c.port.Close())
}

func (c *Conn) Closed() bool {
	return c.closed
}
