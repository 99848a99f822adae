package at

import (
	"context"
	"strings"
)

// Result is the outcome of one command. Payload is the last data line seen
// before the terminal marker; commands that echo the request before the
// data line therefore still yield the data.
type Result struct {
	OK      bool
	Payload string
}

// LineConn is the part of transport.Conn the codec needs.
type LineConn interface {
	Write(ctx context.Context, p []byte) error
	ReadLines(ctx context.Context, stop func(line string) bool) ([]string, error)
}

type Codec struct {
	conn LineConn
}

func NewCodec(conn LineConn) *Codec {
	return &Codec{conn: conn}
}

// Execute sends cmd and classifies the reply. A protocol-level failure
// (ERROR, or no marker before the read window closed) is reported through
// Result.OK; the error return is reserved for transport faults and
// cancellation.
func (c *Codec) Execute(ctx context.Context, cmd string, capture bool) (Result, error) {
	if err := c.conn.Write(ctx, []byte(cmd+CRLF)); err != nil {
		return Result{}, err
	}
	lines, err := c.conn.ReadLines(ctx, IsFinal)
	if err != nil {
		return Result{}, err
	}
	return Decode(lines, capture), nil
}

// Decode scans lines up to the first terminal marker.
func Decode(lines []string, capture bool) Result {
	var res Result
	for _, line := range lines {
		switch Classify(line) {
		case TypeBlank:
			continue
		case TypeOK:
			res.OK = true
			return res
		case TypeError:
			return res
		case TypeData:
			if capture {
				res.Payload = line
			}
		}
	}
	return res
}

// Trimmed returns the payload with surrounding whitespace removed.
func (r Result) Trimmed() string {
	return strings.TrimSpace(r.Payload)
}
