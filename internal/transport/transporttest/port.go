// Package transporttest provides an in-memory modem port that answers AT
// commands from a script. Exported for use in tests of the packages built
// on top of transport.
package transporttest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/soracom/connectivity-benchmark/internal/transport"
)

// ScriptedPort replies to each written command with the next scripted
// response for it. The last response of a script repeats. Commands without
// a script get Default, which is "ERROR\r\n" unless changed.
type ScriptedPort struct {
	mu sync.Mutex

	Default string
	// WriteErr, when set, is returned by every Write.
	WriteErr error
	// OnWrite runs after a command is recorded and before its reply is queued.
	OnWrite func(cmd string)

	scripts map[string][]string
	pending []byte
	writes  []string
	closed  bool
	// staleWrites counts writes attempted after Close.
	staleWrites int
}

func NewScriptedPort() *ScriptedPort {
	return &ScriptedPort{
		Default: "ERROR\r\n",
		scripts: make(map[string][]string),
	}
}

// On scripts the replies for cmd. cmd is matched without its CR/LF.
func (p *ScriptedPort) On(cmd string, replies ...string) *ScriptedPort {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[cmd] = append(p.scripts[cmd], replies...)
	return p
}

// OK scripts a reply of optional data lines followed by OK.
func (p *ScriptedPort) OK(cmd string, data ...string) *ScriptedPort {
	return p.On(cmd, Reply(true, data...))
}

// Reply formats data lines and a final OK or ERROR as the modem sends them.
func Reply(ok bool, data ...string) string {
	var b strings.Builder
	for _, d := range data {
		b.WriteString("\r\n" + d + "\r\n")
	}
	if ok {
		b.WriteString("\r\nOK\r\n")
	} else {
		b.WriteString("\r\nERROR\r\n")
	}
	return b.String()
}

func (p *ScriptedPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.staleWrites++
		p.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	if p.WriteErr != nil {
		err := p.WriteErr
		p.mu.Unlock()
		return 0, err
	}

	cmd := strings.TrimRight(string(b), "\r\n")
	p.writes = append(p.writes, cmd)
	hook := p.OnWrite
	p.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	reply := p.Default
	if script := p.scripts[cmd]; len(script) > 0 {
		reply = script[0]
		if len(script) > 1 {
			p.scripts[cmd] = script[1:]
		}
	}
	p.pending = append(p.pending, reply...)
	return len(b), nil
}

// Read drains queued reply bytes, then reports a read timeout as (0, nil).
func (p *ScriptedPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// Inject queues bytes as if the modem sent them unprompted.
func (p *ScriptedPort) Inject(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, s...)
}

func (p *ScriptedPort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return io.ErrClosedPipe
	}
	p.pending = nil
	return nil
}

func (p *ScriptedPort) ResetOutputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return io.ErrClosedPipe
	}
	return nil
}

func (p *ScriptedPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Writes returns the commands written so far, without CR/LF.
func (p *ScriptedPort) Writes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.writes...)
}

func (p *ScriptedPort) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *ScriptedPort) StaleWrites() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staleWrites
}

var ErrNoMorePorts = errors.New("transporttest: no more ports")

// Dialer hands out its ports in order, one per Dial.
type Dialer struct {
	mu    sync.Mutex
	ports []*ScriptedPort
	dials int
}

func NewDialer(ports ...*ScriptedPort) *Dialer {
	return &Dialer{ports: ports}
}

func (d *Dialer) Dial(ctx context.Context) (transport.Port, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dials >= len(d.ports) {
		return nil, ErrNoMorePorts
	}
	p := d.ports[d.dials]
	d.dials++
	return p, nil
}

func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}
