package transport

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/soracom/connectivity-benchmark/pkg/logger"
	"go.bug.st/serial"
)

const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = time.Second
)

// SerialDialer opens the modem's AT port as 8-N-1 without flow control.
type SerialDialer struct {
	PortName    string
	BaudRate    int
	ReadTimeout time.Duration
}

func (d SerialDialer) mode() *serial.Mode {
	baud := d.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

func (d SerialDialer) Dial(ctx context.Context) (Port, error) {
	if d.PortName == "" {
		return nil, wrap("open", ErrPortNameRequired)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := serial.Open(d.PortName, d.mode())
	if err != nil {
		return nil, wrap("open "+d.PortName, err)
	}

	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, wrap("set read timeout", err)
	}
	return port, nil
}

// ListPorts is replaceable in tests.
var ListPorts = serial.GetPortsList

// Discover returns the name of the first port, in listing order, that
// answers a bare AT with OK. Ports in exclude are skipped.
func Discover(ctx context.Context, dial func(name string) Dialer, exclude []string) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", wrap("list ports", err)
	}

	for _, name := range ports {
		if slices.Contains(exclude, name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if probe(ctx, name, dial(name)) {
			logger.Log.Infof("Found modem AT port: %s", name)
			return name, nil
		}
	}
	return "", ErrNoPort
}

func probe(ctx context.Context, name string, d Dialer) bool {
	port, err := d.Dial(ctx)
	if err != nil {
		logger.Log.Debugf("[%s] Probe open failed: %v", name, err)
		return false
	}
	conn := NewConn(name, port)
	defer conn.Close()

	if err := conn.Write(ctx, []byte("AT\r\n")); err != nil {
		logger.Log.Debugf("[%s] Probe write failed: %v", name, err)
		return false
	}
	lines, err := conn.ReadLines(ctx, func(line string) bool {
		return strings.HasPrefix(line, "OK") || strings.HasPrefix(line, "ERROR")
	})
	if err != nil {
		logger.Log.Debugf("[%s] Probe read failed: %v", name, err)
		return false
	}
	return slices.ContainsFunc(lines, func(l string) bool { return strings.HasPrefix(l, "OK") })
}
