package modem

import (
	"context"
	"fmt"

	"github.com/soracom/connectivity-benchmark/internal/at"
	"github.com/soracom/connectivity-benchmark/internal/transport"
	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

type Config struct {
	// Name labels log lines, usually the serial port path.
	Name   string
	Dialer transport.Dialer
	// APN used when defining packet data context 1.
	APN string
	// ClearNetPar appends the EF_NetPar erase to the SIM cache clear.
	ClearNetPar bool
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "modem"
	}
	if c.APN == "" {
		c.APN = "soracom.io"
	}
}

// Modem is the typed command surface of one cellular modem. It owns its
// channel exclusively and is not safe for concurrent use.
type Modem struct {
	config Config
	conn   *transport.Conn
	codec  *at.Codec
	// stale is set once AT&F succeeds; cleared by Reopen.
	stale  bool
	closed bool
}

// New dials the modem and disables command echo.
func New(ctx context.Context, config Config) (*Modem, error) {
	if config.Dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	m := &Modem{config: config}
	if err := m.open(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Modem) open(ctx context.Context) error {
	port, err := m.config.Dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.config.Name, err)
	}
	m.conn = transport.NewConn(m.config.Name, port)
	m.codec = at.NewCodec(m.conn)
	m.stale = false

	// Echo off is best effort, the codec copes with echoed commands.
	res, err := m.codec.Execute(ctx, at.CmdEchoOff, false)
	if err != nil {
		m.conn.Close()
		return fmt.Errorf("disable echo: %w", err)
	}
	if !res.OK {
		logger.Log.Warnf("[%s] ATE0 not acknowledged", m.config.Name)
	}
	return nil
}

// Reopen closes the current channel and dials a fresh one. It is required
// after ClearModemCache.
func (m *Modem) Reopen(ctx context.Context) error {
	if m.closed {
		return ErrAlreadyClosed
	}
	if err := m.conn.Close(); err != nil {
		logger.Log.Warnf("[%s] Close before reopen: %v", m.config.Name, err)
	}
	logger.Log.Debugf("[%s] Reopening channel", m.config.Name)
	return m.open(ctx)
}

func (m *Modem) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true
	return m.conn.Close()
}

func (m *Modem) Name() string {
	return m.config.Name
}

func (m *Modem) exec(ctx context.Context, cmd string, capture bool) (at.Result, error) {
	if m.closed {
		return at.Result{}, ErrAlreadyClosed
	}
	if m.stale {
		return at.Result{}, ErrStaleChannel
	}
	res, err := m.codec.Execute(ctx, cmd, capture)
	if err != nil {
		return at.Result{}, fmt.Errorf("%s: %w", cmd, err)
	}
	return res, nil
}

// query runs a capturing command and returns its trimmed payload.
func (m *Modem) query(ctx context.Context, cmd string) (string, bool, error) {
	res, err := m.exec(ctx, cmd, true)
	if err != nil || !res.OK {
		return "", false, err
	}
	return res.Trimmed(), true, nil
}

func (m *Modem) expectOK(ctx context.Context, cmd string) (bool, error) {
	res, err := m.exec(ctx, cmd, false)
	return res.OK, err
}

func (m *Modem) IMSI(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdIMSI)
}

func (m *Modem) Manufacturer(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdManufacturer)
}

func (m *Modem) Model(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdModel)
}

func (m *Modem) Revision(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdRevision)
}

func (m *Modem) SerialNumber(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdSerialNumber)
}

// SetFunctionality issues AT+CFUN. Mode 0 is low power, 1 full
// functionality; reset 1 restarts the radio stack.
func (m *Modem) SetFunctionality(ctx context.Context, mode, reset int) (bool, error) {
	return m.expectOK(ctx, at.Functionality(mode, reset))
}

// RegistrationStatus queries AT+CREG?. ok is false only when the command
// itself failed; an undecodable reply is reported as RegistrationUnknown.
func (m *Modem) RegistrationStatus(ctx context.Context) (RegistrationStatus, bool, error) {
	res, err := m.exec(ctx, at.CmdRegistration, true)
	if err != nil || !res.OK {
		return RegistrationUnknown, false, err
	}
	status, decoded := ParseRegistrationStatus(res.Payload)
	if !decoded {
		logger.Log.Debugf("[%s] Undecodable CREG payload %q", m.config.Name, res.Payload)
	}
	return status, true, nil
}

// NetworkStatus returns the raw +COPS? payload.
func (m *Modem) NetworkStatus(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdOperator)
}

// SignalQuality returns the raw +CSQ payload.
func (m *Modem) SignalQuality(ctx context.Context) (string, bool, error) {
	return m.query(ctx, at.CmdSignalQuality)
}

func (m *Modem) SetNetworkRegistrationAuto(ctx context.Context, act AccessTechnology) (bool, error) {
	return m.expectOK(ctx, at.AutoRegistration(int(act)))
}

// ActivatePacketDataContext defines context 1 and activates it. The
// activation is not sent when the definition fails.
func (m *Modem) ActivatePacketDataContext(ctx context.Context) (bool, error) {
	ok, err := m.expectOK(ctx, at.DefineContext(m.config.APN))
	if err != nil || !ok {
		return false, err
	}
	return m.expectOK(ctx, at.CmdActivateContext)
}

// PacketDataContextStatus queries AT+CGACT?; ok is false when the command
// failed or the reply could not be decoded.
func (m *Modem) PacketDataContextStatus(ctx context.Context) (active bool, ok bool, err error) {
	payload, ok, err := m.query(ctx, at.CmdContextStatus)
	if err != nil || !ok {
		return false, false, err
	}
	active, ok = ParseContextStatus(payload)
	return active, ok, nil
}
