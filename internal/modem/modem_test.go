package modem_test

import (
	"context"
	"errors"
	"testing"

	"github.com/soracom/connectivity-benchmark/internal/at"
	"github.com/soracom/connectivity-benchmark/internal/modem"
	"github.com/soracom/connectivity-benchmark/internal/transport"
	"github.com/soracom/connectivity-benchmark/internal/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPort() *transporttest.ScriptedPort {
	return transporttest.NewScriptedPort().OK(at.CmdEchoOff)
}

func newModem(t *testing.T, cfg modem.Config, ports ...*transporttest.ScriptedPort) (*modem.Modem, *transporttest.Dialer) {
	t.Helper()
	dialer := transporttest.NewDialer(ports...)
	cfg.Dialer = dialer
	m, err := modem.New(context.Background(), cfg)
	require.NoError(t, err)
	return m, dialer
}

func TestNew(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		m, err := modem.New(context.Background(), modem.Config{})
		assert.ErrorIs(t, err, modem.ErrNoDialer)
		assert.Nil(t, m)
	})

	t.Run("disables echo on open", func(t *testing.T) {
		port := newPort()
		newModem(t, modem.Config{}, port)
		assert.Equal(t, []string{"ATE0"}, port.Writes())
	})

	t.Run("dial failure is returned", func(t *testing.T) {
		_, err := modem.New(context.Background(), modem.Config{Dialer: transporttest.NewDialer()})
		assert.ErrorIs(t, err, transporttest.ErrNoMorePorts)
	})
}

func TestQueries(t *testing.T) {
	port := newPort().
		On(at.CmdIMSI, "AT+CIMI\r\n\r\n001010000000001\r\n\r\nOK\r\n").
		OK(at.CmdManufacturer, "Quectel").
		OK(at.CmdModel, "EG25").
		On(at.CmdRevision, transporttest.Reply(false)).
		OK(at.CmdSerialNumber, "867698041234567").
		OK(at.CmdOperator, `+COPS: 0,2,"44010",7`).
		OK(at.CmdSignalQuality, "+CSQ: 20,99")
	m, _ := newModem(t, modem.Config{}, port)
	ctx := context.Background()

	imsi, ok, err := m.IMSI(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "001010000000001", imsi)

	id, err := m.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, modem.Identity{
		Manufacturer: "Quectel",
		Model:        "EG25",
		SerialNumber: "867698041234567",
		IMSI:         "001010000000001",
	}, id)

	ops, ok, err := m.NetworkStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `+COPS: 0,2,"44010",7`, ops)

	csq, ok, err := m.SignalQuality(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "+CSQ: 20,99", csq)
}

func TestRegistrationStatus(t *testing.T) {
	port := newPort().On(at.CmdRegistration,
		transporttest.Reply(true, "+CREG: 0,5"),
		transporttest.Reply(true, "+CREG: bogus"),
		transporttest.Reply(false),
	)
	m, _ := newModem(t, modem.Config{}, port)
	ctx := context.Background()

	status, ok, err := m.RegistrationStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, modem.RegisteredRoaming, status)
	assert.True(t, status.Registered())

	status, ok, err = m.RegistrationStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "the command succeeded even if the payload is garbage")
	assert.Equal(t, modem.RegistrationUnknown, status)

	_, ok, err = m.RegistrationStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseRegistrationStatus(t *testing.T) {
	for stat := 0; stat <= 5; stat++ {
		got, ok := modem.ParseRegistrationStatus("+CREG: 2," + string(rune('0'+stat)) + ",\"1A2B\",\"01C3F4\",7")
		require.True(t, ok)
		assert.Equal(t, modem.RegistrationStatus(stat), got)
	}

	_, ok := modem.ParseRegistrationStatus("+CREG: 0,9")
	assert.False(t, ok)
	_, ok = modem.ParseRegistrationStatus("OK")
	assert.False(t, ok)
}

func TestActivatePacketDataContext(t *testing.T) {
	t.Run("defines then activates", func(t *testing.T) {
		port := newPort().
			OK(`AT+CGDCONT=1,"IP","soracom.io"`).
			OK(at.CmdActivateContext)
		m, _ := newModem(t, modem.Config{}, port)

		ok, err := m.ActivatePacketDataContext(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"ATE0", `AT+CGDCONT=1,"IP","soracom.io"`, "AT+CGACT=1,1"}, port.Writes())
	})

	t.Run("activation is skipped when definition fails", func(t *testing.T) {
		port := newPort().OK(at.CmdActivateContext)
		m, _ := newModem(t, modem.Config{APN: "example.apn"}, port)

		ok, err := m.ActivatePacketDataContext(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []string{"ATE0", `AT+CGDCONT=1,"IP","example.apn"`}, port.Writes())
	})

	t.Run("activation failure fails the operation", func(t *testing.T) {
		port := newPort().OK(`AT+CGDCONT=1,"IP","soracom.io"`)
		m, _ := newModem(t, modem.Config{}, port)

		ok, err := m.ActivatePacketDataContext(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPacketDataContextStatus(t *testing.T) {
	port := newPort().On(at.CmdContextStatus,
		transporttest.Reply(true, "+CGACT: 1,1"),
		transporttest.Reply(true, "+CGACT: 1,0"),
		transporttest.Reply(true, "nonsense"),
	)
	m, _ := newModem(t, modem.Config{}, port)
	ctx := context.Background()

	active, ok, err := m.PacketDataContextStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, active)

	active, ok, err = m.PacketDataContextStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, active)

	_, ok, err = m.PacketDataContextStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearSIMCache(t *testing.T) {
	all := make([]string, 0, len(modem.SIMRecords))
	for _, rec := range modem.SIMRecords {
		all = append(all, rec.Command)
	}

	t.Run("all five writes succeed", func(t *testing.T) {
		port := newPort()
		for _, cmd := range all {
			port.OK(cmd)
		}
		m, _ := newModem(t, modem.Config{}, port)

		ok, err := m.ClearSIMCache(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, append([]string{"ATE0"}, all...), port.Writes())
	})

	for k := 1; k <= len(all); k++ {
		t.Run("failure at write "+string(rune('0'+k))+" skips the rest", func(t *testing.T) {
			port := newPort()
			for i, cmd := range all {
				if i == k-1 {
					port.On(cmd, transporttest.Reply(false))
				} else {
					port.OK(cmd)
				}
			}
			m, _ := newModem(t, modem.Config{}, port)

			ok, err := m.ClearSIMCache(context.Background())
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, append([]string{"ATE0"}, all[:k]...), port.Writes())
		})
	}

	t.Run("EF_NetPar is appended when enabled", func(t *testing.T) {
		port := newPort().OK(at.CmdClearNetPar)
		for _, cmd := range all {
			port.OK(cmd)
		}
		m, _ := newModem(t, modem.Config{ClearNetPar: true}, port)

		ok, err := m.ClearSIMCache(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		writes := port.Writes()
		require.Len(t, writes, 1+len(all)+1)
		assert.Equal(t, at.CmdClearNetPar, writes[len(writes)-1])
		assert.Len(t, modem.SIMRecords, 5, "option must not modify the shared list")
	})
}

func TestClearModemCacheRequiresReopen(t *testing.T) {
	first := newPort().OK(at.CmdFactoryReset)
	second := newPort().On(at.CmdRegistration, transporttest.Reply(true, "+CREG: 0,2"))
	m, dialer := newModem(t, modem.Config{}, first, second)
	ctx := context.Background()

	ok, err := m.ClearModemCache(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = m.RegistrationStatus(ctx)
	assert.ErrorIs(t, err, modem.ErrStaleChannel)
	assert.Equal(t, []string{"ATE0", "AT&F"}, first.Writes(), "nothing is written on the stale handle")

	require.NoError(t, m.Reopen(ctx))
	assert.True(t, first.Closed())
	assert.Equal(t, 2, dialer.Dials())

	status, ok, err := m.RegistrationStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, modem.NotRegisteredSearching, status)
	assert.Equal(t, []string{"ATE0", "AT+CREG?"}, second.Writes())
	assert.Zero(t, first.StaleWrites())
}

func TestClearModemCacheFailureKeepsChannel(t *testing.T) {
	port := newPort().On(at.CmdFactoryReset, transporttest.Reply(false)).OK(at.CmdAt)
	m, _ := newModem(t, modem.Config{}, port)

	ok, err := m.ClearModemCache(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.SetFunctionality(context.Background(), 0, 0)
	assert.NotErrorIs(t, err, modem.ErrStaleChannel)
}

func TestTransportFaultPropagates(t *testing.T) {
	port := newPort()
	m, _ := newModem(t, modem.Config{}, port)
	port.WriteErr = errors.New("usb disconnect")

	_, _, err := m.IMSI(context.Background())
	assert.ErrorIs(t, err, transport.ErrTransport)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Close(), modem.ErrAlreadyClosed)
	_, _, err = m.IMSI(context.Background())
	assert.ErrorIs(t, err, modem.ErrAlreadyClosed)
}

func TestAccessTechnology(t *testing.T) {
	for in, want := range map[string]modem.AccessTechnology{"": modem.EUTRAN, "lte": modem.EUTRAN, "UMTS": modem.UMTS, "gsm": modem.GSM} {
		got, err := modem.ParseAccessTechnology(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := modem.ParseAccessTechnology("5G")
	assert.Error(t, err)
}
