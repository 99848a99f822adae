package modem

import (
	"context"

	"github.com/soracom/connectivity-benchmark/internal/at"
	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

// SIMRecord is one elementary file erased by the SIM cache clear.
type SIMRecord struct {
	Name    string
	Command string
}

// SIMRecords lists the erase writes in the order they are issued.
var SIMRecords = []SIMRecord{
	{Name: "EF_PSLOCI", Command: at.CmdClearPSLOCI},
	{Name: "EF_LOCI", Command: at.CmdClearLOCI},
	{Name: "EF_FPLMN", Command: at.CmdClearFPLMN},
	{Name: "EF_Keys", Command: at.CmdClearKeys},
	{Name: "EF_KeysPS", Command: at.CmdClearKeysPS},
}

var netParRecord = SIMRecord{Name: "EF_NetPar", Command: at.CmdClearNetPar}

func (m *Modem) simRecords() []SIMRecord {
	if !m.config.ClearNetPar {
		return SIMRecords
	}
	return append(append([]SIMRecord(nil), SIMRecords...), netParRecord)
}

// ClearSIMCache erases the cached location, forbidden network and key
// records. It stops at the first rejected write and reports failure; the
// records written before it stay erased.
func (m *Modem) ClearSIMCache(ctx context.Context) (bool, error) {
	for i, rec := range m.simRecords() {
		ok, err := m.expectOK(ctx, rec.Command)
		if err != nil {
			return false, err
		}
		if !ok {
			logger.Log.Warnf("[%s] SIM record %s rejected (write %d), skipping the rest", m.config.Name, rec.Name, i+1)
			return false, nil
		}
		logger.Log.Debugf("[%s] SIM record %s cleared", m.config.Name, rec.Name)
	}
	return true, nil
}

// ClearModemCache restores factory defaults with AT&F. On success the
// modem drops its command interpreter, so the channel is marked stale and
// the caller must Reopen before issuing anything else.
func (m *Modem) ClearModemCache(ctx context.Context) (bool, error) {
	ok, err := m.expectOK(ctx, at.CmdFactoryReset)
	if err != nil {
		return false, err
	}
	if ok {
		m.stale = true
	}
	return ok, nil
}
