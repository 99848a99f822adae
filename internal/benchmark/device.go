package benchmark

import (
	"context"

	"github.com/soracom/connectivity-benchmark/internal/modem"
)

// Device is the modem surface the run drives. *modem.Modem implements it.
type Device interface {
	SetFunctionality(ctx context.Context, mode, reset int) (bool, error)
	Identity(ctx context.Context) (modem.Identity, error)
	ClearSIMCache(ctx context.Context) (bool, error)
	ClearModemCache(ctx context.Context) (bool, error)
	Reopen(ctx context.Context) error
	RegistrationStatus(ctx context.Context) (modem.RegistrationStatus, bool, error)
	SetNetworkRegistrationAuto(ctx context.Context, act modem.AccessTechnology) (bool, error)
	NetworkStatus(ctx context.Context) (string, bool, error)
	SignalQuality(ctx context.Context) (string, bool, error)
	ActivatePacketDataContext(ctx context.Context) (bool, error)
	Close() error
}

var _ Device = (*modem.Modem)(nil)
