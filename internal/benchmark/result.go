package benchmark

import (
	"time"

	"github.com/soracom/connectivity-benchmark/internal/modem"
)

// RecoveryAction is a nudge sent to a modem stuck outside registration.
type RecoveryAction string

const (
	ActionSearch RecoveryAction = "search"
	ActionReset  RecoveryAction = "reset"
)

type Recovery struct {
	Tick   int
	Action RecoveryAction
}

// Result is everything a run observed, filled in as far as the run got.
type Result struct {
	IMSI             string
	ICCID            string
	SubscriberStatus string
	// SubscriberActivated is set when the run moved the subscriber from
	// ready to active itself.
	SubscriberActivated bool
	Identity            modem.Identity
	AccessTechnology    modem.AccessTechnology

	Registration modem.RegistrationStatus
	// NetworkRaw and SignalRaw are the verbatim COPS and CSQ payloads.
	NetworkRaw       string
	SignalRaw        string
	ContextActivated bool
	Online           bool

	Timestamps  Timestamps
	Ticks       int
	OnlinePolls int
	Recoveries  []Recovery
	FinalState  State
}

// RegistrationLatency is the time from the end of the cache clear until
// the modem reported a home or roaming registration.
func (r *Result) RegistrationLatency() (time.Duration, bool) {
	return r.Timestamps.Between(MarkCacheClearStart, MarkNetworkRegistered)
}

// OnlineLatency is the time from the end of the cache clear until the
// directory reported the session online.
func (r *Result) OnlineLatency() (time.Duration, bool) {
	return r.Timestamps.Between(MarkCacheClearStart, MarkSessionOnline)
}

// Searches returns the ticks at which automatic registration was re-requested.
func (r *Result) Searches() []int {
	return r.ticksFor(ActionSearch)
}

// Resets returns the ticks at which the modem was reset.
func (r *Result) Resets() []int {
	return r.ticksFor(ActionReset)
}

func (r *Result) ticksFor(a RecoveryAction) []int {
	var ticks []int
	for _, rec := range r.Recoveries {
		if rec.Action == a {
			ticks = append(ticks, rec.Tick)
		}
	}
	return ticks
}
