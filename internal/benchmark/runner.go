package benchmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soracom/connectivity-benchmark/internal/modem"
	"github.com/soracom/connectivity-benchmark/internal/soracom"
	"github.com/soracom/connectivity-benchmark/pkg/logger"
	"go.uber.org/zap"
)

// Steps reported through StepError.
const (
	StepLowPower          = "low power mode"
	StepIdentity          = "read identity"
	StepAuthenticate      = "authenticate"
	StepSubscriber        = "query subscriber"
	StepSubscriberStatus  = "subscriber status"
	StepSIMCache          = "clear SIM cache"
	StepModemCache        = "clear modem cache"
	StepReopen            = "reopen channel"
	StepFullFunctionality = "full functionality"
	StepRegistration      = "network registration"
	StepContext           = "packet data context"
	StepSessionOnline     = "session online"
)

const (
	DefaultPollInterval         = time.Second
	DefaultMaxRegistrationTicks = 600
	DefaultMaxOnlinePolls       = 600
	DefaultSearchEvery          = 15
	DefaultResetEvery           = 60
)

type Config struct {
	Credentials soracom.Credentials
	// Activate moves a "ready" subscriber to "active" before the run.
	Activate         bool
	AccessTechnology modem.AccessTechnology

	PollInterval         time.Duration
	MaxRegistrationTicks int
	MaxOnlinePolls       int
	// SearchEvery and ResetEvery are the stalled-tick recovery cadences.
	SearchEvery int
	ResetEvery  int

	LowPowerSettle     time.Duration
	ResetSettle        time.Duration
	FactoryResetSettle time.Duration
}

func (c *Config) setDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxRegistrationTicks <= 0 {
		c.MaxRegistrationTicks = DefaultMaxRegistrationTicks
	}
	if c.MaxOnlinePolls <= 0 {
		c.MaxOnlinePolls = DefaultMaxOnlinePolls
	}
	if c.SearchEvery <= 0 {
		c.SearchEvery = DefaultSearchEvery
	}
	if c.ResetEvery <= 0 {
		c.ResetEvery = DefaultResetEvery
	}
}

type Option func(*Runner)

func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(from, to State)) Option {
	return func(r *Runner) { r.observer = fn }
}

// Runner drives one benchmark run. A Runner is single use.
type Runner struct {
	device   Device
	dir      Directory
	config   Config
	clock    Clock
	observer func(from, to State)
	log      *zap.SugaredLogger

	state        State
	deviceClosed bool
	res          *Result
}

func NewRunner(device Device, dir Directory, config Config, opts ...Option) *Runner {
	config.setDefaults()
	r := &Runner{
		device: device,
		dir:    dir,
		config: config,
		clock:  RealClock,
		log:    logger.Named("benchmark"),
		state:  Idle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) State() State {
	return r.state
}

// Run executes the benchmark to completion. The returned Result is never
// nil and carries whatever was observed before a failure.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.res = &Result{AccessTechnology: r.config.AccessTechnology}
	defer r.closeDevice()

	err := r.run(ctx)
	if err != nil {
		r.transition(Failed)
		r.log.Errorf("Benchmark failed: %v", err)
	} else {
		r.transition(Done)
	}
	r.res.FinalState = r.state
	return r.res, err
}

func (r *Runner) run(ctx context.Context) error {
	r.transition(Preparing)
	if err := r.prepare(ctx); err != nil {
		return err
	}

	r.transition(AwaitingRegistration)
	status, err := r.awaitRegistration(ctx)
	if err != nil {
		return err
	}
	r.res.Registration = status
	if status == modem.RegisteredHome {
		r.transition(Home)
	} else {
		r.transition(Roaming)
	}
	r.log.Infof("Network registered: %s", status)
	r.captureNetwork(ctx)

	r.transition(AcquiringContext)
	if err := r.acquireContext(ctx); err != nil {
		return err
	}
	r.closeDevice()

	r.transition(AwaitingSessionOnline)
	return r.awaitOnline(ctx)
}

func (r *Runner) prepare(ctx context.Context) error {
	r.log.Info("Setting operation mode: low power mode")
	if err := r.setFunctionality(ctx, 0, 0); err != nil {
		return stepErr(StepLowPower, err)
	}
	if err := r.clock.Sleep(ctx, r.config.LowPowerSettle); err != nil {
		return stepErr(StepLowPower, err)
	}

	r.log.Info("Reading IMSI")
	id, err := r.device.Identity(ctx)
	if err != nil {
		return stepErr(StepIdentity, err)
	}
	r.res.Identity = id
	if id.IMSI == "" {
		return stepErr(StepIdentity, ErrIMSIUnavailable)
	}
	r.res.IMSI = id.IMSI

	r.log.Info("Querying SIM status")
	if err := r.dir.Authenticate(ctx, r.config.Credentials); err != nil {
		return stepErr(StepAuthenticate, err)
	}
	sub, err := r.dir.GetSubscriber(ctx, id.IMSI)
	if err != nil {
		return stepErr(StepSubscriber, err)
	}
	r.res.ICCID = sub.ICCID
	r.res.SubscriberStatus = sub.Status

	switch sub.Status {
	case soracom.StatusReady, soracom.StatusActive:
	default:
		return stepErr(StepSubscriberStatus, fmt.Errorf("%w: expected ready or active, was %q", ErrSubscriberStatus, sub.Status))
	}
	if sub.Status == soracom.StatusReady && r.config.Activate {
		r.log.Infof("Activating subscriber %s", id.IMSI)
		if err := r.dir.ActivateSubscriber(ctx, id.IMSI); err != nil {
			r.log.Warnf("Subscriber activation failed, continuing: %v", err)
		} else {
			r.res.SubscriberActivated = true
		}
	}

	r.log.Info("Clearing SIM cache")
	ok, err := r.device.ClearSIMCache(ctx)
	if err != nil {
		return stepErr(StepSIMCache, err)
	}
	if !ok {
		return stepErr(StepSIMCache, ErrSIMCacheClear)
	}

	r.log.Info("Clearing modem cache")
	ok, err = r.device.ClearModemCache(ctx)
	if err != nil {
		return stepErr(StepModemCache, err)
	}
	if !ok {
		r.log.Warn("Factory reset not acknowledged")
	}
	if err := r.clock.Sleep(ctx, r.config.FactoryResetSettle); err != nil {
		return stepErr(StepModemCache, err)
	}
	if err := r.device.Reopen(ctx); err != nil {
		return stepErr(StepReopen, err)
	}

	r.res.Timestamps.Record(MarkCacheClearStart, r.clock.Now())

	r.log.Info("Setting operation mode: online mode")
	if err := r.setFunctionality(ctx, 1, 1); err != nil {
		return stepErr(StepFullFunctionality, err)
	}
	if err := r.clock.Sleep(ctx, r.config.ResetSettle); err != nil {
		return stepErr(StepFullFunctionality, err)
	}
	return nil
}

// setFunctionality only fails on transport faults; a rejected CFUN is
// logged and the run carries on.
func (r *Runner) setFunctionality(ctx context.Context, mode, reset int) error {
	ok, err := r.device.SetFunctionality(ctx, mode, reset)
	if err != nil {
		return err
	}
	if !ok {
		r.log.Warnf("CFUN=%d,%d not acknowledged", mode, reset)
	}
	return nil
}

func (r *Runner) awaitRegistration(ctx context.Context) (modem.RegistrationStatus, error) {
	r.log.Info("Waiting for network registration")
	last := modem.RegistrationUnknown
	for r.res.Ticks < r.config.MaxRegistrationTicks {
		if err := r.clock.Sleep(ctx, r.config.PollInterval); err != nil {
			return last, stepErr(StepRegistration, err)
		}
		r.res.Ticks++
		tick := r.res.Ticks

		status, ok, err := r.device.RegistrationStatus(ctx)
		if err != nil {
			return last, stepErr(StepRegistration, err)
		}
		if !ok {
			return last, stepErr(StepRegistration, ErrRegistrationQuery)
		}
		last = status

		switch status {
		case modem.RegisteredHome, modem.RegisteredRoaming:
			r.res.Timestamps.Record(MarkNetworkRegistered, r.clock.Now())
			return status, nil
		case modem.NotRegisteredNotSearching:
			if err := r.recoverStalled(ctx, tick); err != nil {
				return last, stepErr(StepRegistration, err)
			}
		default:
			r.log.Debugf("Tick %d: %s", tick, status)
		}
	}

	if last == modem.RegistrationDenied {
		return last, stepErr(StepRegistration, ErrRegistrationDenied)
	}
	return last, stepErr(StepRegistration, fmt.Errorf("%w (%d ticks, last status %s)", ErrRegistrationTimeout, r.res.Ticks, last))
}

// recoverStalled applies the tick-driven escalation. The search request
// goes out before the reset when both cadences fall on the same tick.
func (r *Runner) recoverStalled(ctx context.Context, tick int) error {
	if tick%r.config.SearchEvery == 0 {
		r.log.Infof("Tick %d: not searching, requesting automatic registration (%s)", tick, r.config.AccessTechnology)
		r.res.Recoveries = append(r.res.Recoveries, Recovery{Tick: tick, Action: ActionSearch})
		ok, err := r.device.SetNetworkRegistrationAuto(ctx, r.config.AccessTechnology)
		if err != nil {
			return err
		}
		if !ok {
			r.log.Warnf("Tick %d: automatic registration request rejected", tick)
		}
	}
	if tick%r.config.ResetEvery == 0 {
		r.log.Infof("Tick %d: still not searching, resetting modem", tick)
		r.res.Recoveries = append(r.res.Recoveries, Recovery{Tick: tick, Action: ActionReset})
		if err := r.setFunctionality(ctx, 1, 1); err != nil {
			return err
		}
	}
	return nil
}

// captureNetwork reads the operator and signal quality for the report.
// Neither is required for the run to continue.
func (r *Runner) captureNetwork(ctx context.Context) {
	if payload, ok, err := r.device.NetworkStatus(ctx); err != nil {
		r.log.Warnf("Failed COPS: %v", err)
	} else if ok {
		r.res.NetworkRaw = payload
	}
	if payload, ok, err := r.device.SignalQuality(ctx); err != nil {
		r.log.Warnf("Failed CSQ: %v", err)
	} else if ok {
		r.res.SignalRaw = payload
	}
}

func (r *Runner) acquireContext(ctx context.Context) error {
	r.log.Info("Connecting to packet data")
	ok, err := r.device.ActivatePacketDataContext(ctx)
	if err != nil {
		return stepErr(StepContext, err)
	}
	if !ok {
		r.log.Warn("Packet data context activation failed, continuing")
		return nil
	}
	r.res.ContextActivated = true
	r.res.Timestamps.Record(MarkContextActivated, r.clock.Now())
	return nil
}

func (r *Runner) awaitOnline(ctx context.Context) error {
	r.log.Info("Waiting for session to come online")
	for r.res.OnlinePolls < r.config.MaxOnlinePolls {
		if err := r.clock.Sleep(ctx, r.config.PollInterval); err != nil {
			return stepErr(StepSessionOnline, err)
		}
		r.res.OnlinePolls++

		sub, err := r.dir.GetSubscriber(ctx, r.res.IMSI)
		if err != nil {
			return stepErr(StepSessionOnline, err)
		}
		if sub.Online() {
			r.res.Online = true
			r.res.Timestamps.Record(MarkSessionOnline, r.clock.Now())
			r.log.Infof("Session online after %d polls", r.res.OnlinePolls)
			return nil
		}
	}
	return stepErr(StepSessionOnline, fmt.Errorf("%w (%d polls)", ErrOnlineTimeout, r.res.OnlinePolls))
}

func (r *Runner) closeDevice() {
	if r.deviceClosed {
		return
	}
	r.deviceClosed = true
	if err := r.device.Close(); err != nil && !errors.Is(err, modem.ErrAlreadyClosed) {
		r.log.Warnf("Close modem: %v", err)
	}
}

func (r *Runner) transition(to State) {
	from := r.state
	if from == to {
		return
	}
	r.state = to
	r.log.Debugf("State %s -> %s", from, to)
	if r.observer != nil {
		r.observer(from, to)
	}
}
