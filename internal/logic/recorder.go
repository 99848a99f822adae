package logic

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/soracom/connectivity-benchmark/internal/benchmark"
	"github.com/soracom/connectivity-benchmark/internal/model"
	"github.com/soracom/connectivity-benchmark/internal/report"
	"github.com/soracom/connectivity-benchmark/internal/repository"
	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

// Recorder persists one benchmark run as it progresses and announces the
// outcome. A nil repository or notifier disables that half.
type Recorder struct {
	repo     *repository.RunRepository
	notifier *Notifier
	run      *model.Run
}

func NewRecorder(repo *repository.RunRepository, notifier *Notifier) *Recorder {
	return &Recorder{repo: repo, notifier: notifier}
}

// Start creates the run record before the modem is touched.
func (r *Recorder) Start(portName string, act string) *model.Run {
	r.run = &model.Run{
		ID:               uuid.NewString(),
		PortName:         portName,
		AccessTechnology: act,
		State:            benchmark.Idle.String(),
	}
	if r.repo != nil {
		if err := r.repo.Create(r.run); err != nil {
			logger.Log.Errorf("Failed to save run %s: %v", r.run.ID, err)
		}
	}
	return r.run
}

// Observe is a benchmark.WithObserver callback that tracks the run state.
func (r *Recorder) Observe(_, to benchmark.State) {
	if r.run == nil {
		return
	}
	r.run.State = to.String()
	if r.repo == nil || to.Terminal() {
		return
	}
	if err := r.repo.UpdateState(r.run.ID, r.run.State); err != nil {
		logger.Log.Warnf("Failed to update run %s state: %v", r.run.ID, err)
	}
}

// Finish stores the result and dispatches notifications.
func (r *Recorder) Finish(res *benchmark.Result, runErr error) *model.Run {
	if r.run == nil {
		r.Start("", res.AccessTechnology.String())
	}
	Fill(r.run, res, runErr)
	if r.repo != nil {
		if err := r.repo.Update(r.run); err != nil {
			logger.Log.Errorf("Failed to save run %s: %v", r.run.ID, err)
		} else {
			logger.Log.Infof("Run %s saved", r.run.ID)
		}
	}
	if r.notifier != nil {
		r.notifier.Dispatch(r.run)
	}
	return r.run
}

// Fill copies a benchmark result onto its persisted form.
func Fill(run *model.Run, res *benchmark.Result, runErr error) {
	run.ICCID = res.ICCID
	run.IMSI = res.IMSI
	run.SubscriberStatus = res.SubscriberStatus
	run.AccessTechnology = res.AccessTechnology.String()
	run.Manufacturer = res.Identity.Manufacturer
	run.ModemModel = res.Identity.Model
	run.Revision = res.Identity.Revision
	run.SerialNumber = res.Identity.SerialNumber
	if res.NetworkRaw != "" {
		run.Network = report.FormatOperator(res.NetworkRaw)
	}
	if res.SignalRaw != "" {
		run.Signal = report.FormatSignal(res.SignalRaw)
	}
	if res.Ticks > 0 && res.Registration.Registered() {
		run.Registration = res.Registration.String()
	}
	run.Ticks = res.Ticks
	run.Recoveries = len(res.Recoveries)
	run.ContextActivated = res.ContextActivated
	run.Online = res.Online

	run.CacheClearedAt = mark(res, benchmark.MarkCacheClearStart)
	run.RegisteredAt = mark(res, benchmark.MarkNetworkRegistered)
	run.ContextActivatedAt = mark(res, benchmark.MarkContextActivated)
	run.OnlineAt = mark(res, benchmark.MarkSessionOnline)
	if d, ok := res.RegistrationLatency(); ok {
		run.RegistrationLatency = d.Milliseconds()
	}
	if d, ok := res.OnlineLatency(); ok {
		run.OnlineLatency = d.Milliseconds()
	}

	run.State = res.FinalState.String()
	if runErr != nil {
		run.Error = runErr.Error()
		var stepErr *benchmark.StepError
		if errors.As(runErr, &stepErr) {
			run.FailedAt = stepErr.Step
		}
	}
}

func mark(res *benchmark.Result, m benchmark.Mark) *time.Time {
	t, ok := res.Timestamps.Get(m)
	if !ok {
		return nil
	}
	return &t
}
