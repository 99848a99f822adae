package benchmark

import (
	"errors"
	"fmt"
)

var (
	ErrIMSIUnavailable     = errors.New("failed to retrieve the IMSI from modem")
	ErrSubscriberStatus    = errors.New("unexpected subscriber status")
	ErrSIMCacheClear       = errors.New("failed to clear SIM cache")
	ErrRegistrationQuery   = errors.New("failed to get network registration")
	ErrRegistrationTimeout = errors.New("network registration not reached within the tick budget")
	ErrRegistrationDenied  = errors.New("network registration denied")
	ErrOnlineTimeout       = errors.New("session not online within the poll budget")
)

// StepError names the step a run failed in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step string, err error) error {
	return &StepError{Step: step, Err: err}
}
