package pipeline

import (
	"errors"
	"fmt"
)

// ErrLaunch is returned when the browser cannot be started. It stops the run;
// the claimed item stays locked until released.
var ErrLaunch = errors.New("failed to launch browser")

// StepError records which pipeline step failed for a domain.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// stepName returns the name of the failed step, or "" when err is not a
// *StepError.
func stepName(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
