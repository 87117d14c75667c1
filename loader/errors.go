package loader

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when Run is called while another run of the same
// Sequencer is in progress.
var ErrBusy = errors.New("sequencer is already running")

// UploadFailedError indicates that one chunk was not accepted within the
// retry budget. No later chunk of the image was sent.
type UploadFailedError struct {
	// Image names the image being uploaded
	Image string

	// Offset is the chunk offset within the padded image
	Offset int

	// Address is the device address of the chunk
	Address uint32

	// Attempts is how many times the chunk was sent
	Attempts int

	// Err is the failure of the last attempt
	Err error
}

func (e *UploadFailedError) Error() string {
	msg := fmt.Sprintf("upload %s failed at offset %d (0x%08x) after %d attempts",
		e.Image, e.Offset, e.Address, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UploadFailedError) Unwrap() error {
	return e.Err
}

// Step identifies one stage of the install sequence.
type Step string

// Steps, in execution order.
const (
	StepLoad       Step = "load"
	StepResolve    Step = "resolve"
	StepDisable    Step = "disable"
	StepQuiesce    Step = "quiesce"
	StepUploadInst Step = "upload instructions"
	StepUploadData Step = "upload data"
	StepInstall    Step = "install"
)

// SequenceError reports the step at which a run stopped. Steps after it
// did not execute.
type SequenceError struct {
	Step Step
	Err  error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step a run stopped at, or "" if err is not a
// SequenceError.
func FailedStep(err error) Step {
	var seqErr *SequenceError
	if errors.As(err, &seqErr) {
		return seqErr.Step
	}
	return ""
}
