package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestUploadFailedError(t *testing.T) {
	err := &UploadFailedError{
		Image:    "instructions",
		Offset:   448,
		Address:  0x11C0,
		Attempts: 11,
		Err:      errors.New("pipe error"),
	}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "instructions") {
		t.Errorf("error message should contain image name, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "offset 448") {
		t.Errorf("error message should contain offset, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "0x000011c0") {
		t.Errorf("error message should contain address, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "11 attempts") {
		t.Errorf("error message should contain attempt count, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "pipe error") {
		t.Errorf("error message should contain cause, got: %s", errMsg)
	}
}

func TestSequenceError(t *testing.T) {
	cause := &UploadFailedError{Image: "data", Offset: 0, Attempts: 11}
	err := &SequenceError{Step: StepUploadData, Err: cause}

	if !strings.HasPrefix(err.Error(), "upload data: ") {
		t.Errorf("error message should start with the step, got: %s", err)
	}

	var target *UploadFailedError
	if !errors.As(err, &target) || target != cause {
		t.Error("errors.As did not reach the wrapped UploadFailedError")
	}

	if FailedStep(err) != StepUploadData {
		t.Errorf("FailedStep() = %q, want %q", FailedStep(err), StepUploadData)
	}

	if FailedStep(errors.New("plain")) != "" {
		t.Error("FailedStep() of a plain error should be empty")
	}
}

func TestErrorTypes(t *testing.T) {
	var _ error = &UploadFailedError{}
	var _ error = &SequenceError{}
}
