package workflow

import (
	"context"
	"errors"
	"fmt"
)

type StepID string

type StepDef struct {
	ID    StepID
	Label string
}

type StepState int

const (
	StepPending StepState = iota
	StepRunning
	StepDone
	StepFailed
)

func (s StepState) String() string {
	switch s {
	case StepRunning:
		return "running"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Step is the presentation record of one planned step.
type Step struct {
	ID       StepID
	Label    string
	State    StepState
	Err      string
	Progress float64
}

// Outcome is produced exactly once per step invocation.
type Outcome struct {
	OK     bool
	Reason string
	Err    error
}

func Success() Outcome { return Outcome{OK: true} }

// Fail builds a failed outcome whose reason is err's message.
func Fail(err error) Outcome {
	if err == nil {
		err = errors.New("step failed")
	}
	return Outcome{Reason: err.Error(), Err: err}
}

// Failf wraps cause with a formatted reason. cause may be nil.
func Failf(cause error, format string, args ...any) Outcome {
	reason := fmt.Sprintf(format, args...)
	if cause == nil {
		return Outcome{Reason: reason, Err: errors.New(reason)}
	}
	return Outcome{Reason: reason, Err: fmt.Errorf("%s: %w", reason, cause)}
}

// Reporter is handed to a running step. Implementations must be safe for
// concurrent use; streaming commands log from their reader goroutines.
type Reporter interface {
	Log(msg string)
	Logf(format string, args ...any)
	// Progress reports the step's own completion fraction in [0,1].
	Progress(fraction float64)
	// Confirm blocks until the user answers. A cancelled ctx counts as no.
	Confirm(ctx context.Context, question string) bool
}

// Runnable is one unit of setup work.
type Runnable interface {
	Def() StepDef
	Run(ctx context.Context, r Reporter) Outcome
}
