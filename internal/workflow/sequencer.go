package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pysetup/internal/logsink"
)

type RunState int

const (
	RunIdle RunState = iota
	RunRunning
	RunCompleted
	RunFailed
)

func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Status is a point in the run state machine. Index is the running step for
// RunRunning and the failed step for RunFailed; -1 otherwise.
type Status struct {
	State RunState
	Index int
}

type StepResult struct {
	Def      StepDef
	Outcome  Outcome
	Started  time.Time
	Finished time.Time
}

type Report struct {
	Status   Status
	Results  []StepResult
	Started  time.Time
	Finished time.Time
}

func (r Report) OK() bool { return r.Status.State == RunCompleted }

// Observer is notified from the goroutine running the sequence. Progress may
// also arrive from a command's output goroutines.
type Observer interface {
	StepStarted(index int, def StepDef)
	StepProgress(index int, fraction float64)
	StepFinished(index int, def StepDef, out Outcome)
}

type ConfirmFunc func(ctx context.Context, question string) bool

// Sequencer runs a plan in order and stops at the first failing step.
// A Sequencer may be reused; each Run starts from RunIdle.
type Sequencer struct {
	Log      *logsink.Sink
	Confirm  ConfirmFunc
	Observer Observer

	mu     sync.Mutex
	status Status
}

func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == (Status{}) {
		return Status{State: RunIdle, Index: -1}
	}
	return s.status
}

func (s *Sequencer) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Sequencer) Run(ctx context.Context, plan []Runnable) Report {
	s.setStatus(Status{State: RunIdle, Index: -1})
	rep := Report{Started: time.Now()}

	for i, step := range plan {
		def := step.Def()
		s.setStatus(Status{State: RunRunning, Index: i})
		if s.Observer != nil {
			s.Observer.StepStarted(i, def)
		}

		res := StepResult{Def: def, Started: time.Now()}
		if err := ctx.Err(); err != nil {
			res.Outcome = Failf(err, "run cancelled")
		} else {
			res.Outcome = s.runStep(ctx, i, step)
		}
		res.Finished = time.Now()
		rep.Results = append(rep.Results, res)

		if s.Observer != nil {
			s.Observer.StepFinished(i, def, res.Outcome)
		}
		log.Debug().Str("step", string(def.ID)).Bool("ok", res.Outcome.OK).Dur("took", res.Finished.Sub(res.Started)).Msg("step finished")

		if !res.Outcome.OK {
			s.logf("Step %d (%s) failed: %s", i+1, def.Label, res.Outcome.Reason)
			rep.Status = Status{State: RunFailed, Index: i}
			s.setStatus(rep.Status)
			rep.Finished = time.Now()
			return rep
		}
	}

	rep.Status = Status{State: RunCompleted, Index: -1}
	s.setStatus(rep.Status)
	rep.Finished = time.Now()
	return rep
}

func (s *Sequencer) runStep(ctx context.Context, index int, step Runnable) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("step", string(step.Def().ID)).Msg("step panicked")
			out = Failf(fmt.Errorf("%v", p), "internal error")
		}
	}()
	out = step.Run(ctx, &stepReporter{seq: s, index: index})
	if !out.OK && out.Reason == "" {
		out.Reason = "step failed"
	}
	return out
}

func (s *Sequencer) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Appendf(format, args...)
	}
}

type stepReporter struct {
	seq   *Sequencer
	index int
}

func (r *stepReporter) Log(msg string) {
	if r.seq.Log != nil {
		r.seq.Log.Append(msg)
	}
}

func (r *stepReporter) Logf(format string, args ...any) {
	r.seq.logf(format, args...)
}

func (r *stepReporter) Progress(fraction float64) {
	if r.seq.Observer == nil {
		return
	}
	r.seq.Observer.StepProgress(r.index, clampFraction(fraction))
}

func (r *stepReporter) Confirm(ctx context.Context, question string) bool {
	if r.seq.Confirm == nil || ctx.Err() != nil {
		return false
	}
	return r.seq.Confirm(ctx, question)
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Overall folds a step-local fraction into the fraction of a whole plan.
func Overall(index, total int, fraction float64) float64 {
	if total <= 0 {
		return 0
	}
	return clampFraction((float64(index) + clampFraction(fraction)) / float64(total))
}
