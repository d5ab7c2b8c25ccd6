package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"pysetup/internal/logsink"
)

type fakeStep struct {
	id    StepID
	fail  bool
	panic bool
	calls int
	run   func(ctx context.Context, r Reporter) Outcome
}

func (f *fakeStep) Def() StepDef {
	def, ok := LookupStep(f.id)
	if !ok {
		return StepDef{ID: f.id, Label: string(f.id)}
	}
	return def
}

func (f *fakeStep) Run(ctx context.Context, r Reporter) Outcome {
	f.calls++
	if f.run != nil {
		return f.run(ctx, r)
	}
	if f.panic {
		panic("boom")
	}
	if f.fail {
		r.Log("ERROR: fake failure")
		return Fail(errors.New("fake failure"))
	}
	r.Progress(1)
	return Success()
}

func fivePlan() []*fakeStep {
	var out []*fakeStep
	for _, def := range SetupStepDefinitions() {
		out = append(out, &fakeStep{id: def.ID})
	}
	return out
}

func asPlan(steps []*fakeStep) []Runnable {
	plan := make([]Runnable, len(steps))
	for i, s := range steps {
		plan[i] = s
	}
	return plan
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []int
	finished []int
	progress []float64
}

func (o *recordingObserver) StepStarted(index int, _ StepDef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, index)
}

func (o *recordingObserver) StepProgress(_ int, fraction float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, fraction)
}

func (o *recordingObserver) StepFinished(index int, _ StepDef, _ Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, index)
}

func TestSequencer_StopsAtFirstFailure(t *testing.T) {
	for k := 0; k < 5; k++ {
		steps := fivePlan()
		steps[k].fail = true
		sink := logsink.New()
		seq := &Sequencer{Log: sink}

		rep := seq.Run(context.Background(), asPlan(steps))
		if rep.Status.State != RunFailed || rep.Status.Index != k {
			t.Fatalf("k=%d: status %+v", k, rep.Status)
		}
		for i, s := range steps {
			want := 0
			if i <= k {
				want = 1
			}
			if s.calls != want {
				t.Fatalf("k=%d: step %d called %d times, want %d", k, i, s.calls, want)
			}
		}
		if len(rep.Results) != k+1 {
			t.Fatalf("k=%d: results %d", k, len(rep.Results))
		}
		lines := sink.Lines()
		last := lines[len(lines)-1]
		if !strings.Contains(last, "failed: fake failure") {
			t.Fatalf("k=%d: last log line %q", k, last)
		}
		if seq.Status() != rep.Status {
			t.Fatalf("k=%d: Status() %+v != report %+v", k, seq.Status(), rep.Status)
		}
	}
}

func TestSequencer_CompletesAndReportsProgress(t *testing.T) {
	obs := &recordingObserver{}
	seq := &Sequencer{Log: logsink.New(), Observer: obs}
	if st := seq.Status(); st.State != RunIdle || st.Index != -1 {
		t.Fatalf("initial status %+v", st)
	}

	rep := seq.Run(context.Background(), asPlan(fivePlan()))
	if !rep.OK() || rep.Status.Index != -1 {
		t.Fatalf("expected completed run, got %+v", rep.Status)
	}
	if len(obs.started) != 5 || len(obs.finished) != 5 || len(obs.progress) != 5 {
		t.Fatalf("observer: %+v", obs)
	}
	for i := range obs.started {
		if obs.started[i] != i || obs.finished[i] != i {
			t.Fatalf("observer order: %+v", obs)
		}
	}
}

func TestSequencer_RecoversPanics(t *testing.T) {
	steps := fivePlan()
	steps[1].panic = true
	sink := logsink.New()
	rep := (&Sequencer{Log: sink}).Run(context.Background(), asPlan(steps))
	if rep.Status.State != RunFailed || rep.Status.Index != 1 {
		t.Fatalf("status %+v", rep.Status)
	}
	if steps[2].calls != 0 {
		t.Fatalf("step after panic must not run")
	}
	if rep.Results[1].Outcome.Reason != "internal error" {
		t.Fatalf("reason: %q", rep.Results[1].Outcome.Reason)
	}
	if sink.Len() == 0 {
		t.Fatalf("expected a failure log line")
	}
}

func TestSequencer_CancelledContextStopsBeforeNextStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	steps := fivePlan()
	steps[0].run = func(context.Context, Reporter) Outcome {
		cancel()
		return Success()
	}

	rep := (&Sequencer{Log: logsink.New()}).Run(ctx, asPlan(steps))
	if rep.Status.State != RunFailed || rep.Status.Index != 1 {
		t.Fatalf("status %+v", rep.Status)
	}
	if steps[1].calls != 0 {
		t.Fatalf("step 2 must not run after cancellation")
	}
	if !errors.Is(rep.Results[1].Outcome.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", rep.Results[1].Outcome.Err)
	}
}

func TestSequencer_FreshRunAfterFailure(t *testing.T) {
	seq := &Sequencer{Log: logsink.New()}
	steps := fivePlan()
	steps[2].fail = true
	if rep := seq.Run(context.Background(), asPlan(steps)); rep.OK() {
		t.Fatalf("expected failure")
	}

	steps[2].fail = false
	rep := seq.Run(context.Background(), asPlan(steps))
	if !rep.OK() {
		t.Fatalf("second run should complete: %+v", rep.Status)
	}
	if steps[0].calls != 2 || steps[4].calls != 1 {
		t.Fatalf("unexpected call counts: first=%d last=%d", steps[0].calls, steps[4].calls)
	}
}

func TestSequencer_EmptyPlanCompletes(t *testing.T) {
	rep := (&Sequencer{}).Run(context.Background(), nil)
	if !rep.OK() {
		t.Fatalf("empty plan: %+v", rep.Status)
	}
}

func TestReporterConfirm(t *testing.T) {
	var asked string
	seq := &Sequencer{Confirm: func(_ context.Context, q string) bool {
		asked = q
		return true
	}}
	r := &stepReporter{seq: seq}
	if !r.Confirm(context.Background(), "Install Homebrew?") || asked != "Install Homebrew?" {
		t.Fatalf("confirm not forwarded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r.Confirm(ctx, "again?") {
		t.Fatalf("cancelled context must decline")
	}
	if (&stepReporter{seq: &Sequencer{}}).Confirm(context.Background(), "x") {
		t.Fatalf("missing confirm func must decline")
	}
}

func TestOverall(t *testing.T) {
	testCases := []struct {
		index, total int
		fraction     float64
		want         float64
	}{
		{0, 5, 0, 0},
		{0, 5, 1, 0.2},
		{2, 4, 0.5, 0.625},
		{4, 4, 3, 1},
		{0, 0, 0.5, 0},
	}
	for _, tc := range testCases {
		if got := Overall(tc.index, tc.total, tc.fraction); got != tc.want {
			t.Fatalf("Overall(%d,%d,%v) = %v want %v", tc.index, tc.total, tc.fraction, got, tc.want)
		}
	}
}

func TestFailf(t *testing.T) {
	cause := errors.New("exit 1")
	out := Failf(cause, "clone %s", "demo")
	if out.OK || out.Reason != "clone demo" || !errors.Is(out.Err, cause) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out := Failf(nil, "plain"); out.Err == nil || out.Reason != "plain" {
		t.Fatalf("nil cause: %+v", out)
	}
}
