package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pysetup/internal/workflow"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBeginFinishGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	start := time.UnixMilli(time.Now().UnixMilli())

	id, err := s.Begin(ctx, "local", start)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defs := workflow.SetupStepDefinitions()
	rep := workflow.Report{
		Status:   workflow.Status{State: workflow.RunFailed, Index: 1},
		Started:  start,
		Finished: start.Add(2 * time.Second),
		Results: []workflow.StepResult{
			{Def: defs[0], Outcome: workflow.Success(), Started: start, Finished: start.Add(time.Second)},
			{Def: defs[1], Outcome: workflow.Outcome{Reason: "destination already exists: /tmp/work/demo"}, Started: start.Add(time.Second), Finished: start.Add(2 * time.Second)},
		},
	}
	if err := s.Finish(ctx, id, rep); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	run, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.State != "failed" || run.StoppedAt != 1 || run.Target != "local" {
		t.Fatalf("run: %+v", run)
	}
	if !run.Started.Equal(start) || !run.Finished.Equal(start.Add(2*time.Second)) {
		t.Fatalf("times: %v %v", run.Started, run.Finished)
	}
	if len(run.Steps) != 2 || !run.Steps[0].OK || run.Steps[1].OK {
		t.Fatalf("steps: %+v", run.Steps)
	}
	if run.Steps[1].StepID != workflow.StepCloneRepository || run.Steps[1].Reason == "" {
		t.Fatalf("step 2: %+v", run.Steps[1])
	}
}

func TestRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Now()
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.Begin(ctx, "local", base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		ids = append(ids, id)
	}
	runs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if runs[0].State != "running" || !runs[0].Finished.IsZero() {
		t.Fatalf("unfinished run: %+v", runs[0])
	}
}

func TestGetAndFinishUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	err := s.Finish(ctx, "missing", workflow.Report{Status: workflow.Status{State: workflow.RunCompleted, Index: -1}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Finish: expected ErrNotFound, got %v", err)
	}
}

func TestPathRespectsXDGState(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got := Path(); got != "/tmp/state/pysetup/history.db" {
		t.Fatalf("Path: %q", got)
	}
}
