package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pysetup/internal/workflow"
)

func TestReportError(t *testing.T) {
	ok := workflow.Report{Status: workflow.Status{State: workflow.RunCompleted, Index: -1}}
	if err := reportError(ok); err != nil {
		t.Fatalf("completed run: %v", err)
	}

	failed := workflow.Report{
		Status: workflow.Status{State: workflow.RunFailed, Index: 1},
		Results: []workflow.StepResult{
			{Def: workflow.StepDef{ID: workflow.StepVerifyRuntime, Label: "Verify or install Python"}, Outcome: workflow.Success()},
			{Def: workflow.StepDef{ID: workflow.StepCreateEnvironment, Label: "Create environment"}, Outcome: workflow.Fail(errors.New("boom"))},
		},
	}
	err := reportError(failed)
	if err == nil || !strings.Contains(err.Error(), "step 2 (Create environment) failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{name: "unfinished", start: start, want: "-"},
		{name: "rounded", start: start, end: start.Add(1234 * time.Millisecond), want: "1.2s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.start, tt.end); got != tt.want {
				t.Fatalf("formatDuration = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadConfigAppliesTargetOverride(t *testing.T) {
	opts := &globalOptions{configPath: t.TempDir() + "/missing.toml", target: "dev@box:2222"}
	cfg, err := opts.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Remote.Target != "dev@box:2222" {
		t.Fatalf("Remote.Target = %q", cfg.Remote.Target)
	}
}
