package steps

import (
	"context"
	"fmt"
	"path"
	"strings"

	"pysetup/internal/runner"
	"pysetup/internal/workflow"
)

// CreateEnvironment always recreates the environment from scratch.
type CreateEnvironment struct {
	Host
	Locator     Locator
	ProjectDir  string
	EnvName     string
	InstallPath string
}

func (CreateEnvironment) Def() workflow.StepDef { return definition(workflow.StepCreateEnvironment) }

func (s CreateEnvironment) EnvPath() string {
	return path.Join(s.ProjectDir, s.EnvName)
}

func (s CreateEnvironment) Run(ctx context.Context, r workflow.Reporter) workflow.Outcome {
	r.Progress(0)
	if strings.TrimSpace(s.ProjectDir) == "" || strings.TrimSpace(s.EnvName) == "" {
		return precondition(r, "project directory and environment name are required")
	}
	project, err := s.FS.Probe(ctx, s.ProjectDir)
	if err != nil {
		r.Logf("ERROR: cannot inspect %s: %v", s.ProjectDir, err)
		return workflow.Failf(err, "cannot inspect %s", s.ProjectDir)
	}
	if !project.Exists || !project.IsDir {
		return precondition(r, "project directory does not exist: %s", s.ProjectDir)
	}

	rt, ok := s.Locator.Find(ctx, s.InstallPath)
	if !ok {
		r.Log("ERROR: Could not find a Python executable. Install Python first.")
		return workflow.Fail(fmt.Errorf("%w: needed to create the environment", ErrRuntimeMissing))
	}
	r.Logf("Using Python at: %s", rt)
	r.Progress(0.25)

	envPath := s.EnvPath()
	r.Logf("Creating virtual environment at %s...", envPath)
	existing, err := s.FS.Probe(ctx, envPath)
	if err != nil {
		r.Logf("ERROR: cannot inspect %s: %v", envPath, err)
		return workflow.Failf(err, "cannot inspect %s", envPath)
	}
	if existing.Exists {
		r.Log("Removing existing virtual environment...")
		if err := s.FS.RemoveAll(ctx, envPath); err != nil {
			r.Logf("ERROR: cannot remove %s: %v", envPath, err)
			return workflow.Failf(err, "cannot remove existing environment")
		}
	}
	r.Progress(0.5)

	spec := runner.Command(rt.Path, "-m", "venv", envPath)
	res := s.Runner.Run(ctx, spec)
	if !res.OK() {
		return commandFailure(r, "Failed to create virtual environment", spec, res)
	}
	r.Log("Virtual environment created successfully.")
	r.Progress(1)
	return workflow.Success()
}
