package steps

import (
	"context"
	"fmt"

	"pysetup/internal/runner"
	"pysetup/internal/workflow"
)

// VerifyOrInstallRuntime succeeds immediately when an interpreter is found.
// Otherwise it installs one through the package manager, bootstrapping the
// package manager first when the probe command fails and the user agrees.
type VerifyOrInstallRuntime struct {
	Host
	Locator          Locator
	Version          string
	InstallPath      string
	AlreadyInstalled bool

	ProbeCommand     runner.CommandSpec
	BootstrapCommand runner.CommandSpec
	InstallCommand   runner.CommandSpec
}

func (VerifyOrInstallRuntime) Def() workflow.StepDef { return definition(workflow.StepVerifyRuntime) }

func (s VerifyOrInstallRuntime) Run(ctx context.Context, r workflow.Reporter) workflow.Outcome {
	r.Progress(0)
	r.Log("Checking for an existing Python installation...")
	if rt, ok := s.Locator.Find(ctx, s.InstallPath); ok {
		r.Logf("Python found: %s", rt)
		r.Progress(1)
		return workflow.Success()
	}

	if s.AlreadyInstalled {
		r.Log("WARNING: Python is marked as already installed but no working interpreter was found")
		return workflow.Fail(fmt.Errorf("%w: marked as already installed", ErrRuntimeMissing))
	}
	if s.InstallCommand.Name == "" {
		return precondition(r, "no install command configured")
	}
	if s.Version == "" {
		return precondition(r, "no Python version selected")
	}

	r.Logf("Python %s not found. Installing...", s.Version)
	if out, ok := s.ensurePackageManager(ctx, r); !ok {
		return out
	}

	r.Progress(0.5)
	r.Logf("Running: %s", s.InstallCommand)
	res := s.Runner.Stream(ctx, s.InstallCommand, relay(r))
	if !res.OK() {
		out := commandFailure(r, fmt.Sprintf("Python %s installation failed", s.Version), s.InstallCommand, res)
		// The install command also fails when the formula is already present.
		if rt, ok := s.Locator.Find(ctx, s.InstallPath); ok {
			r.Logf("WARNING: install reported a failure but Python is available: %s", rt)
			r.Progress(1)
			return workflow.Success()
		}
		return out
	}

	r.Progress(0.9)
	r.Log("Verifying installation...")
	rt, ok := s.Locator.Find(ctx, s.InstallPath)
	if !ok {
		r.Log("ERROR: Python was installed but no working interpreter was found")
		return workflow.Fail(fmt.Errorf("%w: after install", ErrRuntimeMissing))
	}
	r.Logf("Python version: %s", rt)
	r.Progress(1)
	return workflow.Success()
}

// ensurePackageManager implements one bootstrap policy: a failed bootstrap
// is tolerated when the probe succeeds afterwards, otherwise the step fails.
func (s VerifyOrInstallRuntime) ensurePackageManager(ctx context.Context, r workflow.Reporter) (workflow.Outcome, bool) {
	if s.ProbeCommand.Name == "" {
		return workflow.Outcome{}, true
	}
	r.Log("Checking for the package manager...")
	if s.Runner.Run(ctx, s.ProbeCommand).OK() {
		return workflow.Outcome{}, true
	}

	r.Log("Package manager not found.")
	if s.BootstrapCommand.Name == "" {
		return precondition(r, "package manager unavailable and no bootstrap command configured"), false
	}
	if !r.Confirm(ctx, fmt.Sprintf("The package manager is not installed. Install it now?\n\nThis will run:\n%s", s.BootstrapCommand)) {
		r.Log("Python installation cancelled.")
		return workflow.Fail(fmt.Errorf("package manager bootstrap: %w", ErrUserDeclined)), false
	}

	r.Progress(0.2)
	r.Log("Installing the package manager. This may take a few minutes...")
	boot := s.Runner.Stream(ctx, s.BootstrapCommand, relay(r))

	if !s.Runner.Run(ctx, s.ProbeCommand).OK() {
		if boot.OK() {
			r.Log("ERROR: package manager still unavailable after bootstrap")
			return workflow.Failf(nil, "package manager still unavailable after bootstrap"), false
		}
		return commandFailure(r, "Failed to install the package manager", s.BootstrapCommand, boot), false
	}
	if !boot.OK() {
		r.Logf("WARNING: bootstrap exited with %d but the package manager is available", boot.ExitCode)
	} else {
		r.Log("Package manager installed successfully")
	}
	return workflow.Outcome{}, true
}
