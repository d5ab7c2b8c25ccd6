// Package steps implements the setup steps run by the workflow sequencer.
// Every step talks to its host through a runner.Runner and a hostfs.FS so
// the same code prepares the local machine or a workstation over SSH.
// Paths are POSIX paths on the target host.
package steps

import (
	"fmt"
	"strings"

	"pysetup/internal/hostfs"
	"pysetup/internal/runner"
	"pysetup/internal/workflow"
)

type Host struct {
	Runner runner.Runner
	FS     hostfs.FS
}

func definition(id workflow.StepID) workflow.StepDef {
	def, ok := workflow.LookupStep(id)
	if !ok {
		panic(fmt.Sprintf("missing step definition: %q", id))
	}
	return def
}

func precondition(r workflow.Reporter, format string, args ...any) workflow.Outcome {
	msg := fmt.Sprintf(format, args...)
	r.Log("ERROR: " + msg)
	return workflow.Outcome{Reason: msg, Err: fmt.Errorf("%w: %s", ErrPrecondition, msg)}
}

// commandFailure logs a failed command with its diagnostic and builds the outcome.
func commandFailure(r workflow.Reporter, what string, spec runner.CommandSpec, res runner.Result) workflow.Outcome {
	r.Log("ERROR: " + what)
	diag := res.Diagnostic()
	if diag != "" {
		for _, line := range strings.Split(diag, "\n") {
			r.Log("  " + line)
		}
	}
	err := fmt.Errorf("%s: exit %d", spec.String(), res.ExitCode)
	if res.ExitCode == runner.LaunchFailed {
		err = fmt.Errorf("%s: could not start: %s", spec.String(), diag)
	}
	return workflow.Failf(err, "%s", what)
}

// relay logs every non-blank output line, indented.
func relay(r workflow.Reporter) runner.LineHandler {
	return func(_ runner.Stream, line string) {
		if line = strings.TrimSpace(line); line != "" {
			r.Log("  " + line)
		}
	}
}
