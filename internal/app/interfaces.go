package app

import (
	"context"

	"pysetup/internal/config"
	"pysetup/internal/logsink"
	"pysetup/internal/workflow"
)

type RunRequest struct {
	Config config.Config
	// StepID selects a single step. Empty runs the whole plan.
	StepID workflow.StepID
}

// RunHooks connect a running sequence back to the UI.
type RunHooks struct {
	Observer workflow.Observer
	Confirm  workflow.ConfirmFunc
}

type Services interface {
	Settings() config.Config
	SaveSettings(cfg config.Config) (string, error)
	TargetName() string
	Log() *logsink.Sink

	SetupDefinition(req RunRequest) ([]workflow.Step, error)
	DetectRuntime(ctx context.Context, cfg config.Config) (string, bool)
	Run(ctx context.Context, req RunRequest, hooks RunHooks) (workflow.Report, error)
}
