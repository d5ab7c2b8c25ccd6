package main

import (
	"context"
	"fmt"
	"sync"

	"pysetup/internal/app"
	"pysetup/internal/config"
	"pysetup/internal/engine"
	"pysetup/internal/logsink"
	"pysetup/internal/workflow"
)

// runtimeServices backs the TUI with an engine bound to one target.
type runtimeServices struct {
	cfgPath string
	eng     *engine.Engine

	mu  sync.Mutex
	cfg config.Config
}

func newRuntimeServices(cfgPath string, cfg config.Config, eng *engine.Engine) *runtimeServices {
	return &runtimeServices{cfgPath: cfgPath, cfg: cfg, eng: eng}
}

func (s *runtimeServices) Settings() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *runtimeServices) SaveSettings(cfg config.Config) (string, error) {
	if err := config.Save(s.cfgPath, cfg); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return s.cfgPath, nil
}

func (s *runtimeServices) TargetName() string { return s.eng.Target.Name }

func (s *runtimeServices) Log() *logsink.Sink { return s.eng.Log }

func (s *runtimeServices) SetupDefinition(req app.RunRequest) ([]workflow.Step, error) {
	if err := engine.ValidateRegistry(); err != nil {
		return nil, fmt.Errorf("setup registry invalid: %w", err)
	}
	if req.StepID != "" {
		def, ok := workflow.LookupStep(req.StepID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", engine.ErrUnknownStep, req.StepID)
		}
		return workflow.StepsFor([]workflow.StepDef{def}), nil
	}
	return workflow.StepsFor(engine.PlanDefs(req.Config)), nil
}

func (s *runtimeServices) DetectRuntime(ctx context.Context, cfg config.Config) (string, bool) {
	rt, ok := s.eng.DetectRuntime(ctx, cfg)
	if !ok {
		return "", false
	}
	return rt.String(), true
}

func (s *runtimeServices) Run(ctx context.Context, req app.RunRequest, hooks app.RunHooks) (workflow.Report, error) {
	h := engine.Hooks{Confirm: hooks.Confirm, Observer: hooks.Observer}
	if req.StepID != "" {
		return s.eng.RunStep(ctx, req.Config, req.StepID, h)
	}
	return s.eng.Run(ctx, req.Config, h)
}
