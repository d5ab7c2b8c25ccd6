// Package engine plans and runs setup workflows from a configuration record.
// Front-ends talk to the engine only.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pysetup/internal/config"
	"pysetup/internal/history"
	"pysetup/internal/logsink"
	"pysetup/internal/runner"
	"pysetup/internal/steps"
	"pysetup/internal/workflow"
)

var (
	ErrBusy        = errors.New("a run is already in progress")
	ErrUnknownStep = errors.New("unknown step")
)

type Engine struct {
	Target  *Target
	Log     *logsink.Sink
	History *history.Store

	// Candidates overrides the interpreter search list.
	Candidates []string

	mu      sync.Mutex
	running bool
	seq     workflow.Sequencer
}

// Hooks connect one run to its front-end. Both fields may be nil.
type Hooks struct {
	Confirm  workflow.ConfirmFunc
	Observer workflow.Observer
}

func New(target *Target, sink *logsink.Sink) *Engine {
	if sink == nil {
		sink = logsink.New()
	}
	return &Engine{Target: target, Log: sink}
}

// Status reports the state of the current or most recent run.
func (e *Engine) Status() workflow.Status {
	return e.seq.Status()
}

func (e *Engine) host() steps.Host {
	return steps.Host{Runner: e.Target.Runner, FS: e.Target.FS}
}

func (e *Engine) locator() steps.Locator {
	return steps.Locator{Host: e.host(), Candidates: e.Candidates}
}

// ProjectDir is the clone destination when cloning, otherwise project.path.
func ProjectDir(cfg config.Config) string {
	if !cfg.Git.SkipClone && cfg.Git.RepositoryURL != "" && cfg.Git.ClonePath != "" {
		if name := steps.RepoName(cfg.Git.RepositoryURL); name != "" {
			return path.Join(cfg.Git.ClonePath, name)
		}
	}
	return cfg.Project.Path
}

func command(cfg config.Config, s string) (runner.CommandSpec, error) {
	args, err := cfg.SplitCommand(s)
	if err != nil {
		return runner.CommandSpec{}, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	if len(args) == 0 {
		return runner.CommandSpec{}, nil
	}
	return runner.Command(args[0], args[1:]...), nil
}

// stepBuilder turns a resolved config into a runnable step.
type stepBuilder func(e *Engine, cfg config.Config) (workflow.Runnable, error)

var (
	validateBuildersOnce sync.Once
	validateBuildersErr  error
)

var stepBuilders = map[workflow.StepID]stepBuilder{
	workflow.StepVerifyRuntime:     buildRuntime,
	workflow.StepCloneRepository:   buildClone,
	workflow.StepCreateEnvironment: buildEnvironment,
	workflow.StepInstallDeps:       buildDependencies,
	workflow.StepGenerateLaunchers: buildLaunchers,
}

// ValidateRegistry checks that every defined step has a builder.
func ValidateRegistry() error {
	validateBuildersOnce.Do(func() {
		defs := workflow.SetupStepDefinitions()
		if err := workflow.ValidateStepDefinitions(defs); err != nil {
			validateBuildersErr = err
			return
		}
		for _, def := range defs {
			if _, ok := stepBuilders[def.ID]; !ok {
				validateBuildersErr = fmt.Errorf("missing builder for step ID: %q", def.ID)
				return
			}
		}
		if len(stepBuilders) != len(defs) {
			validateBuildersErr = fmt.Errorf("builder count mismatch: builders=%d defs=%d", len(stepBuilders), len(defs))
		}
	})
	return validateBuildersErr
}

// Step builds the step with the given id from cfg.
func (e *Engine) Step(cfg config.Config, id workflow.StepID) (workflow.Runnable, error) {
	if err := ValidateRegistry(); err != nil {
		return nil, err
	}
	build, ok := stepBuilders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	return build(e, cfg.Resolved())
}

func buildRuntime(e *Engine, cfg config.Config) (workflow.Runnable, error) {
	probe, err := command(cfg, cfg.PackageManager.ProbeCommand)
	if err != nil {
		return nil, err
	}
	boot, err := command(cfg, cfg.PackageManager.BootstrapCommand)
	if err != nil {
		return nil, err
	}
	install, err := command(cfg, cfg.PackageManager.InstallCommand)
	if err != nil {
		return nil, err
	}
	return steps.VerifyOrInstallRuntime{
		Host:             e.host(),
		Locator:          e.locator(),
		Version:          cfg.Python.Version,
		InstallPath:      cfg.Python.InstallPath,
		AlreadyInstalled: cfg.Python.AlreadyInstalled,
		ProbeCommand:     probe,
		BootstrapCommand: boot,
		InstallCommand:   install,
	}, nil
}

func buildClone(e *Engine, cfg config.Config) (workflow.Runnable, error) {
	return steps.CloneRepository{
		Host:      e.host(),
		URL:       cfg.Git.RepositoryURL,
		ClonePath: cfg.Git.ClonePath,
		Branch:    cfg.Git.Branch,
	}, nil
}

func buildEnvironment(e *Engine, cfg config.Config) (workflow.Runnable, error) {
	return steps.CreateEnvironment{
		Host:        e.host(),
		Locator:     e.locator(),
		ProjectDir:  ProjectDir(cfg),
		EnvName:     cfg.Project.EnvName,
		InstallPath: cfg.Python.InstallPath,
	}, nil
}

func buildDependencies(e *Engine, cfg config.Config) (workflow.Runnable, error) {
	return steps.InstallDependencies{
		Host:       e.host(),
		ProjectDir: ProjectDir(cfg),
		EnvName:    cfg.Project.EnvName,
		Packages:   cfg.Project.Packages,
	}, nil
}

func buildLaunchers(e *Engine, cfg config.Config) (workflow.Runnable, error) {
	return steps.GenerateLaunchers{
		Host:         e.host(),
		ProjectDir:   ProjectDir(cfg),
		EnvName:      cfg.Project.EnvName,
		MainScript:   cfg.Launcher.MainScript,
		CreateBundle: cfg.Launcher.CreateBundle,
		BundleName:   cfg.Launcher.AppBundleName,
		BundleDir:    cfg.Launcher.BundleDir,
	}, nil
}

// PlanDefs lists the steps of a full run. The clone step is omitted with
// git.skip_clone.
func PlanDefs(cfg config.Config) []workflow.StepDef {
	var out []workflow.StepDef
	for _, def := range workflow.SetupStepDefinitions() {
		if def.ID == workflow.StepCloneRepository && cfg.Git.SkipClone {
			continue
		}
		out = append(out, def)
	}
	return out
}

// Plan builds the full sequence for cfg.
func (e *Engine) Plan(cfg config.Config) ([]workflow.Runnable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var plan []workflow.Runnable
	for _, def := range PlanDefs(cfg) {
		step, err := e.Step(cfg, def.ID)
		if err != nil {
			return nil, err
		}
		plan = append(plan, step)
	}
	if err := workflow.ValidatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Run executes the full plan.
func (e *Engine) Run(ctx context.Context, cfg config.Config, hooks Hooks) (workflow.Report, error) {
	plan, err := e.Plan(cfg)
	if err != nil {
		return workflow.Report{}, err
	}
	return e.execute(ctx, plan, hooks, "Setup completed successfully.")
}

// RunStep executes a single step as a one-element plan.
func (e *Engine) RunStep(ctx context.Context, cfg config.Config, id workflow.StepID, hooks Hooks) (workflow.Report, error) {
	if err := cfg.Validate(); err != nil {
		return workflow.Report{}, err
	}
	step, err := e.Step(cfg, id)
	if err != nil {
		return workflow.Report{}, err
	}
	return e.execute(ctx, []workflow.Runnable{step}, hooks, step.Def().Label+" completed.")
}

// execute installs hooks only after winning the busy check, so a rejected
// call never touches the running sequence.
func (e *Engine) execute(ctx context.Context, plan []workflow.Runnable, hooks Hooks, done string) (workflow.Report, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return workflow.Report{}, ErrBusy
	}
	e.running = true
	e.seq.Log = e.Log
	e.seq.Confirm = hooks.Confirm
	e.seq.Observer = hooks.Observer
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	runID := e.begin(ctx)
	rep := e.seq.Run(ctx, plan)
	e.finish(runID, rep)

	if rep.OK() {
		e.Log.Append(done)
	}
	return rep, nil
}

func (e *Engine) begin(ctx context.Context) string {
	if e.History == nil {
		return ""
	}
	id, err := e.History.Begin(ctx, e.Target.Name, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("record run start")
		return ""
	}
	return id
}

func (e *Engine) finish(id string, rep workflow.Report) {
	if e.History == nil || id == "" {
		return
	}
	// The run context may be cancelled already; the record is still wanted.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.History.Finish(ctx, id, rep); err != nil {
		log.Warn().Err(err).Str("run", id).Msg("record run result")
	}
}

// DetectRuntime looks for an interpreter without installing anything and
// reports the result in the log.
func (e *Engine) DetectRuntime(ctx context.Context, cfg config.Config) (steps.Runtime, bool) {
	cfg = cfg.Resolved()
	rt, ok := e.locator().Find(ctx, cfg.Python.InstallPath)
	if ok {
		e.Log.Appendf("Detected Python: %s", rt)
	} else {
		e.Log.Append("No Python installation detected.")
	}
	return rt, ok
}
