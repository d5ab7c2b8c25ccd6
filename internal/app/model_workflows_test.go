package app

import (
	"context"
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pysetup/internal/config"
	"pysetup/internal/logsink"
	"pysetup/internal/workflow"
)

type fakeServices struct {
	cfg     config.Config
	sink    *logsink.Sink
	lastReq RunRequest
	saved   *config.Config
	steps   []workflow.Step
	run     func(ctx context.Context, hooks RunHooks) workflow.Report
}

func newFakeServices() *fakeServices {
	return &fakeServices{cfg: config.Default(), sink: logsink.New()}
}

func (f *fakeServices) Settings() config.Config { return f.cfg }

func (f *fakeServices) SaveSettings(cfg config.Config) (string, error) {
	f.saved = &cfg
	return "/tmp/setup.toml", nil
}

func (f *fakeServices) TargetName() string { return "local" }
func (f *fakeServices) Log() *logsink.Sink { return f.sink }

func (f *fakeServices) SetupDefinition(req RunRequest) ([]workflow.Step, error) {
	f.lastReq = req
	out := make([]workflow.Step, len(f.steps))
	copy(out, f.steps)
	return out, nil
}

func (f *fakeServices) DetectRuntime(context.Context, config.Config) (string, bool) {
	return "python3 (Python 3.12.6)", true
}

func (f *fakeServices) Run(ctx context.Context, req RunRequest, hooks RunHooks) (workflow.Report, error) {
	f.lastReq = req
	if f.run == nil {
		return workflow.Report{Status: workflow.Status{State: workflow.RunCompleted, Index: -1}}, nil
	}
	return f.run(ctx, hooks), nil
}

func newTestModel(f *fakeServices) model {
	return NewModel(f).(model)
}

func TestAttemptRun_UsesServiceDefinition(t *testing.T) {
	fake := newFakeServices()
	fake.steps = workflow.StepsFor([]workflow.StepDef{{ID: workflow.StepCreateEnvironment, Label: "env"}})
	m := newTestModel(fake)

	if cmd := m.attemptRun(workflow.StepCreateEnvironment); cmd == nil {
		t.Fatalf("expected a run command")
	}
	if fake.lastReq.StepID != workflow.StepCreateEnvironment {
		t.Fatalf("unexpected step ID: %q", fake.lastReq.StepID)
	}
	if m.phase != phaseLog || !m.working || len(m.steps) != 1 {
		t.Fatalf("model not running: phase=%v working=%v steps=%d", m.phase, m.working, len(m.steps))
	}
	if m.steps[0].State != stepPending {
		t.Fatalf("steps start pending until the sequencer reports them, got %v", m.steps[0].State)
	}
	m.cancel()
}

func TestAttemptRun_InvalidConfigStaysOnForm(t *testing.T) {
	fake := newFakeServices()
	m := newTestModel(fake)
	m.rows[rowEnvName].Field.SetValue("bad/name")

	if cmd := m.attemptRun(""); cmd != nil {
		t.Fatalf("expected no command for invalid settings")
	}
	if m.phase != phaseForm || m.err == "" {
		t.Fatalf("expected a form error, got phase=%v err=%q", m.phase, m.err)
	}
}

func TestRunCmd_ForwardsEventsInOrder(t *testing.T) {
	fake := newFakeServices()
	def := workflow.StepDef{ID: workflow.StepVerifyRuntime, Label: "runtime"}
	fake.run = func(ctx context.Context, hooks RunHooks) workflow.Report {
		hooks.Observer.StepStarted(0, def)
		answer := hooks.Confirm(ctx, "Install the package manager?")
		out := workflow.Success()
		if !answer {
			out = workflow.Failf(nil, "declined")
		}
		hooks.Observer.StepFinished(0, def, out)
		return workflow.Report{Status: workflow.Status{State: workflow.RunCompleted, Index: -1}}
	}
	m := newTestModel(fake)
	events := make(chan tea.Msg, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := m.runCmd(ctx, RunRequest{Config: fake.cfg}, events)
	go cmd()

	next := func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event")
			return nil
		}
	}
	if msg, ok := next().(stepStartedMsg); !ok || msg.index != 0 {
		t.Fatalf("expected stepStartedMsg, got %#v", msg)
	}
	req, ok := next().(confirmRequestMsg)
	if !ok {
		t.Fatalf("expected confirmRequestMsg")
	}
	req.reply <- true
	if msg, ok := next().(stepFinishedMsg); !ok || !msg.ok {
		t.Fatalf("expected successful stepFinishedMsg, got %#v", msg)
	}
	if msg, ok := next().(runDoneMsg); !ok || !msg.report.OK() {
		t.Fatalf("expected completed runDoneMsg, got %#v", msg)
	}
}

func TestHandleStepEventsAndRunDone(t *testing.T) {
	fake := newFakeServices()
	m := newTestModel(fake)
	m.phase = phaseLog
	m.working = true
	m.events = make(chan tea.Msg, 1)
	m.steps = workflow.DefaultSetupSteps()

	next, _ := m.handleStepStarted(stepStartedMsg{index: 0})
	m = next.(model)
	next, _ = m.handleStepProgress(stepProgressMsg{index: 0, fraction: 0.5})
	m = next.(model)
	if m.steps[0].State != stepRunning || m.steps[0].Progress != 0.5 {
		t.Fatalf("step 0: %+v", m.steps[0])
	}
	if got := m.overall(); got != 0.1 {
		t.Fatalf("overall: got %v want 0.1", got)
	}
	next, _ = m.handleStepFinished(stepFinishedMsg{index: 0, reason: "Python 3.12.6 installation failed"})
	m = next.(model)
	if m.steps[0].State != stepFailed {
		t.Fatalf("step 0 should be failed: %+v", m.steps[0])
	}

	rep := workflow.Report{
		Status:  workflow.Status{State: workflow.RunFailed, Index: 0},
		Results: []workflow.StepResult{{Outcome: workflow.Outcome{Reason: "Python 3.12.6 installation failed"}}},
	}
	next, _ = m.handleRunDone(runDoneMsg{report: rep})
	m = next.(model)
	if m.working || m.submitted {
		t.Fatalf("run should be stopped and not submitted")
	}
	if m.err != "Step 1 failed: Python 3.12.6 installation failed" {
		t.Fatalf("err: %q", m.err)
	}
}

func TestConfirmKeysReplyOnce(t *testing.T) {
	m := newTestModel(newFakeServices())
	reply := make(chan bool, 1)
	m.confirm = &confirmRequestMsg{question: "Install?", reply: reply}

	next, _ := m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(model)
	if m.confirm != nil {
		t.Fatalf("confirm should be cleared")
	}
	if got := <-reply; !got {
		t.Fatalf("expected yes")
	}
}

func TestFormConfigRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Python.Version = "3.11.9"
	cfg.Git.RepositoryURL = "https://github.com/acme/demo.git"
	cfg.Git.SkipClone = true
	cfg.Project.Packages = []string{"numpy", "pytz"}
	cfg.Launcher.CreateBundle = true
	cfg.Launcher.AppBundleName = "Demo"
	cfg.PackageManager.InstallCommand = "port install python311"

	fake := newFakeServices()
	fake.cfg = cfg
	m := newTestModel(fake)
	if got := m.formConfig(); !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}

	m.focus = rowVersion
	m.cycleChoice(1)
	if got := m.formConfig().Python.Version; got != config.SupportedVersions[3] {
		t.Fatalf("cycled version: %q", got)
	}
}

func TestFormConfigKeepsUnlistedVersion(t *testing.T) {
	fake := newFakeServices()
	fake.cfg.Python.Version = "3.13.0"
	m := newTestModel(fake)
	if got := m.formConfig().Python.Version; got != "3.13.0" {
		t.Fatalf("version: %q", got)
	}
}

func TestCtrlSSavesSettings(t *testing.T) {
	fake := newFakeServices()
	m := newTestModel(fake)
	m.focus = rowBranch
	m.rows[rowBranch].Field.SetValue("develop")

	next, _ := m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(model)
	if fake.saved == nil || fake.saved.Git.Branch != "develop" {
		t.Fatalf("settings not saved: %+v", fake.saved)
	}
	if m.notice != "Settings saved to /tmp/setup.toml" {
		t.Fatalf("notice: %q", m.notice)
	}
}

func TestToggleWithSpace(t *testing.T) {
	m := newTestModel(newFakeServices())
	m.focus = rowSkipClone
	next, _ := m.handleKeyMsg(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(model)
	if !m.rows[rowSkipClone].On {
		t.Fatalf("space should toggle the focused row")
	}
}

func TestStepKey(t *testing.T) {
	defs := workflow.SetupStepDefinitions()
	for i, def := range defs {
		id, ok := stepKey(string(rune('1' + i)))
		if !ok || id != def.ID {
			t.Fatalf("key %d: got %q %v", i+1, id, ok)
		}
	}
	for _, k := range []string{"0", "6", "a", "12"} {
		if _, ok := stepKey(k); ok {
			t.Fatalf("key %q should not map to a step", k)
		}
	}
}

func TestLogUpdatePullsNewEntries(t *testing.T) {
	fake := newFakeServices()
	fake.sink.Append("before start")
	m := newTestModel(fake)
	if len(m.logLines) != 1 {
		t.Fatalf("existing entries should be loaded: %v", m.logLines)
	}
	fake.sink.Append("Cloning repository...")
	next, cmd := m.handleLogUpdated()
	m = next.(model)
	if len(m.logLines) != 2 || cmd == nil {
		t.Fatalf("log lines: %v", m.logLines)
	}
}
