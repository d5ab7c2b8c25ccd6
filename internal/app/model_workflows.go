package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pysetup/components"
	"pysetup/internal/workflow"
)

type stepStartedMsg struct {
	index int
}

type stepProgressMsg struct {
	index    int
	fraction float64
}

type stepFinishedMsg struct {
	index  int
	ok     bool
	reason string
}

type confirmRequestMsg struct {
	question string
	reply    chan bool
}

type runDoneMsg struct {
	report workflow.Report
	err    error
}

func spinnerCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

func waitForLog(notify <-chan struct{}) tea.Cmd {
	if notify == nil {
		return nil
	}
	return func() tea.Msg {
		<-notify
		return logUpdatedMsg{}
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-events }
}

// eventBridge forwards sequencer callbacks to the program as messages.
type eventBridge struct {
	ctx    context.Context
	events chan<- tea.Msg
}

func (b eventBridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.ctx.Done():
	}
}

func (b eventBridge) StepStarted(index int, _ workflow.StepDef) {
	b.send(stepStartedMsg{index: index})
}

// StepProgress drops updates while the UI is behind.
func (b eventBridge) StepProgress(index int, fraction float64) {
	select {
	case b.events <- stepProgressMsg{index: index, fraction: fraction}:
	default:
	}
}

func (b eventBridge) StepFinished(index int, _ workflow.StepDef, out workflow.Outcome) {
	b.send(stepFinishedMsg{index: index, ok: out.OK, reason: out.Reason})
}

func (b eventBridge) Confirm(ctx context.Context, question string) bool {
	reply := make(chan bool, 1)
	select {
	case b.events <- confirmRequestMsg{question: question, reply: reply}:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (m model) runCmd(ctx context.Context, req RunRequest, events chan tea.Msg) tea.Cmd {
	bridge := eventBridge{ctx: ctx, events: events}
	return func() tea.Msg {
		rep, err := m.svc.Run(ctx, req, RunHooks{Observer: bridge, Confirm: bridge.Confirm})
		bridge.send(runDoneMsg{report: rep, err: err})
		return nil
	}
}

func (m *model) startSetupWorkflow(req RunRequest, steps []setupStep) tea.Cmd {
	m.phase = phaseLog
	m.spinnerTick = 0
	m.logScroll = 0
	m.working = true
	m.submitted = false
	m.err = ""
	m.confirm = nil
	m.resetButtonState()
	m.steps = steps
	if len(m.steps) == 0 {
		m.working = false
		m.submitted = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = make(chan tea.Msg, 32)
	return tea.Batch(
		m.runCmd(ctx, req, m.events),
		waitForEvent(m.events),
		spinnerCmd(),
	)
}

// overall folds step states into the fraction of the whole run.
func (m model) overall() float64 {
	n := len(m.steps)
	if n == 0 {
		return 0
	}
	if m.submitted {
		return 1
	}
	done := 0
	for i, s := range m.steps {
		switch s.State {
		case stepRunning:
			return workflow.Overall(i, n, s.Progress)
		case stepDone:
			done++
		}
	}
	return workflow.Overall(done, n, 0)
}

func (m model) viewPhase() components.Phase {
	if m.phase == phaseLog {
		return components.PhaseLog
	}
	return components.PhaseForm
}

func (m model) cardRect() (components.Rect, bool) {
	layout, ok := components.ComputeLayout(m.w, m.h, m.viewPhase(), len(m.rows))
	if !ok {
		return components.Rect{}, false
	}
	return layout.Card, true
}

func (m model) runRect() (components.Rect, bool) {
	cardR, ok := m.cardRect()
	if !ok || m.phase != phaseForm {
		return components.Rect{}, false
	}
	return components.ButtonRect(cardR, components.RunLabel)
}

func (m model) finishRect() (components.Rect, bool) {
	cardR, ok := m.cardRect()
	if !ok || !m.submitted || m.err != "" || m.working || m.phase != phaseLog {
		return components.Rect{}, false
	}
	return components.ButtonRect(cardR, components.FinishLabel)
}

// stepKey maps "1".."5" to the step with that number.
func stepKey(k string) (workflow.StepID, bool) {
	defs := workflow.SetupStepDefinitions()
	if len(k) != 1 || k[0] < '1' || int(k[0]-'1') >= len(defs) {
		return "", false
	}
	return defs[k[0]-'1'].ID, true
}
