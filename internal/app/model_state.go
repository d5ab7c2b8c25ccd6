package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"pysetup/components"
	"pysetup/internal/config"
	"pysetup/internal/workflow"
)

type setupPhase int

const (
	phaseForm setupPhase = iota
	phaseLog
)

type stepState = workflow.StepState
type setupStep = workflow.Step

const (
	stepPending = workflow.StepPending
	stepRunning = workflow.StepRunning
	stepDone    = workflow.StepDone
	stepFailed  = workflow.StepFailed
)

type spinnerTickMsg struct{}
type buttonReleaseMsg struct{}
type logUpdatedMsg struct{}

type runtimeDetectedMsg struct {
	desc string
	ok   bool
}

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

type model struct {
	svc Services

	w int
	h int

	focus     int
	phase     setupPhase
	logScroll int
	working   bool
	submitted bool
	err       string
	notice    string
	runtime   string
	btnDown   bool
	btnHover  bool

	base config.Config
	rows []components.FormRow

	steps       []setupStep
	spinnerTick int

	logLines  []string
	logOffset int
	logNotify <-chan struct{}

	events  chan tea.Msg
	cancel  context.CancelFunc
	confirm *confirmRequestMsg
}

func NewModel(svc Services) tea.Model {
	m := model{svc: svc, phase: phaseForm}
	m.base = svc.Settings()
	m.rows = rowsFromConfig(m.base)
	m.logNotify, _ = svc.Log().Watch()
	m.pullLog()
	return m
}

func (m model) detectRuntimeCmd() tea.Cmd {
	cfg := m.formConfig()
	return func() tea.Msg {
		desc, ok := m.svc.DetectRuntime(context.Background(), cfg)
		return runtimeDetectedMsg{desc: desc, ok: ok}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForLog(m.logNotify), m.detectRuntimeCmd())
}

func (m *model) resetButtonState() {
	m.btnDown = false
	m.btnHover = false
}

func (m *model) setFocus(f int) {
	m.focus = f
	m.resetButtonState()
}

// pullLog copies entries appended since the last pull.
func (m *model) pullLog() {
	for _, e := range m.svc.Log().Since(m.logOffset) {
		m.logLines = append(m.logLines, e.String())
		m.logOffset++
	}
}

// attemptRun validates the form and starts the selected run.
func (m *model) attemptRun(only workflow.StepID) tea.Cmd {
	m.err = ""
	m.notice = ""
	cfg := m.formConfig()
	if err := cfg.Validate(); err != nil {
		m.phase = phaseForm
		m.err = err.Error()
		return nil
	}
	req := RunRequest{Config: cfg, StepID: only}
	steps, err := m.svc.SetupDefinition(req)
	if err != nil {
		m.err = err.Error()
		return nil
	}
	return m.startSetupWorkflow(req, steps)
}
