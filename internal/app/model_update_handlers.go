package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pysetup/components"
	"pysetup/internal/workflow"
)

func (m model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.w, m.h = msg.Width, msg.Height
	m.clampLogScroll()
	return m, nil
}

func (m model) handleRuntimeDetected(msg runtimeDetectedMsg) (tea.Model, tea.Cmd) {
	if msg.ok {
		m.runtime = "Detected Python: " + msg.desc
	} else {
		m.runtime = "No Python installation detected"
	}
	return m, nil
}

func (m model) handleLogUpdated() (tea.Model, tea.Cmd) {
	before := m.logOffset
	m.pullLog()
	if m.logScroll > 0 && m.logOffset > before {
		// Keep the scrolled view anchored while new lines arrive.
		m.logScroll += m.logOffset - before
	}
	m.clampLogScroll()
	return m, waitForLog(m.logNotify)
}

func (m model) handleButtonRelease() (tea.Model, tea.Cmd) {
	wasDown := m.btnDown
	m.btnDown = false
	if m.phase == phaseForm && wasDown && !m.working && m.focus == focusRun {
		return m, m.attemptRun("")
	}
	return m, nil
}

func (m model) handleSpinnerTick() (tea.Model, tea.Cmd) {
	if m.phase == phaseLog && m.working {
		m.spinnerTick = (m.spinnerTick + 1) % len(spinnerFrames)
		return m, spinnerCmd()
	}
	return m, nil
}

func (m model) validIndex(i int) bool {
	return m.phase == phaseLog && i >= 0 && i < len(m.steps)
}

func (m model) handleStepStarted(msg stepStartedMsg) (tea.Model, tea.Cmd) {
	if m.validIndex(msg.index) {
		m.steps[msg.index].State = stepRunning
		m.steps[msg.index].Progress = 0
	}
	return m, waitForEvent(m.events)
}

func (m model) handleStepProgress(msg stepProgressMsg) (tea.Model, tea.Cmd) {
	if m.validIndex(msg.index) && m.steps[msg.index].State == stepRunning {
		m.steps[msg.index].Progress = msg.fraction
	}
	return m, waitForEvent(m.events)
}

func (m model) handleStepFinished(msg stepFinishedMsg) (tea.Model, tea.Cmd) {
	if m.validIndex(msg.index) {
		step := &m.steps[msg.index]
		if msg.ok {
			step.State = stepDone
			step.Progress = 1
		} else {
			step.State = stepFailed
			step.Err = msg.reason
		}
	}
	m.clampLogScroll()
	return m, waitForEvent(m.events)
}

func (m model) handleConfirmRequest(msg confirmRequestMsg) (tea.Model, tea.Cmd) {
	m.confirm = &msg
	return m, waitForEvent(m.events)
}

func (m model) handleRunDone(msg runDoneMsg) (tea.Model, tea.Cmd) {
	m.working = false
	m.confirm = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.events = nil
	switch {
	case msg.err != nil:
		m.err = msg.err.Error()
	case msg.report.Status.State == workflow.RunFailed:
		i := msg.report.Status.Index
		reason := "step failed"
		if i >= 0 && i < len(msg.report.Results) {
			reason = msg.report.Results[i].Outcome.Reason
		}
		m.err = fmt.Sprintf("Step %d failed: %s", i+1, reason)
	default:
		m.submitted = true
	}
	m.clampLogScroll()
	return m, nil
}

// answerConfirm replies to the pending question at most once.
func (m *model) answerConfirm(yes bool) {
	if m.confirm == nil {
		return
	}
	select {
	case m.confirm.reply <- yes:
	default:
	}
	m.confirm = nil
}

func (m model) handleMouseMsg(me tea.MouseEvent) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseForm:
		return m.handleMouseForm(me)
	case phaseLog:
		return m.handleMouseLog(me)
	default:
		return m, nil
	}
}

func (m model) handleMouseForm(me tea.MouseEvent) (tea.Model, tea.Cmd) {
	if m.working {
		return m, nil
	}
	r, hasRun := m.runRect()
	if hasRun {
		m.btnHover = r.Contains(me.X, me.Y)
	}
	if me.Action == tea.MouseActionMotion || me.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if hasRun {
		switch me.Action {
		case tea.MouseActionPress:
			if r.Contains(me.X, me.Y) {
				m.setFocus(focusRun)
				m.btnDown = true
				m.btnHover = true
				return m, nil
			}
			m.btnDown = false
		case tea.MouseActionRelease:
			wasDown := m.btnDown
			m.btnDown = false
			if wasDown && r.Contains(me.X, me.Y) {
				return m, m.attemptRun("")
			}
			return m, nil
		}
	}

	if me.Action == tea.MouseActionPress {
		cardR, ok := m.cardRect()
		if !ok {
			return m, nil
		}
		for i := range m.rows {
			rr, ok := components.FormRowRect(cardR, i)
			if !ok {
				break
			}
			// The label column is clickable too.
			if me.Y == rr.Y && me.X >= cardR.X+1 && me.X < rr.X+rr.W {
				m.setFocus(i)
				if m.rows[i].Toggle {
					m.rows[i].On = !m.rows[i].On
				}
				return m, nil
			}
		}
	}
	return m, nil
}

func (m model) handleMouseLog(me tea.MouseEvent) (tea.Model, tea.Cmd) {
	if me.Button == tea.MouseButtonWheelUp {
		m.logScroll += 2
		m.clampLogScroll()
		return m, nil
	}
	if me.Button == tea.MouseButtonWheelDown {
		m.logScroll -= 2
		m.clampLogScroll()
		return m, nil
	}
	r, ok := m.finishRect()
	if !ok {
		return m, nil
	}
	m.btnHover = r.Contains(me.X, me.Y)
	if me.Action == tea.MouseActionMotion || me.Button != tea.MouseButtonLeft {
		return m, nil
	}
	switch me.Action {
	case tea.MouseActionPress:
		m.btnDown = r.Contains(me.X, me.Y)
		m.btnHover = m.btnDown
	case tea.MouseActionRelease:
		wasDown := m.btnDown
		m.btnDown = false
		if wasDown && r.Contains(me.X, me.Y) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		m.answerConfirm(false)
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmKey(k)
	}
	if m.phase == phaseLog {
		return m.handleLogKey(k)
	}
	if m.working {
		return m, nil
	}

	switch k {
	case "tab", "down":
		m.setFocus((m.focus + 1) % (rowCount + 1))
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + rowCount) % (rowCount + 1))
		return m, nil
	case "ctrl+s":
		cfg := m.formConfig()
		if err := cfg.Validate(); err != nil {
			m.err = err.Error()
			return m, nil
		}
		path, err := m.svc.SaveSettings(cfg)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.base = cfg
		m.err = ""
		m.notice = "Settings saved to " + path
		return m, nil
	case "ctrl+r":
		return m, m.attemptRun("")
	case "esc":
		return m, tea.Quit
	}

	if m.focus == focusRun {
		if k == "enter" || k == " " {
			if !m.btnDown {
				m.btnDown = true
				return m, tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return buttonReleaseMsg{} })
			}
		}
		return m, nil
	}

	row := &m.rows[m.focus]
	switch {
	case row.Toggle:
		if k == " " || k == "enter" {
			row.On = !row.On
		}
	case len(row.Choices) > 0:
		switch k {
		case "left", "h":
			m.cycleChoice(-1)
		case "right", "l", " ":
			m.cycleChoice(1)
		case "enter":
			m.setFocus(m.focus + 1)
		}
	default:
		if k == "enter" {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		row.Field.HandleKey(msg)
		m.notice = ""
	}
	return m, nil
}

func (m model) handleConfirmKey(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "y", "Y":
		m.answerConfirm(true)
	case "n", "N", "esc", "enter":
		m.answerConfirm(false)
	}
	return m, nil
}

func (m model) handleLogKey(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "up", "k":
		m.logScroll++
		m.clampLogScroll()
		return m, nil
	case "down", "j":
		m.logScroll--
		m.clampLogScroll()
		return m, nil
	case "pgup":
		m.logScroll += 6
		m.clampLogScroll()
		return m, nil
	case "pgdown":
		m.logScroll -= 6
		m.clampLogScroll()
		return m, nil
	case "end":
		m.logScroll = 0
		return m, nil
	}
	if m.working {
		return m, nil
	}

	switch k {
	case "esc":
		m.resetFormPhaseState()
		return m, nil
	case "r":
		return m, m.attemptRun("")
	case "enter", "q":
		if m.submitted && m.err == "" {
			return m, tea.Quit
		}
		if k == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	if id, ok := stepKey(k); ok {
		return m, m.attemptRun(id)
	}
	return m, nil
}

func (m *model) resetFormPhaseState() {
	m.phase = phaseForm
	m.submitted = false
	m.err = ""
	m.steps = nil
	m.logScroll = 0
	m.setFocus(0)
}
