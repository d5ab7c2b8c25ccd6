package app

import tea "github.com/charmbracelet/bubbletea"

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case runtimeDetectedMsg:
		return m.handleRuntimeDetected(msg)
	case logUpdatedMsg:
		return m.handleLogUpdated()
	case buttonReleaseMsg:
		return m.handleButtonRelease()
	case spinnerTickMsg:
		return m.handleSpinnerTick()
	case stepStartedMsg:
		return m.handleStepStarted(msg)
	case stepProgressMsg:
		return m.handleStepProgress(msg)
	case stepFinishedMsg:
		return m.handleStepFinished(msg)
	case confirmRequestMsg:
		return m.handleConfirmRequest(msg)
	case runDoneMsg:
		return m.handleRunDone(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(tea.MouseEvent(msg))
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	default:
		return m, nil
	}
}
