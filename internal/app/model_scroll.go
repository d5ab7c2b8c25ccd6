package app

import "pysetup/components"

func (m model) maxLogScroll() int {
	cardR, ok := m.cardRect()
	if !ok || m.phase != phaseLog {
		// Before first layout pass, keep a conservative bound.
		return len(m.logLines)
	}
	_, avail := components.LogArea(cardR, len(m.steps))
	max := components.LogLineCount(cardR, m.logLines) - avail
	if max < 0 {
		return 0
	}
	return max
}

func (m *model) clampLogScroll() {
	if m.logScroll < 0 {
		m.logScroll = 0
		return
	}
	if max := m.maxLogScroll(); m.logScroll > max {
		m.logScroll = max
	}
}
