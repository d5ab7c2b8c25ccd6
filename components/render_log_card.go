package components

import (
	"fmt"
	"strings"
)

func drawLogCard(state ViewState, b *canvas, x, y, w, h int) {
	b.box(x, y, w, h, cGrid2)
	drawHeader(b, x, y, w, logHeaderText)
	if w > 2 && h > 3 {
		b.fill(x+1, y+2, w-2, h-3, cText, cBG, ' ')
	}

	b.text(x+2, y+3, cText, cBG, truncate("Target: "+state.Target, w-12))
	pct := fmt.Sprintf("%3d%%", int(state.Overall*100+0.5))
	b.text(x+w-2-len(pct), y+3, cAccent, cBG, pct)

	for i, step := range state.Steps {
		drawStepLine(state, b, x+2, y+4+i, w-4, step)
	}
	barY := y + 4 + len(state.Steps)
	drawProgressBar(b, x+2, barY, w-4, state.Overall)

	cardR := Rect{X: x, Y: y, W: w, H: h}
	top, avail := LogArea(cardR, len(state.Steps))
	lines := wrapLogLines(state.LogLines, w-4)

	start := 0
	if len(lines) > avail {
		start = len(lines) - avail
	}
	start -= state.LogScroll
	if start < 0 {
		start = 0
	}
	for i := 0; i < avail && start+i < len(lines); i++ {
		ln := lines[start+i]
		b.text(x+2, top+i, logLineColor(ln), cBG, ln)
	}
	if len(lines) > avail {
		if start > 0 {
			b.text(x+w-10, top-1, cSub, cBG, "↑ older")
		}
		if start+avail < len(lines) {
			b.text(x+w-10, top+avail, cSub, cBG, "↓ newer")
		}
	}

	btnR, hasButton := ButtonRect(cardR, FinishLabel)
	footerY := y + h - 2
	if hasButton {
		footerY = btnR.Y - 1
	}

	switch {
	case state.Err != "":
		b.text(x+2, footerY, cErr, cBG, truncate(state.Err, w-4))
	case state.Submitted:
		b.text(x+2, footerY, cAccent, cBG, "----")
		b.text(x+6, footerY, cText, cBG, " SETUP COMPLETE ")
		b.text(x+6+len(" SETUP COMPLETE "), footerY, cAccent, cBG, "----")
	}

	if !hasButton {
		return
	}
	if state.Submitted && state.Err == "" && !state.Working {
		fg, bgMain := cAccent, cGrid
		if state.BtnDown {
			fg, bgMain = cBG, cAccent
		} else if state.BtnHover {
			bgMain = cGrid2
		}
		drawButton(b, btnR, FinishLabel, fg, bgMain)
		return
	}
	hint := "1-5 run step · r rerun · esc settings"
	if state.Working {
		hint = "↑/↓ scroll · ctrl+c cancel"
	}
	b.text(x+2, btnR.Y+btnR.H/2, cSub, cBG, truncate(hint, w-4))
}

func drawStepLine(state ViewState, b *canvas, x, y, w int, step Step) {
	prefix := "[ ]"
	prefixFG := cSub
	lineFG := cSub
	suffix := ""

	switch step.State {
	case StepRunning:
		spin := state.SpinnerRune
		if spin == 0 {
			spin = '*'
		}
		prefix = "[" + string(spin) + "]"
		prefixFG = cAccent
		lineFG = cText
		suffix = fmt.Sprintf("%3d%%", int(step.Progress*100+0.5))
	case StepDone:
		prefix = "[✓]"
		prefixFG = cAccent
		lineFG = cText
	case StepFailed:
		prefix = "[✗]"
		prefixFG = cErr
		lineFG = cErr
		if step.Err != "" {
			suffix = "failed"
		}
	}

	b.text(x, y, prefixFG, cBG, prefix)
	labelW := w - 4 - len(suffix) - 1
	b.text(x+4, y, lineFG, cBG, truncate(step.Label, labelW))
	if suffix != "" {
		b.text(x+w-len(suffix), y, prefixFG, cBG, suffix)
	}
}

func drawProgressBar(b *canvas, x, y, w int, fraction float64) {
	if w < 3 {
		return
	}
	inner := w - 2
	filled := int(float64(inner)*clampFloat(fraction) + 0.5)
	b.text(x, y, cSub, cBG, "▕")
	b.hline(x+1, y, filled, cAccent, cBG, '█')
	b.hline(x+1+filled, y, inner-filled, cGrid2, cBG, '░')
	b.text(x+w-1, y, cSub, cBG, "▏")
}

// wrapLogLines hard-wraps entries to width, keeping leading indentation and
// indenting continuation lines.
func wrapLogLines(entries []string, width int) []string {
	if width < 4 {
		width = 4
	}
	var parts []string
	for _, e := range entries {
		parts = append(parts, strings.Split(e, "\n")...)
	}
	var out []string
	for _, e := range parts {
		r := []rune(strings.ReplaceAll(e, "\t", "  "))
		out = append(out, string(r[:min(len(r), width)]))
		for r = r[min(len(r), width):]; len(r) > 0; {
			n := min(len(r), width-2)
			out = append(out, "  "+string(r[:n]))
			r = r[n:]
		}
	}
	return out
}

func logLineColor(line string) rgb {
	msg := line
	if i := strings.Index(line, "] "); strings.HasPrefix(line, "[") && i > 0 {
		msg = line[i+2:]
	}
	body := strings.TrimSpace(msg)
	switch {
	case strings.HasPrefix(body, "ERROR:"), strings.Contains(body, ") failed: "):
		return cErr
	case strings.HasPrefix(body, "WARNING:"):
		return cWarn
	case strings.HasPrefix(msg, "  "):
		return cSub
	default:
		return cText
	}
}

func drawConfirm(question string, b *canvas, card Rect) {
	w := card.W - 8
	lines := wrapText(question, w-4)
	h := len(lines) + 5
	if h > card.H-4 {
		h = card.H - 4
	}
	x := card.X + 4
	y := card.Y + (card.H-h)/2

	b.fill(x, y, w, h, cText, cBG, ' ')
	b.box(x, y, w, h, cAccent)
	for i, ln := range lines {
		if y+1+i >= y+h-3 {
			break
		}
		b.text(x+2, y+1+i, cText, cBG, ln)
	}
	b.text(x+2, y+h-2, cAccent, cBG, "[y] Yes")
	b.text(x+12, y+h-2, cSub, cBG, "[n] No")
}
