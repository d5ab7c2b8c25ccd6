package components

import "strings"

func drawFormCard(state ViewState, b *canvas, x, y, w, h int) {
	b.box(x, y, w, h, cGrid2)
	drawHeader(b, x, y, w, formHeaderText)
	if w > 2 && h > 3 {
		b.fill(x+1, y+2, w-2, h-3, cText, cBG, ' ')
	}

	cardR := Rect{X: x, Y: y, W: w, H: h}
	for i, row := range state.Rows {
		r, ok := FormRowRect(cardR, i)
		if !ok {
			break
		}
		focused := state.Focus == i && !state.Working
		labelFG := cSub
		if focused {
			labelFG = cAccent
		}
		b.text(x+2, r.Y, labelFG, cBG, truncate(row.Label, formLabelW-1))

		switch {
		case row.Toggle:
			mark := "[ ]"
			if row.On {
				mark = "[x]"
			}
			fg := cText
			if focused {
				fg = cAccent
			}
			b.text(r.X, r.Y, fg, cBG, mark)
		case len(row.Choices) > 0:
			fg := cText
			if focused {
				fg = cAccent
			}
			b.text(r.X, r.Y, fg, cBG, "◂ "+truncate(row.Value(), r.W-4)+" ▸")
		default:
			fill := cBG
			if focused {
				fill = cGrid
			}
			b.fill(r.X, r.Y, r.W, 1, cText, fill, ' ')
			f := row.Field
			f.drawInto(b, r.X, r.Y, r.W, focused)
		}
	}

	btnR, ok := ButtonRect(cardR, RunLabel)
	if !ok {
		return
	}
	msgY := btnR.Y - 1
	switch {
	case state.Err != "":
		b.text(x+2, msgY, cErr, cBG, truncate(state.Err, w-4))
	case state.Notice != "":
		b.text(x+2, msgY, cAccent, cBG, truncate(state.Notice, w-4))
	case state.Runtime != "":
		b.text(x+2, msgY, cSub, cBG, truncate(state.Runtime, w-4))
	}

	runFocused := (state.Focus == len(state.Rows) || state.BtnHover) && !state.Working
	fg, bgMain := cBG, cAccent
	if state.Working {
		fg, bgMain = cSub, cBG
	} else if !state.BtnDown {
		fg, bgMain = cAccent, cGrid
		if runFocused {
			bgMain = cGrid2
		}
	}
	drawButton(b, btnR, RunLabel, fg, bgMain)

	hint := "tab move · space toggle · ctrl+s save"
	if btnR.X-x-2 > len(hint)/2 {
		b.text(x+2, btnR.Y+btnR.H/2, cSub, cBG, truncate(hint, btnR.X-x-3))
	}
}

func drawHeader(b *canvas, x, y, w int, text string) {
	if w-2 <= 0 {
		return
	}
	b.fill(x+1, y+1, w-2, 1, cBG, cAccent, ' ')
	b.text(x+2, y+1, cBG, cAccent, text)
}

func drawButton(b *canvas, r Rect, label string, fg, bgMain rgb) {
	midY := r.Y + r.H/2
	switch {
	case bgMain == cBG:
		b.fill(r.X, r.Y, r.W, r.H, cText, cBG, ' ')
	case r.H >= 3:
		b.fill(r.X, r.Y, r.W, 1, bgMain, cBG, '▄')
		b.fill(r.X, midY, r.W, 1, cText, bgMain, ' ')
		b.fill(r.X, r.Y+r.H-1, r.W, 1, bgMain, cBG, '▀')
	default:
		b.fill(r.X, r.Y, r.W, r.H, cText, bgMain, ' ')
	}
	labelX := r.X + (r.W-len(label))/2
	if labelX < r.X {
		labelX = r.X
	}
	b.text(labelX, midY, fg, bgMain, label)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return strings.TrimRight(string(r[:w-1]), " ") + "…"
}
