package components

func Render(state ViewState) string {
	if state.W <= 0 || state.H <= 0 {
		return ""
	}

	b := newCanvas(state.W, state.H)
	b.grid(6, 3)

	layout, ok := ComputeLayout(state.W, state.H, state.Phase, len(state.Rows))
	if !ok {
		b.text(1, 0, cText, cBG, "Terminal too small")
		return b.String()
	}

	if layout.LogoX >= 0 {
		b.glyphLines(layout.LogoX+2, layout.LogoY, cAccent, cBG, logoMark)
		textY := layout.LogoY + len(logoMark) + 1
		b.glyphLines(layout.LogoX, textY, cBlue, cBG, logoText)
		b.glyphs(layout.LogoX, textY+len(logoText), cSub, cBG, logoTag)
	}

	switch state.Phase {
	case PhaseLog:
		drawLogCard(state, b, layout.Card.X, layout.Card.Y, layout.Card.W, layout.Card.H)
		if state.Confirm != "" {
			drawConfirm(state.Confirm, b, layout.Card)
		}
	default:
		drawFormCard(state, b, layout.Card.X, layout.Card.Y, layout.Card.W, layout.Card.H)
	}

	return b.String()
}
