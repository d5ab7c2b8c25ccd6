package components

func ButtonRect(cardR Rect, label string) (Rect, bool) {
	btnW := len(label) + buttonPadX*2
	btnH := 3
	if cardR.W < btnW+2 || cardR.H < btnH+2 {
		return Rect{}, false
	}

	btnY := cardR.Y + cardR.H - 1 - btnH
	btnX := cardR.X + (cardR.W-btnW)/2

	minX := cardR.X + 1
	maxX := cardR.X + cardR.W - 1 - btnW
	if btnX < minX {
		btnX = minX
	}
	if btnX > maxX {
		btnX = maxX
	}
	if btnY < cardR.Y+1 || btnY+btnH > cardR.Y+cardR.H-1 {
		return Rect{}, false
	}

	return Rect{X: btnX, Y: btnY, W: btnW, H: btnH}, true
}

// FormRowRect is the editable area of form row i.
func FormRowRect(cardR Rect, i int) (Rect, bool) {
	x := cardR.X + 2 + formLabelW
	w := cardR.W - 4 - formLabelW
	y := cardR.Y + formTopPad + i
	if w < 4 || y >= cardR.Y+cardR.H-formBottomPad {
		return Rect{}, false
	}
	return Rect{X: x, Y: y, W: w, H: 1}, true
}

// LogArea returns the first row and the number of rows available for log
// lines in a log card listing steps.
func LogArea(cardR Rect, steps int) (int, int) {
	top := cardR.Y + 4 + steps + 2
	bottom := cardR.Y + cardR.H - 3
	if btnR, ok := ButtonRect(cardR, FinishLabel); ok {
		bottom = btnR.Y - 2
	}
	avail := bottom - top + 1
	if avail < 1 {
		avail = 1
	}
	return top, avail
}

func logoSize() (int, int) {
	markW := maxLineLen(logoMark)
	textW := maxLineLen(logoText)
	return max(markW, textW), len(logoMark) + len(logoText) + 2
}

// ComputeLayout places the logo column and the card. rows is the number of
// form rows and only matters for PhaseForm.
func ComputeLayout(w, h int, phase Phase, rows int) (Layout, bool) {
	if w <= 0 || h <= 0 {
		return Layout{}, false
	}

	logoW, logoH := logoSize()

	containerW := containerWFixed
	if containerW > w-4 {
		containerW = w - 4
	}

	leftW := containerW - colGap - cardWFixed
	showLogo := leftW >= logoW
	if !showLogo {
		leftW = 0
	}
	cardW := containerW - leftW
	if showLogo {
		cardW -= colGap
	}
	if cardW > cardWFixed {
		cardW = cardWFixed
	}
	if cardW < cardMinW {
		return Layout{}, false
	}
	used := cardW
	if showLogo {
		used += leftW + colGap
	}
	cx0 := (w - used) / 2
	if cx0 < 0 {
		cx0 = 0
	}

	cardH := formTopPad + rows + formBottomPad
	maxH := h - 4
	if phase == PhaseLog {
		cardH = 30
		maxH = h - 2
	}
	if cardH > maxH {
		cardH = maxH
	}
	if cardH < 9 {
		return Layout{}, false
	}

	blockH := cardH
	if showLogo {
		blockH = max(logoH, cardH)
	}
	baseY := (h - blockH) / 2
	if baseY < 1 {
		baseY = 1
	}

	cardX := cx0
	l := Layout{LogoX: -1, LogoY: -1}
	if showLogo {
		l.LogoX = cx0 + 2
		l.LogoY = baseY + (blockH-logoH)/2
		cardX = cx0 + leftW + colGap
	}
	l.Card = Rect{X: cardX, Y: baseY + (blockH-cardH)/2, W: cardW, H: cardH}
	return l, true
}

// LogLineCount is the number of rows lines occupy in a log card once wrapped.
func LogLineCount(cardR Rect, lines []string) int {
	return len(wrapLogLines(lines, cardR.W-4))
}
