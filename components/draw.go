package components

import "strings"

// canvas is a fixed-size cell grid. Writes outside it are dropped.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	c.fill(0, 0, w, h, cText, cBG, ' ')
	return c
}

func (c *canvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

func (c *canvas) put(x, y int, ch rune, fg, bg rgb) {
	if p := c.at(x, y); p != nil {
		*p = cell{ch: ch, fg: fg, bg: bg}
	}
}

// text writes s on one row and stops at a newline or the right edge.
func (c *canvas) text(x, y int, fg, bg rgb, s string) {
	c.write(x, y, fg, bg, s, false)
}

// glyphs is text that leaves the cells under spaces untouched, so the
// background grid shows through ascii art.
func (c *canvas) glyphs(x, y int, fg, bg rgb, s string) {
	c.write(x, y, fg, bg, s, true)
}

func (c *canvas) glyphLines(x, y int, fg, bg rgb, lines []string) {
	for i, ln := range lines {
		c.glyphs(x, y+i, fg, bg, ln)
	}
}

func (c *canvas) write(x, y int, fg, bg rgb, s string, skipSpaces bool) {
	if y < 0 || y >= c.h {
		return
	}
	for _, r := range s {
		if r == '\n' || x >= c.w {
			return
		}
		if !skipSpaces || r != ' ' {
			c.put(x, y, r, fg, bg)
		}
		x++
	}
}

func (c *canvas) hline(x, y, w int, fg, bg rgb, ch rune) {
	for i := 0; i < w; i++ {
		c.put(x+i, y, ch, fg, bg)
	}
}

func (c *canvas) vline(x, y, h int, fg, bg rgb, ch rune) {
	for i := 0; i < h; i++ {
		c.put(x, y+i, ch, fg, bg)
	}
}

func (c *canvas) fill(x, y, w, h int, fg, bg rgb, ch rune) {
	for i := 0; i < h; i++ {
		c.hline(x, y+i, w, fg, bg, ch)
	}
}

// box draws a rounded border; the interior is left as is.
func (c *canvas) box(x, y, w, h int, border rgb) {
	if w < 2 || h < 2 {
		return
	}
	c.hline(x+1, y, w-2, border, cBG, '─')
	c.hline(x+1, y+h-1, w-2, border, cBG, '─')
	c.vline(x, y+1, h-2, border, cBG, '│')
	c.vline(x+w-1, y+1, h-2, border, cBG, '│')
	c.put(x, y, '╭', border, cBG)
	c.put(x+w-1, y, '╮', border, cBG)
	c.put(x, y+h-1, '╰', border, cBG)
	c.put(x+w-1, y+h-1, '╯', border, cBG)
}

// grid paints the backdrop: faint lines every stepX columns and stepY rows.
func (c *canvas) grid(stepX, stepY int) {
	for y := 0; y < c.h; y++ {
		hy := stepY > 0 && y%stepY == 0
		for x := 0; x < c.w; x++ {
			vx := stepX > 0 && x%stepX == 0
			switch {
			case vx && hy:
				c.put(x, y, '┼', cGrid2, cBG)
			case vx:
				c.put(x, y, '│', cGrid, cBG)
			case hy:
				c.put(x, y, '─', cGrid, cBG)
			}
		}
	}
}

// String renders the canvas as rows of 24-bit ANSI text, emitting color
// codes only when they change within a row.
func (c *canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.w * c.h * 2)
	for y := 0; y < c.h; y++ {
		var fg, bg rgb
		fresh := true
		for _, cl := range c.cells[y*c.w : (y+1)*c.w] {
			if fresh || cl.fg != fg {
				sb.WriteString(ansiFG(cl.fg))
				fg = cl.fg
			}
			if fresh || cl.bg != bg {
				sb.WriteString(ansiBG(cl.bg))
				bg = cl.bg
			}
			fresh = false
			sb.WriteRune(cl.ch)
		}
		sb.WriteString(ansiReset)
		if y < c.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func maxLineLen(lines []string) int {
	m := 0
	for _, ln := range lines {
		m = max(m, len([]rune(ln)))
	}
	return m
}
