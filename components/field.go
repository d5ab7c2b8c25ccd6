package components

import tea "github.com/charmbracelet/bubbletea"

// Field is a single-line text editor.
type Field struct {
	Placeholder string

	Value  []rune
	Cursor int
}

func NewField(placeholder, value string) Field {
	f := Field{Placeholder: placeholder}
	f.SetValue(value)
	return f
}

func (f *Field) ValueString() string { return string(f.Value) }

// SetValue replaces the contents and moves the cursor to the end.
func (f *Field) SetValue(s string) {
	f.Value = []rune(s)
	f.Cursor = len(f.Value)
}

func (f *Field) HandleKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyLeft:
		f.Cursor = clamp(f.Cursor-1, 0, len(f.Value))
	case tea.KeyRight:
		f.Cursor = clamp(f.Cursor+1, 0, len(f.Value))
	case tea.KeyHome, tea.KeyCtrlA:
		f.Cursor = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		f.Cursor = len(f.Value)
	case tea.KeyCtrlU:
		f.Value = append([]rune(nil), f.Value[f.Cursor:]...)
		f.Cursor = 0
	case tea.KeyBackspace:
		if f.Cursor > 0 && len(f.Value) > 0 {
			f.Value = append(f.Value[:f.Cursor-1], f.Value[f.Cursor:]...)
			f.Cursor--
		}
	case tea.KeyDelete:
		if f.Cursor < len(f.Value) {
			f.Value = append(f.Value[:f.Cursor], f.Value[f.Cursor+1:]...)
		}
	case tea.KeySpace:
		f.insert([]rune{' '})
	case tea.KeyRunes:
		f.insert(msg.Runes)
	}
	f.Cursor = clamp(f.Cursor, 0, len(f.Value))
}

func (f *Field) insert(ins []rune) {
	if len(ins) == 0 {
		return
	}
	buf := make([]rune, 0, len(f.Value)+len(ins))
	buf = append(buf, f.Value[:f.Cursor]...)
	buf = append(buf, ins...)
	buf = append(buf, f.Value[f.Cursor:]...)
	f.Value = buf
	f.Cursor += len(ins)
}

// drawInto renders the visible window of the value, scrolled so the cursor
// stays in view while focused.
func (f *Field) drawInto(b *canvas, x, y, w int, focused bool) {
	if w < 1 {
		return
	}
	b.hline(x, y, w, cText, cBG, ' ')

	val := f.Value
	valFG := cText
	if len(val) == 0 && !focused {
		val = []rune(f.Placeholder)
		valFG = cSub
	}

	cur := clamp(f.Cursor, 0, len(f.Value))
	start := 0
	if focused && cur >= w {
		start = cur - (w - 1)
	}

	for i := 0; i < w; i++ {
		idx := start + i
		r := ' '
		if idx < len(val) {
			r = val[idx]
		}
		fg, bg := valFG, cBG
		if focused && i == clamp(cur-start, 0, w-1) {
			fg, bg = cBG, cAccent
		}
		b.put(x+i, y, r, fg, bg)
	}
}
