package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestComputeLayout_FormRowsFitAboveButton(t *testing.T) {
	const rows = 13
	layout, ok := ComputeLayout(140, 40, PhaseForm, rows)
	if !ok {
		t.Fatalf("expected a layout")
	}
	if layout.Card.H != formTopPad+rows+formBottomPad {
		t.Fatalf("card height: got %d", layout.Card.H)
	}
	btn, ok := ButtonRect(layout.Card, RunLabel)
	if !ok {
		t.Fatalf("expected a run button")
	}
	last, ok := FormRowRect(layout.Card, rows-1)
	if !ok {
		t.Fatalf("last row does not fit")
	}
	if last.Y >= btn.Y-1 {
		t.Fatalf("last row %d overlaps notice/button at %d", last.Y, btn.Y)
	}
	if _, ok := FormRowRect(layout.Card, rows); ok {
		t.Fatalf("row past the end must not fit")
	}
}

func TestComputeLayout_TooSmall(t *testing.T) {
	if _, ok := ComputeLayout(30, 8, PhaseForm, 13); ok {
		t.Fatalf("expected no layout for a tiny terminal")
	}
	if _, ok := ComputeLayout(0, 0, PhaseLog, 0); ok {
		t.Fatalf("expected no layout for an empty terminal")
	}
}

func TestComputeLayout_NarrowHidesLogo(t *testing.T) {
	layout, ok := ComputeLayout(80, 40, PhaseLog, 0)
	if !ok {
		t.Fatalf("expected a layout")
	}
	if layout.LogoX != -1 {
		t.Fatalf("logo should be hidden at 80 columns, got x=%d", layout.LogoX)
	}
	if layout.Card.X+layout.Card.W > 80 {
		t.Fatalf("card overflows: %+v", layout.Card)
	}
}

func TestWrapLogLines(t *testing.T) {
	got := wrapLogLines([]string{"[10:00:00]   Collecting numpy", "abcdefghij", "one\ntwo"}, 8)
	want := []string{
		"[10:00:0",
		"  0]   C",
		"  ollect",
		"  ing nu",
		"  mpy",
		"abcdefgh",
		"  ij",
		"one",
		"two",
	}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestLogLineColor(t *testing.T) {
	testCases := []struct {
		line string
		want rgb
	}{
		{line: "[10:00:00] ERROR: Failed to clone repository", want: cErr},
		{line: "[10:00:00] Step 2 (Clone repository) failed: destination exists", want: cErr},
		{line: "[10:00:00] WARNING: Failed to upgrade pip, continuing...", want: cWarn},
		{line: "[10:00:00]   WARNING: cache disabled", want: cWarn},
		{line: "[10:00:00]   Collecting numpy", want: cSub},
		{line: "[10:00:00] Python found: python3", want: cText},
	}
	for _, tc := range testCases {
		if got := logLineColor(tc.line); got != tc.want {
			t.Fatalf("logLineColor(%q) = %v want %v", tc.line, got, tc.want)
		}
	}
}

func TestRender_FormAndLog(t *testing.T) {
	rows := []FormRow{
		{Label: "Python version", Choices: []string{"3.12.6", "3.11.9"}},
		{Label: "Repository URL", Field: NewField("https://github.com/you/app.git", "")},
		{Label: "Skip clone", Toggle: true, On: true},
	}
	out := Render(ViewState{W: 140, H: 40, Phase: PhaseForm, Rows: rows, Focus: 3})
	for _, want := range []string{"SETTINGS", "Run setup", "Python version", "3.12.6", "[x]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("form view missing %q", want)
		}
	}

	out = Render(ViewState{
		W: 140, H: 40, Phase: PhaseLog, Target: "local",
		Steps:    []Step{{Label: "Clone repository", State: StepDone}, {Label: "Create virtual environment", State: StepRunning, Progress: 0.5}},
		Overall:  0.75,
		LogLines: []string{"[10:00:00] Cloning https://github.com/acme/demo.git"},
		Confirm:  "Install the package manager?",
	})
	for _, want := range []string{"SETUP LOG", "Target: local", "Clone repository", "75%", "50%", "Cloning", "Install the package manager?", "[y] Yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log view missing %q", want)
		}
	}
}

func TestFieldHandleKey(t *testing.T) {
	f := NewField("", "numpy")
	f.HandleKey(tea.KeyMsg{Type: tea.KeySpace})
	f.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pytz")})
	if got := f.ValueString(); got != "numpy pytz" {
		t.Fatalf("after typing: %q", got)
	}
	f.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	f.HandleKey(tea.KeyMsg{Type: tea.KeyHome})
	f.HandleKey(tea.KeyMsg{Type: tea.KeyDelete})
	if got := f.ValueString(); got != "umpy pyt" {
		t.Fatalf("after editing: %q", got)
	}
	f.HandleKey(tea.KeyMsg{Type: tea.KeyEnd})
	f.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlU})
	if got := f.ValueString(); got != "" || f.Cursor != 0 {
		t.Fatalf("after ctrl+u: %q cursor=%d", got, f.Cursor)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("/Users/me/Projects/demo", 10); got != "/Users/me…" {
		t.Fatalf("truncate: %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate: %q", got)
	}
}

func TestCanvasClipsWrites(t *testing.T) {
	c := newCanvas(4, 2)
	c.text(2, 0, cText, cBG, "abcdef")
	c.text(-1, 1, cText, cBG, "xyz")
	c.glyphs(0, 0, cText, cBG, "q ")
	c.put(9, 9, '!', cText, cBG)

	var rows []string
	for y := 0; y < c.h; y++ {
		var sb strings.Builder
		for x := 0; x < c.w; x++ {
			sb.WriteRune(c.at(x, y).ch)
		}
		rows = append(rows, sb.String())
	}
	if rows[0] != "q ab" || rows[1] != "yz  " {
		t.Fatalf("rows = %q", rows)
	}
	if got := strings.Count(c.String(), ansiReset); got != 2 {
		t.Fatalf("resets = %d, want one per row", got)
	}
}
