package components

import "fmt"

type rgb struct{ r, g, b int }

type cell struct {
	ch rune
	fg rgb
	bg rgb
}

var (
	cBG     = rgb{0, 0, 0}
	cAccent = rgb{0xFF, 0xD4, 0x3B}
	cBlue   = rgb{0x4B, 0x8B, 0xBE}
	cText   = rgb{0xEE, 0xEE, 0xEE}
	cSub    = rgb{0x88, 0x88, 0x88}
	cGrid   = rgb{0x14, 0x16, 0x1A}
	cGrid2  = rgb{0x22, 0x26, 0x2C}
	cWarn   = rgb{0xFF, 0xB0, 0x4D}
	cErr    = rgb{0xFF, 0x4D, 0x4D}
)

func ansiFG(c rgb) string { return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.r, c.g, c.b) }
func ansiBG(c rgb) string { return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.r, c.g, c.b) }

const ansiReset = "\x1b[0m"

const (
	buttonPadX = 2
	logoTag    = "Python workspace setup"

	containerWFixed = 124
	cardWFixed      = 74
	colGap          = 6
	cardMinW        = 48

	formHeaderText = " 1 - SETTINGS"
	logHeaderText  = " 2 - SETUP LOG"
	formLabelW     = 20

	// Rows above the first form row: border, header, blank.
	formTopPad = 3
	// Rows below the last form row: blank, notice, button, border.
	formBottomPad = 6
)

var (
	logoMark = []string{
		"  .--.",
		" ( oo )",
		"  |~~|__",
		"  '--'  )",
		"    (__/",
	}
	logoText = []string{
		" ____  _  _  ____  ____  ____  _  _  ____ ",
		"(  _ \\( \\/ )/ ___)(  __)(_  _)/ )( \\(  _ \\",
		" ) __/ )  / \\___ \\ ) _)   )(  ) \\/ ( ) __/",
		"(__)  (__/  (____/(____) (__) \\____/(__)  ",
	}
)
