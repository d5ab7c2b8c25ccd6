package components

const (
	RunLabel    = "Run setup"
	FinishLabel = "Finish"
)

type Phase int

const (
	PhaseForm Phase = iota
	PhaseLog
)

type StepState int

const (
	StepPending StepState = iota
	StepRunning
	StepDone
	StepFailed
)

type Step struct {
	Label    string
	State    StepState
	Err      string
	Progress float64
}

type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

type Layout struct {
	LogoX int
	LogoY int
	Card  Rect
}

// FormRow is one line of the settings card. A row is a text field, a
// toggle, or a choice between fixed values.
type FormRow struct {
	Label string
	Field Field

	Toggle bool
	On     bool

	Choices []string
	Choice  int
}

// Value is the row's text, or the selected choice.
func (r FormRow) Value() string {
	if len(r.Choices) > 0 {
		return r.Choices[clamp(r.Choice, 0, len(r.Choices)-1)]
	}
	return r.Field.ValueString()
}

type ViewState struct {
	W int
	H int

	Focus     int
	Phase     Phase
	LogScroll int
	Working   bool
	Submitted bool
	Target    string
	Runtime   string
	Notice    string
	Err       string
	BtnDown   bool
	BtnHover  bool

	Rows []FormRow

	Steps       []Step
	Overall     float64
	LogLines    []string
	SpinnerRune rune

	// Confirm is a pending yes/no question drawn over the log card.
	Confirm string
}
