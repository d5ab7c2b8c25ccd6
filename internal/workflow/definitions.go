package workflow

const (
	StepVerifyRuntime     StepID = "runtime"
	StepCloneRepository   StepID = "clone"
	StepCreateEnvironment StepID = "env"
	StepInstallDeps       StepID = "deps"
	StepGenerateLaunchers StepID = "launchers"
)

func SetupStepDefinitions() []StepDef {
	return []StepDef{
		{ID: StepVerifyRuntime, Label: "Verify or install Python"},
		{ID: StepCloneRepository, Label: "Clone repository"},
		{ID: StepCreateEnvironment, Label: "Create virtual environment"},
		{ID: StepInstallDeps, Label: "Install dependencies"},
		{ID: StepGenerateLaunchers, Label: "Generate launchers"},
	}
}

// LookupStep finds a definition by id.
func LookupStep(id StepID) (StepDef, bool) {
	for _, def := range SetupStepDefinitions() {
		if def.ID == id {
			return def, true
		}
	}
	return StepDef{}, false
}

func StepsFor(defs []StepDef) []Step {
	steps := make([]Step, 0, len(defs))
	for _, def := range defs {
		steps = append(steps, Step{
			ID:    def.ID,
			Label: def.Label,
		})
	}
	return steps
}

func DefaultSetupSteps() []Step {
	return StepsFor(SetupStepDefinitions())
}
