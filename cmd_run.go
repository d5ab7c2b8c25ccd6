package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pysetup/internal/config"
	"pysetup/internal/engine"
	"pysetup/internal/ui"
	"pysetup/internal/workflow"
)

func runCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole setup sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd.Context(), opts, "", yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Answer yes to every question")
	return cmd
}

func stepCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	var ids []string
	for _, def := range workflow.SetupStepDefinitions() {
		ids = append(ids, string(def.ID))
	}
	cmd := &cobra.Command{
		Use:       "step <" + strings.Join(ids, "|") + ">",
		Short:     "Run a single setup step",
		Args:      cobra.ExactArgs(1),
		ValidArgs: ids,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := workflow.StepID(args[0])
			if _, ok := workflow.LookupStep(id); !ok {
				return fmt.Errorf("%w: %q (valid: %s)", engine.ErrUnknownStep, args[0], strings.Join(ids, ", "))
			}
			return runHeadless(cmd.Context(), opts, id, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Answer yes to every question")
	return cmd
}

// runHeadless runs a plan with line output. An empty id runs every step.
func runHeadless(parent context.Context, opts *globalOptions, id workflow.StepID, yes bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	eng, cleanup, err := opts.openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	hooks := engine.Hooks{Confirm: confirmFunc(yes), Observer: &stepPrinter{total: planSize(cfg, id)}}

	fmt.Fprintln(os.Stderr, ui.InfoMsg("Target: %s", eng.Target.Name))
	stopFollow := ui.Follow(eng.Log, os.Stdout)
	var rep workflow.Report
	if id == "" {
		rep, err = eng.Run(ctx, cfg, hooks)
	} else {
		rep, err = eng.RunStep(ctx, cfg, id, hooks)
	}
	stopFollow()
	if err != nil {
		return err
	}
	return reportError(rep)
}

func planSize(cfg config.Config, id workflow.StepID) int {
	if id != "" {
		return 1
	}
	return len(engine.PlanDefs(cfg))
}

func confirmFunc(yes bool) workflow.ConfirmFunc {
	return func(ctx context.Context, question string) bool {
		if yes {
			return true
		}
		ok, err := ui.Confirm(question, "use --yes to accept")
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.WarnMsg("%v", err))
			return false
		}
		return ok
	}
}

func reportError(rep workflow.Report) error {
	if rep.OK() {
		fmt.Fprintln(os.Stderr, ui.SuccessMsg("Setup completed"))
		return nil
	}
	i := rep.Status.Index
	if i < 0 || i >= len(rep.Results) {
		return errors.New("setup failed")
	}
	res := rep.Results[i]
	return fmt.Errorf("step %d (%s) failed: %s", i+1, res.Def.Label, res.Outcome.Reason)
}

// stepPrinter prints step transitions on stderr.
type stepPrinter struct {
	total int
}

func (p *stepPrinter) StepStarted(index int, def workflow.StepDef) {
	fmt.Fprintln(os.Stderr, ui.InfoMsg("[%d/%d] %s", index+1, p.total, ui.Bold(def.Label)))
}

func (p *stepPrinter) StepProgress(int, float64) {}

func (p *stepPrinter) StepFinished(index int, def workflow.StepDef, out workflow.Outcome) {
	if out.OK {
		fmt.Fprintln(os.Stderr, ui.SuccessMsg("%s", def.Label))
		return
	}
	fmt.Fprintln(os.Stderr, ui.ErrorMsg("%s: %s", def.Label, out.Reason))
}
