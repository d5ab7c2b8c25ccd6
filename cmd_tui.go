package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pysetup/internal/app"
)

func tuiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive setup assistant (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
}

func runTUI(opts *globalOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	eng, cleanup, err := opts.openEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := newRuntimeServices(opts.configPath, cfg, eng)
	p := tea.NewProgram(app.NewModel(svc), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}
