package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pysetup/internal/config"
	"pysetup/internal/engine"
	"pysetup/internal/history"
	"pysetup/internal/logging"
	"pysetup/internal/logsink"
	"pysetup/internal/ui"
)

type globalOptions struct {
	configPath    string
	historyPath   string
	target        string
	debug         bool
	noInteraction bool
	noHistory     bool
}

func main() {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "pysetup",
		Short:         "Set up a Python development environment for a project",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.debug {
				_ = os.Setenv(logging.EnvLogLevel, "debug")
			}
			if cmd.Name() == "tui" || cmd == cmd.Root() {
				logging.ConfigureTUI()
			} else {
				logging.ConfigureRuntime()
			}
			ui.ConfigureInteraction(opts.noInteraction)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.Path(), "Settings file (.toml, .yaml or .yml)")
	root.PersistentFlags().StringVar(&opts.historyPath, "history-db", history.Path(), "Run history database")
	root.PersistentFlags().StringVar(&opts.target, "target", "", "Run on user@host[:port] over SSH instead of this machine")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.noInteraction, "no-interaction", false, "Never prompt")
	root.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Do not record runs")

	root.AddCommand(tuiCmd(opts))
	root.AddCommand(runCmd(opts))
	root.AddCommand(stepCmd(opts))
	root.AddCommand(configCmd(opts))
	root.AddCommand(historyCmd(opts))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("%v", err))
		os.Exit(1)
	}
}

// loadConfig reads the settings file and applies flag overrides.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.target != "" {
		cfg.Remote.Target = o.target
	}
	return cfg, nil
}

// openEngine connects to the target and opens the history store. History
// problems are logged and never block a run.
func (o *globalOptions) openEngine(cfg config.Config) (*engine.Engine, func(), error) {
	target, err := engine.Connect(cfg.Resolved().Remote)
	if err != nil {
		return nil, nil, err
	}
	eng := engine.New(target, logsink.New())

	var store *history.Store
	if !o.noHistory {
		store, err = history.Open(o.historyPath)
		if err != nil {
			log.Warn().Err(err).Str("path", o.historyPath).Msg("history disabled")
		} else {
			eng.History = store
		}
	}

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
		if err := target.Close(); err != nil {
			log.Debug().Err(err).Msg("close target")
		}
	}
	return eng, cleanup, nil
}
