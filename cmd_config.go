package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pysetup/internal/config"
	"pysetup/internal/ui"
)

func configCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(opts.configPath, config.Default()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, ui.SuccessMsg("Wrote %s", opts.configPath))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	var resolved bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if resolved {
				cfg = cfg.Resolved()
			}
			data, err := config.Marshal(opts.configPath, cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	showCmd.Flags().BoolVar(&resolved, "resolved", false, "Expand ~ and fill derived values")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the settings without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, ui.SuccessMsg("Settings are valid"))
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathCmd, validateCmd)
	return cmd
}
