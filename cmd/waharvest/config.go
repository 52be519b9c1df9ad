package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/matheus3301/waharvest/internal/config"
	"github.com/matheus3301/waharvest/internal/report"
	"github.com/spf13/cobra"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or print the configuration",
	}
	cmd.AddCommand(newConfigInitCmd(g), newConfigShowCmd(g))
	return cmd
}

func newConfigInitCmd(g *globals) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(g.cfgPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", g.cfgPath)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := config.Save(g.cfgPath, config.Default()); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			report.NewPrinter(cmd.ErrOrStderr()).Success("Wrote %s", g.cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, environment overrides included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.json {
				return report.JSON(cmd.OutOrStdout(), g.cfg)
			}
			return config.Write(cmd.OutOrStdout(), g.cfg)
		},
	}
}
