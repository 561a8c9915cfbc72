package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"shopkeywords-engine/internal/config"
)

func newConfigCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config into the data dir unless one exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.EnsureUserConfig(s.dataDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(s.cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Report config errors and warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, e := range s.vr.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			for _, w := range s.vr.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if s.vr.OK() {
				fmt.Fprintf(out, "%s: ok\n", s.cfgPath)
			}
			return s.valid()
		},
	}

	cmd.AddCommand(initCmd, pathCmd, validateCmd)
	return cmd
}
