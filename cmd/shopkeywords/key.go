package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shopkeywords-engine/internal/secrets"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Etsy API key stored in the OS keychain",
	}

	set := &cobra.Command{
		Use:   "set <api-key>",
		Short: "Store the API key in the OS keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("api key is empty")
			}
			if err := secrets.SetAPIKey(args[0]); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key stored in keychain")
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the API key from the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.DeleteAPIKey(); err != nil {
				return fmt.Errorf("delete api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed from keychain")
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}
