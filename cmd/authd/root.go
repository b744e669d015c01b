package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the auth service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authd",
		Short: "Credential-issuance service",
		Long: `authd registers accounts, authenticates username/password pairs
and issues signed access tokens. Configuration is read from the environment
and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
