package main

import (
	"fmt"

	"github.com/rentnest/marketplace-backend/internal/utils"
	"github.com/spf13/cobra"
)

func secretCmd() *cobra.Command {
	var bytes int
	var name string

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random secret for JWT_SECRET or similar settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := utils.GenerateSecret(bytes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, secret)
			return nil
		},
	}

	cmd.Flags().IntVar(&bytes, "bytes", utils.MinSecretBytes, "Secret length in bytes")
	cmd.Flags().StringVar(&name, "name", "JWT_SECRET", "Environment variable name to print")
	return cmd
}
