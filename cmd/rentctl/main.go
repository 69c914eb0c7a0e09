package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rentctl",
	Short: "Operator tooling for the rental marketplace backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; it keeps secrets off the command line
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func newRootCmd() *cobra.Command {
	rootCmd.ResetCommands()
	rootCmd.AddCommand(secretCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(sweepCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
