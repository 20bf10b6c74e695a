package cli

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizhub",
		Short: "Quiz platform backend for Quran and Seerat study groups",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err == nil {
				log.Println("loaded .env")
			}
		},
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCreateAdminCmd())
	return cmd
}
