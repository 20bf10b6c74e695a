package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/config"
	"github.com/ilmhub/quizhub/internal/db"
)

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			database, err := db.Open(cmd.Context(), db.Driver(cfg.DBDriver), cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()

			svc := auth.NewService(database, auth.NewTokenService(cfg.JWTSecret))
			u, err := svc.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("admin created: %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
