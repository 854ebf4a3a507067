// Command admintoken prints an admin JWT for the settings and activity
// feed endpoints, signed with ADMIN_JWT_SECRET.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aiguard-backend/internal/config"
	"aiguard-backend/internal/middleware"
)

func newRootCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admintoken",
		Short: "Print an admin token for POST /api/config and /api/events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			token, err := middleware.NewJWTAuth(cfg.AdminJWTSecret).GenerateAdminToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
