package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/pkg/jwt"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		secret string
		issuer string
		userID string
		email  string
		roles  []string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set and --secret was not provided")
			}
			if issuer == "" {
				issuer = os.Getenv("JWT_ISSUER")
			}

			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				id = parsed
			}

			for _, role := range roles {
				switch role {
				case jwt.RoleOwner, jwt.RoleAdmin, jwt.RoleTenant:
				default:
					return fmt.Errorf("unknown role %q", role)
				}
			}

			token, err := jwt.NewService(secret, issuer, expiry).GenerateAccessToken(id, email, roles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user_id: %s\n", id)
			fmt.Fprintf(out, "token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Token issuer (defaults to JWT_ISSUER)")
	cmd.Flags().StringVar(&userID, "user", "", "User id (random when empty)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{jwt.RoleTenant}, "Roles: owner, admin, tenant")
	cmd.Flags().DurationVar(&expiry, "expiry", time.Hour, "Token lifetime")
	return cmd
}
