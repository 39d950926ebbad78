package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"datasets/internal/domain/auth"
)

// NewTokenCommand creates the token command, which signs a bearer token for
// local development against a server running with AUTHENTICATION_ON.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		secret string
		email  string
		roles  []string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a development bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			cfg := auth.DefaultJWTConfig(secret)
			cfg.AccessTokenTTL = ttl

			token, expiresAt, err := auth.NewJWTService(cfg).GenerateAccessToken(args[0], email, roles)
			if err != nil {
				return err
			}

			out := map[string]any{"token": token, "expires_at": expiresAt.UTC()}
			return rootOpts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role claim (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
