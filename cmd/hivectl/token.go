package main

import (
	"fmt"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/config"
	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		userID string
		name   string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the dev match server",
		Long: `Mint an HS256 access token signed with JWT_SECRET, accepted by
the dev match server's /ws endpoint.

Examples:
  hivectl token --name alice
  hivectl token --user 602c977d-168a-4771-8599-9f35ed1abd41 --ttl 2h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if secret == "" {
				secret = cfg.JWTSecret
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenTTL
			}

			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid user id: %w", err)
				}
				id = parsed
			}

			token, err := auth.GenerateAccessToken(secret, id, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id to embed (default: random)")
	cmd.Flags().StringVar(&name, "name", "player", "Display name to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default $ACCESS_TOKEN_TTL_MINUTES)")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default $JWT_SECRET)")

	return cmd
}
