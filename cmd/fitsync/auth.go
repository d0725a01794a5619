package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"fitsync/internal/authutil"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth <platform>",
		Short: "Run the interactive OAuth2 flow for an OAuth-based platform (strava, onedrive, intervals_icu)",
		Long: `Opens a local callback server and walks through the OAuth2
authorization flow for platform, then prints the resulting refresh
token as an environment variable to export. This module never persists
OAuth tokens to disk itself: per the env-only secrets design, paste the
printed line into your shell or secret manager and re-run fitsync.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platformID := args[0]
			pc, ok := cfg.Platforms[platformID]
			if !ok {
				return fmt.Errorf("platform %q is not configured", platformID)
			}

			oauthCfg, err := authutil.NewOAuthConfig(authutil.Config{
				Platform:     platformID,
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", authutil.CallbackPort),
			})
			if err != nil {
				return err
			}

			var extractAccountID func(*oauth2.Token) string
			if platformID == "strava" {
				extractAccountID = func(t *oauth2.Token) string { return authutil.ExtraNestedID(t, "athlete") }
			}

			result, err := authutil.Authenticate(cmd.Context(), platformID, oauthCfg, extractAccountID)
			if err != nil {
				return fmt.Errorf("authenticating with %s: %w", platformID, err)
			}

			// Wrap the fresh token in a TokenSource to confirm it is usable
			// and not already due for a refresh before handing it back to
			// the operator, the same check a long-lived adapter would make
			// before its first API call.
			ts := authutil.NewTokenSource(oauthCfg, result.Token, func(*oauth2.Token) error { return nil })
			if ts.IsExpired() {
				return fmt.Errorf("authutil: received an already-expired token for %s, try again", platformID)
			}

			envName := "FITSYNC_" + strings.ToUpper(platformID) + "_REFRESH_TOKEN"
			fmt.Printf("Authenticated with %s", platformID)
			if result.AccountID != "" {
				fmt.Printf(" as account %s", result.AccountID)
			}
			fmt.Println()
			fmt.Printf("export %s=%s\n", envName, ts.CurrentToken().RefreshToken)
			return nil
		},
	}
}
