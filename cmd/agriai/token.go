package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/auth"
)

var (
	tokenName string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a session token signed with auth.jwt_secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Display name stored in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default auth.token_ttl)")
}

func runToken(cmd *cobra.Command, args []string) error {
	jm, err := auth.NewJWTManager(appCfg.Auth)
	if err != nil {
		return err
	}
	token, err := jm.GenerateToken(cmd.Context(), args[0], tokenName, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
