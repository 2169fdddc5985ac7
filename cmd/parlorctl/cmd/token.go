package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/parlorchat/parlor/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenSecret string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id> <name>",
	Short: "Mint a session token for a user",
	Long: `Mint a signed session token that a client can present in the
authenticate event when opening a WebSocket connection.

The signing secret must match the server's TOKEN_SECRET, otherwise the
server will reject the token.

Examples:
  parlorctl token user:abc123 alice
  parlorctl token user:abc123 alice --ttl 15m
  TOKEN_SECRET=s3cret parlorctl token user:abc123 alice`,
	Args: cobra.ExactArgs(2),
	Run:  tokenHandler,
}

func tokenHandler(cmd *cobra.Command, args []string) {
	secret := tokenSecret
	if secret == "" {
		secret = os.Getenv("TOKEN_SECRET")
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: a signing secret is required (--secret or TOKEN_SECRET)")
		os.Exit(1)
	}

	tokens := auth.NewTokenService(secret, tokenTTL)
	token, err := tokens.Issue(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Token signing secret (defaults to TOKEN_SECRET)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "How long the token stays valid")
	rootCmd.AddCommand(tokenCmd)
}
