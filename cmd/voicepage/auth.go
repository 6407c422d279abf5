package main

import (
	"log"

	"github.com/spf13/cobra"

	"voicepage/internal/config"
	"voicepage/internal/infrastructure/googleauth"
)

var authAddr string

// authCmd runs the OAuth loopback flow and stores the token.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail read and Drive upload access",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ga, err := googleauth.NewGoogleAuth(cfg.CredentialsPath, cfg.GmailTokenPath)
		if err != nil {
			return err
		}
		if err := ga.ObtainTokenInteractive(cmd.Context(), authAddr); err != nil {
			return err
		}
		log.Printf("[auth] token saved to %s", cfg.GmailTokenPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.Flags().StringVar(&authAddr, "addr", "127.0.0.1:8080", "loopback address for the OAuth redirect")
}
