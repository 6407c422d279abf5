package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voicepage",
	Short: "Turn text into an HTML page with its speech embedded",
	Long: `voicepage synthesizes speech for a text with the OpenAI TTS API and
renders a single self-contained HTML page. The audio is base64-encoded and
embedded as a data: URI, so the page needs no separate audio file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
