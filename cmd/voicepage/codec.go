package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"voicepage/internal/domain/audio"
)

var encodeFormat string

// encodeCmd prints stdin as base64, or as a data: URI with --format.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Base64-encode stdin for embedding in a template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if encodeFormat == "" {
			fmt.Fprintln(cmd.OutOrStdout(), audio.EncodeBase64(data))
			return nil
		}
		format, err := audio.ParseFormat(encodeFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), audio.DataURI(format, data))
		return nil
	},
}

// decodeCmd reverses encodeCmd; it accepts plain base64 or a data: URI.
var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode base64 (or a data: URI) from stdin to raw bytes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		s := strings.TrimSpace(string(in))

		var data []byte
		if strings.HasPrefix(s, "data:") {
			_, data, err = audio.ParseDataURI(s)
		} else {
			data, err = audio.DecodeBase64(s)
		}
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd, decodeCmd)
	encodeCmd.Flags().StringVar(&encodeFormat, "format", "", "emit a data: URI for this audio format (mp3, opus, aac, flac, wav, pcm)")
}
