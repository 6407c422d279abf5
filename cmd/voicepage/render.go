package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"voicepage/internal/config"
	"voicepage/internal/usecase"
	ucpage "voicepage/internal/usecase/page"
)

var renderOpts struct {
	title   string
	voice   string
	lang    string
	output  string
	message string
	limit   int
}

// renderCmd renders one page from a file, stdin or a Gmail message.
var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render a text file (or a Gmail message) to an HTML page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := buildServices(ctx, config.Load(), renderOpts.lang)
		if err != nil {
			return err
		}
		defer svc.Close()

		var out *ucpage.RenderOutput
		if renderOpts.message != "" {
			repo, err := svc.messageRepository(ctx)
			if err != nil {
				return err
			}
			uc := usecase.Logged[ucpage.RenderFromMessageInput, ucpage.RenderOutput]("render-message", ucpage.NewRenderFromMessage(repo, svc.fromText))
			out, err = uc.Execute(ctx, &ucpage.RenderFromMessageInput{
				MessageID:  renderOpts.message,
				LimitChars: renderOpts.limit,
				Voice:      renderOpts.voice,
			})
			if err != nil {
				return err
			}
		} else {
			if len(args) == 0 {
				return errors.New("a file argument or --message is required")
			}
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			title := renderOpts.title
			if title == "" && args[0] != "-" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			uc := usecase.Logged[ucpage.RenderFromTextInput, ucpage.RenderOutput]("render-text", svc.fromText)
			out, err = uc.Execute(ctx, &ucpage.RenderFromTextInput{
				Title: title,
				Text:  text,
				Voice: renderOpts.voice,
			})
			if err != nil {
				return err
			}
		}

		path := out.Path
		if renderOpts.output != "" {
			if err := os.WriteFile(renderOpts.output, out.HTML, 0o644); err != nil {
				return errors.Wrap(err, "write output")
			}
			path = renderOpts.output
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func readInput(stdin io.Reader, arg string) (string, error) {
	var (
		b   []byte
		err error
	)
	if arg == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.title, "title", "", "page title (defaults to the file name)")
	f.StringVar(&renderOpts.voice, "voice", "", "override the configured voice")
	f.StringVar(&renderOpts.lang, "lang", "en", "value of <html lang>")
	f.StringVarP(&renderOpts.output, "output", "o", "", "also write the page to this path")
	f.StringVar(&renderOpts.message, "message", "", "render the Gmail message with this id instead of a file")
	f.IntVar(&renderOpts.limit, "limit", 0, "truncate message text to this many characters")
}
