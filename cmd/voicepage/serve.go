package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	gmailapi "google.golang.org/api/gmail/v1"

	"voicepage/internal/config"
	"voicepage/internal/infrastructure/gmail"
	"voicepage/internal/interface/http/handler"
	ucpage "voicepage/internal/usecase/page"
)

var serveLang string

// serveCmd runs the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := buildServices(ctx, cfg, serveLang)
		if err != nil {
			return err
		}
		defer svc.Close()

		// message routes answer 503 until a token exists, then start working
		// without a restart
		repo := gmail.NewLazyRepository(func() (*gmailapi.Service, error) {
			ga, err := svc.googleAuth()
			if err != nil {
				return nil, err
			}
			return ga.BuildGmailService(ctx)
		})
		h := handler.Handlers{
			Pages:    handler.NewPageHandler(svc.fromText, ucpage.NewRenderFromMessage(repo, svc.fromText), svc.pages),
			TTS:      handler.NewTTSHandler(svc.synth),
			Messages: handler.NewMessageListHandler(repo),
		}

		if ga, err := svc.googleAuth(); err != nil {
			log.Printf("[auth] browser flow disabled: %v", err)
		} else {
			h.Auth = handler.NewAuthHandler(ga)
		}

		app := handler.NewApp(h)
		go func() {
			<-ctx.Done()
			_ = app.ShutdownWithContext(context.Background())
		}()

		log.Printf("[server] listening on %s", cfg.ListenAddr)
		return app.Listen(cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveLang, "lang", "en", "value of <html lang> in rendered pages")
}
