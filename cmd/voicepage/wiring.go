package main

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"voicepage/internal/config"
	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/message"
	"voicepage/internal/domain/page"
	"voicepage/internal/infrastructure/drive"
	"voicepage/internal/infrastructure/gmail"
	"voicepage/internal/infrastructure/googleauth"
	"voicepage/internal/infrastructure/storage"
	openaitts "voicepage/internal/infrastructure/tts/openai"
	"voicepage/internal/infrastructure/tts/pipeline"
	"voicepage/internal/render"
	ucpage "voicepage/internal/usecase/page"
)

// services is everything the commands need, built from Config.
type services struct {
	cfg      *config.Config
	synth    *pipeline.Pipeline
	pages    *storage.PageStore
	audios   *storage.FileStore
	fromText *ucpage.RenderFromText
	closers  []func() error
}

func (s *services) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Printf("[app] close: %v", err)
		}
	}
}

func buildServices(ctx context.Context, cfg *config.Config, lang string) (*services, error) {
	ttsCfg, err := config.LoadTTSConfig(cfg.TTSConfigPath)
	if err != nil {
		return nil, err
	}
	base, err := openaitts.NewSynthesizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, ttsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "tts synthesizer init")
	}

	s := &services{cfg: cfg}

	var c audio.Cache
	if cfg.RedisAddr != "" {
		client, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// synthesis still works without the cache
			log.Printf("[cache] disabled: %v", err)
		} else {
			log.Printf("[cache] using redis %s ttl=%s", cfg.RedisAddr, cfg.CacheTTL)
			c = storage.NewRedisCache(client, cfg.CacheTTL)
			s.closers = append(s.closers, client.Close)
		}
	}
	s.synth = pipeline.New(base, ttsCfg, c)

	r, err := render.New(lang)
	if err != nil {
		return nil, err
	}
	s.pages = storage.NewPageStore(cfg.PageDir)
	s.audios = storage.NewFileStore(cfg.AudioDir)
	s.fromText = ucpage.NewRenderFromText(s.synth, r, s.pages, s.audios)
	return s, nil
}

func (s *services) googleAuth() (*googleauth.GoogleAuth, error) {
	return googleauth.NewGoogleAuth(s.cfg.CredentialsPath, s.cfg.GmailTokenPath)
}

// messageRepository returns the Gmail-backed repository, or an error when
// credentials or token are missing.
func (s *services) messageRepository(ctx context.Context) (message.Repository, error) {
	ga, err := s.googleAuth()
	if err != nil {
		return nil, err
	}
	srv, err := ga.BuildGmailService(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "gmail service (run `voicepage auth` first)")
	}
	return gmail.NewMessageRepository(srv), nil
}

// publisher returns the Drive uploader when uploads are enabled, else nil.
func (s *services) publisher(ctx context.Context) (page.Publisher, error) {
	if !s.cfg.DriveUploadEnabled {
		return nil, nil
	}
	ga, err := s.googleAuth()
	if err != nil {
		return nil, err
	}
	srv, err := ga.BuildDriveService(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "drive service")
	}
	return drive.NewUploader(srv, s.cfg.DriveFolderID), nil
}
