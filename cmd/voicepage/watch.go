package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"voicepage/internal/config"
	"voicepage/internal/infrastructure/storage"
	ucpage "voicepage/internal/usecase/page"
)

var watchOnce bool

// watchCmd polls Gmail and renders a page for each new matching message.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render pages for new Gmail messages on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := buildServices(ctx, cfg, "en")
		if err != nil {
			return err
		}
		defer svc.Close()

		repo, err := svc.messageRepository(ctx)
		if err != nil {
			return err
		}
		pub, err := svc.publisher(ctx)
		if err != nil {
			return err
		}
		w := ucpage.NewWatch(repo, ucpage.NewRenderFromMessage(repo, svc.fromText),
			storage.NewProcessedLog(cfg.ProcessedLog), pub, cfg.GmailQuery)

		run := func() {
			runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			out, err := w.RunOnce(runCtx)
			if err != nil {
				log.Printf("[watch] pass failed: %v", err)
				return
			}
			if !out.Skipped {
				log.Printf("[watch] message %s → %s", out.MessageID, out.Render.Path)
			}
		}

		if watchOnce {
			run()
			return nil
		}

		// a pass can outlast the interval; the next tick is dropped instead of overlapping
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
		entry, err := c.AddFunc(cfg.WatchSchedule, run)
		if err != nil {
			return errors.Wrapf(err, "invalid WATCH_SCHEDULE %q", cfg.WatchSchedule)
		}
		log.Printf("[watch] schedule %q query %q", cfg.WatchSchedule, cfg.GmailQuery)
		c.Start()
		// first pass goes through the same chain as scheduled ones
		go c.Entry(entry).WrappedJob.Run()

		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single pass and exit")
}
