package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/app"
	"github.com/Spok95/siakad/internal/backupclient"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/jobs"
	"github.com/Spok95/siakad/internal/models"
	"github.com/Spok95/siakad/internal/observability"
	"github.com/Spok95/siakad/internal/tg"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and serve the REST API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()
	log := e.log.Base

	flush, err := observability.InitSentry(e.cfg.SentryDSN, e.cfg.Env, version)
	if err != nil {
		log.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	database, err := e.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	srv := app.NewServer(database, log, []byte(e.cfg.JWTSecret), e.cfg.Location)
	srv.Institution = e.cfg.InstitutionName
	srv.Backup = backupclient.New(e.cfg.BackupURL)
	srv.LogLevel = e.log.LevelHandler()
	if e.cfg.NotifyEnabled() {
		n, err := tg.NewNotifier(e.cfg.BotToken, e.cfg.NotifyChatIDs, log)
		if err != nil {
			// API остаётся рабочим и без уведомлений
			log.Error("telegram notifier disabled", zap.Error(err))
			observability.CaptureErr(err)
		} else {
			srv.Notifier = n
		}
	}

	runner := jobs.New(ctx)
	runner.Every(e.cfg.AnnouncementTTL, "announcement_sweep", jobs.AnnouncementSweep(
		func(ctx context.Context, today models.Date) (int64, error) {
			return db.PurgeExpired(ctx, database, today)
		}, e.cfg.Location, log, nil))

	hs := app.StartHTTP(ctx, e.cfg.HTTPAddr, srv.Routes(), log)
	log.Info("siakad started", zap.String("addr", e.cfg.HTTPAddr))

	<-ctx.Done()
	log.Info("shutting down")
	hs.Wait()
	return nil
}
