package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockSentinel/internal/notifier"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var noServer bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily alert scheduler, Telegram commands and the dashboard",
	RunE:  runDaemon,
}

func init() {
	runCmd.Flags().BoolVar(&noServer, "no-server", false, "do not start the HTTP dashboard")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rec := a.recorder()
	defer rec.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var tn *notifier.TelegramNotifier
	var msg scheduler.Messenger
	if cfg.Alerts.Enabled {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		msg = tn
	} else {
		log.Warn().Msg("alerts disabled, analysis results are only served over HTTP")
	}

	sched := scheduler.NewScheduler(ctx, a.analyzer, msg, rec, a.symbols, cfg.AlertOptions(), cfg.Location())
	if err := sched.Register(cfg.AlertSpec()); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	var srv *server.Server
	if !noServer && cfg.Server.Listen != "" {
		srv = server.New(cfg.Server.Listen, sched)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("http server")
				cancel()
			}
		}()
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, executing alert task now")
		go func() {
			if err := sched.RunAlertNow(scheduler.TriggerStartup); err != nil {
				log.Error().Err(err).Msg("startup run")
			}
		}()
	}

	log.Info().Str("alert_spec", cfg.AlertSpec()).Str("timezone", cfg.Location().String()).Msg("StockSentinel is running, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")

	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}
	return nil
}
