// Package app wires every component together and owns the process
// lifecycle: startup replay, controller goroutines, and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/config"
	"github.com/adred-codev/adwatch/internal/controller"
	"github.com/adred-codev/adwatch/internal/metrics"
	"github.com/adred-codev/adwatch/internal/monitor"
	"github.com/adred-codev/adwatch/internal/notifier"
	"github.com/adred-codev/adwatch/internal/resource"
	"github.com/adred-codev/adwatch/internal/storage"
)

// controllerRunner is satisfied by every ingress transport.
type controllerRunner interface {
	Start(ctx context.Context)
}

// App holds every long-lived component and drives the application's
// start/stop sequence.
type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics

	subs     *storage.SubscriptionStore
	states   *storage.RuntimeStateStore
	monitors *monitor.Manager

	controllers []controllerRunner
	reporter    *resource.Reporter
	metricsSrv  *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds every component from cfg but does not yet start anything.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	m := metrics.New()

	var persistence storage.Persistence
	if cfg.DisableSaving {
		persistence = storage.NullPersistence{}
	} else {
		fp, err := storage.NewFilePersistence(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("build file persistence: %w", err)
		}
		persistence = fp
	}

	subs, err := storage.NewSubscriptionStore(persistence, logger.With().Str("component", "subscriptions").Logger(), m)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	states, err := storage.NewRuntimeStateStore(persistence, logger.With().Str("component", "runtime_state").Logger(), m)
	if err != nil {
		return nil, fmt.Errorf("load runtime state: %w", err)
	}

	var telegramBot *tgbotapi.BotAPI
	if cfg.HasTelegram() {
		telegramBot, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("build telegram bot: %w", err)
		}
	}

	var discordSession *discordgo.Session
	if cfg.HasDiscord() {
		discordSession, err = discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, fmt.Errorf("build discord session: %w", err)
		}
	}

	reg := buildNotifierRegistry(cfg, telegramBot, discordSession)

	monitors := monitor.NewManager(states, subs, reg, m, logger.With().Str("component", "monitor").Logger())
	handler := controller.NewHandler(subs, states, monitors, logger.With().Str("component", "commands").Logger())

	controllers := buildControllers(cfg, handler, telegramBot, discordSession, logger)

	reporter, err := resource.New(m, logger)
	if err != nil {
		return nil, fmt.Errorf("build resource reporter: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:         cfg,
		logger:      logger,
		metrics:     m,
		subs:        subs,
		states:      states,
		monitors:    monitors,
		controllers: controllers,
		reporter:    reporter,
		metricsSrv:  &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler()},
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func buildNotifierRegistry(cfg *config.Config, telegramBot *tgbotapi.BotAPI, discordSession *discordgo.Session) notifier.Registry {
	var reg notifier.Registry

	if cfg.HasTerminal() {
		reg.Terminal = notifier.NewTerminalNotifier(os.Stdout)
	}
	if cfg.HasTelegram() {
		reg.Telegram = notifier.NewTelegramNotifier(telegramBot)
	}
	if cfg.HasDiscord() {
		reg.Discord = notifier.NewDiscordNotifier(discordSession)
	}

	return reg
}

func buildControllers(cfg *config.Config, handler *controller.Handler, telegramBot *tgbotapi.BotAPI, discordSession *discordgo.Session, logger zerolog.Logger) []controllerRunner {
	var controllers []controllerRunner

	if cfg.HasTerminal() {
		controllers = append(controllers, controller.NewTerminalController(handler, os.Stdin, os.Stdout, logger.With().Str("component", "terminal_controller").Logger()))
	}
	if cfg.HasTelegram() {
		controllers = append(controllers, controller.NewTelegramController(telegramBot, handler, logger.With().Str("component", "telegram_controller").Logger()))
	}
	if cfg.HasDiscord() {
		controllers = append(controllers, controller.NewDiscordController(discordSession, handler, logger.With().Str("component", "discord_controller").Logger()))
	}

	return controllers
}

// Run executes the full startup sequence and blocks until ctx is
// cancelled, then performs an orderly shutdown.
func (a *App) Run(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.reporter.Run(a.ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error().Err(err).Msg("metrics server stopped unexpectedly")
		}
	}()

	a.monitors.StartAll(a.ctx)

	for _, c := range a.controllers {
		c := c
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			c.Start(a.ctx)
		}()
	}

	a.logger.Info().Msg("adwatch started")

	<-ctx.Done()
	a.Shutdown()
}

// Shutdown cancels every component's context, stops the metrics HTTP
// server, and waits for every goroutine this App started to exit.
func (a *App) Shutdown() {
	a.logger.Info().Msg("shutting down")

	a.monitors.StopAll()
	a.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn().Err(err).Msg("metrics server shutdown error")
	}

	a.wg.Wait()
	a.logger.Info().Msg("shutdown complete")
}
