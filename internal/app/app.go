package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/Raimguhinov/alarm-go/internal/alarm/db"
	"github.com/Raimguhinov/alarm-go/internal/boothook"
	"github.com/Raimguhinov/alarm-go/internal/config"
	"github.com/Raimguhinov/alarm-go/internal/ringer"
	"github.com/Raimguhinov/alarm-go/internal/settings"
	"github.com/Raimguhinov/alarm-go/internal/wakeup"
	"github.com/Raimguhinov/alarm-go/pkg/httpserver"
	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/Raimguhinov/alarm-go/pkg/postgres"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) {
	l := logger.New(cfg.Log.Level, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repository
	pg, err := postgres.New(ctx, l, cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Error("app - Run - postgres.New", logger.Err(err))
		return
	}
	defer pg.Close()

	if err := db.Migrate(ctx, pg); err != nil {
		l.Error("app - Run - db.Migrate", logger.Err(err))
		return
	}

	store := db.NewStore(pg, l)
	guard := db.NewGuard(pg, l)

	clock := wakeup.New(l, func() bool { return cfg.Wakeup.ExactAllowed })
	tone := ringer.NewTone(l, cfg.Ringer.SampleRate, cfg.Ringer.ToneHz)

	var hook alarm.BootHook
	hook, err = boothook.New(cfg.App.Name, "Alarm Go", l)
	if err != nil {
		l.Warn("app - Run - boothook.New, boot recovery disabled", logger.Err(err))
		hook = noopHook{}
	}

	svc := alarm.NewService(store, guard, clock, tone, hook, l)

	clock.OnFire(func(ids []int) {
		fireCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
		defer cancel()
		if err := svc.HandleFire(fireCtx, ids); err != nil {
			l.Error("app: trigger handling failed", logger.Err(err))
		}
	})

	// Boot recovery: a restart lost any armed timer, rebuild it now.
	if err := svc.Recompute(ctx); err != nil {
		l.Warn("app: initial recompute failed", logger.Err(err))
	}

	settingsStore := settings.New(pg, l, settings.Bounds{
		Default: cfg.Settings.DefaultLightLevel,
		Min:     cfg.Settings.MinLightLevel,
		Max:     cfg.Settings.MaxLightLevel,
	})

	// HTTP Server
	router := SetupRouter(l, cfg, svc, settingsStore)
	httpServer := httpserver.New(
		router,
		httpserver.Port(cfg.HTTP.IP, cfg.HTTP.Port),
		httpserver.ReadTimeout(cfg.HTTP.Timeout),
		httpserver.WriteTimeout(cfg.HTTP.Timeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return clock.Run(gctx)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		case err := <-httpServer.Notify():
			return fmt.Errorf("app - Run - httpServer.Notify: %w", err)
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("app - Run", logger.Err(err))
	} else {
		l.Info("app - Run - shutting down")
	}

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error("app - Run - httpServer.Shutdown", logger.Err(err))
	}
}

type noopHook struct{}

func (noopHook) SetEnabled(bool) error { return nil }
