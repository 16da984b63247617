package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	"MacroPulse/internal/usecase"
	pkgcache "MacroPulse/pkg/cache"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	pkgkafka "MacroPulse/pkg/kafka"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/scheduler"
)

// Deps are the wired components an App drives.
type Deps struct {
	Config     *config.Config
	Logger     *applogger.Logger
	Store      repository.Store
	Indicators []models.Indicator
	Runner     *usecase.JobRunner
	HTTP       *xhttp.Server
	Scheduler  *scheduler.Scheduler
	Consumer   *pkgkafka.Consumer // nil when Kafka is disabled
	Publisher  repository.Publisher
	Locker     pkgcache.Locker
}

// App encapsulates the entire application lifecycle.
type App struct {
	Deps
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	return &App{Deps: d}
}

// Migrate creates the schema and seeds reference data. It is idempotent.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.Store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := a.Store.SeedReference(ctx, models.DefaultCurrencies(), a.Indicators); err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}
	a.Logger.Info("schema ready",
		applogger.Int("currencies", len(models.DefaultCurrencies())),
		applogger.Int("indicators", len(a.Indicators)),
	)
	return nil
}

// RunJob executes one pipeline by name under the job lock.
func (a *App) RunJob(ctx context.Context, name string) (*models.RunReport, error) {
	return a.Runner.Run(ctx, name)
}

// Run serves HTTP, the cron schedule and the trigger consumer until ctx is
// cancelled or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Migrate(ctx); err != nil {
		return err
	}

	if err := a.HTTP.Start(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	if a.Config.Schedule.Enabled {
		a.Scheduler.Start(ctx)
	}

	if a.Consumer != nil {
		if err := a.Consumer.Start(ctx); err != nil {
			a.Logger.Error("kafka consumer start error", applogger.Error(err))
			a.shutdown()
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}

	a.Logger.Info("macropulse started",
		applogger.Int("port", a.Config.Server.Port),
		applogger.String("store", a.Config.Store.Driver),
		applogger.Bool("schedule", a.Config.Schedule.Enabled),
		applogger.Bool("kafka", a.Consumer != nil),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err := <-a.HTTP.Err():
		runErr = fmt.Errorf("http server: %w", err)
	}

	a.shutdown()
	return runErr
}

// shutdown stops intake first, then waits for in-flight work.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.HTTP.ShutdownTimeout())
	defer cancel()

	if err := a.HTTP.Stop(ctx); err != nil {
		a.Logger.Error("http shutdown error", applogger.Error(err))
	}
	if a.Consumer != nil {
		if err := a.Consumer.Stop(ctx); err != nil {
			a.Logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.Config.Schedule.Enabled {
		a.Scheduler.Stop()
	}
	a.Logger.Info("shutdown complete")
}

// Close releases infrastructure clients. The log collector is drained
// before the producer it publishes through goes away.
func (a *App) Close() error {
	a.Logger.RemoveCollector()

	var errs []error
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if a.Locker != nil {
		if err := a.Locker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("locker: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}
