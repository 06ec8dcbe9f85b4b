package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/causewayhq/causeway/internal/config"
	"github.com/causewayhq/causeway/internal/jobs"
	"github.com/causewayhq/causeway/internal/log"
)

// App owns the long-lived runtime pieces around the servers: the config
// watcher, reload wiring, and the cron scheduler. Server management is
// delegated to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	scheduler    *jobs.Scheduler
	reloadSignal os.Signal
}

// NewApp creates the runtime orchestrator. holder and scheduler may be nil
// when the corresponding subsystem is disabled.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, scheduler *jobs.Scheduler) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		scheduler:    scheduler,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts the owned subsystems and blocks until ctx is cancelled or a
// fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// The watcher is best effort; startup must not fail over an inotify
	// limit or a read-only config dir.
	if a.holder != nil {
		if err := a.holder.StartWatcher(ctx); err != nil {
			a.logger.Warn().
				Err(err).
				Str("event", "config.watcher_start_failed").
				Msg("failed to start config watcher")
		}

		reloaded := make(chan config.AppConfig, 1)
		a.holder.RegisterListener(reloaded)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-reloaded:
					a.applyReload(cfg)
				}
			}
		})
	}

	// SIGHUP triggers the same reload path as a file change.
	if a.holder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, a.reloadSignal)
			defer signal.Stop(hup)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hup:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.holder.Reload(context.Background()); err != nil {
						a.logger.Warn().
							Err(err).
							Str("event", "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// applyReload pushes dynamic settings into the running process. Listen
// addresses and store paths need a restart and are only logged by the holder.
func (a *App) applyReload(cfg config.AppConfig) {
	log.SetLevel(cfg.LogLevel)
	a.logger.Info().
		Str("event", "config.applied").
		Str("log_level", cfg.LogLevel).
		Msg("dynamic config applied")
}

// RunUntilSignal runs the app under SIGINT/SIGTERM handling. This is the
// entry point main uses.
func (a *App) RunUntilSignal() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
