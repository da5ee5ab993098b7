package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dispatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	base := logger.Init(configs.Log.Mode, configs.Log.ToLoggerOptions())
	defer func() { _ = base.Sync() }()
	sugar := base.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := postgres.Open(configs.Database.ToPostgres(), sugar)
	if err != nil {
		return err
	}
	if configs.Database.AutoMigrate {
		if err = postgres.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		sugar.Infow("database_migrated")
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, sugar)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			sugar.Warnw("composition_root_close_failed", "error", err)
		}
	}()

	server, err := app.CreateHTTPServer(ctx)
	if err != nil {
		return err
	}
	e := server.NewEcho(configs.HTTP.ToServer())
	if configs.Log.Debug() {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.ERROR)
	}

	worker, err := startWorker(app, configs, sugar)
	if err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		if worker != nil {
			worker.Shutdown()
		}
		return fmt.Errorf("start jobs: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		sugar.Infow("http_server_started", "addr", configs.HTTP.Addr())
		if err := e.Start(configs.HTTP.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		sugar.Infow("shutdown_requested")
	case err = <-serverErr:
		if err != nil {
			sugar.Errorw("http_server_failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.HTTP.ShutdownTimeout)
	defer cancel()
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		sugar.Warnw("http_server_shutdown_failed", "error", shutdownErr)
	}
	jobManager.StopAll()
	if worker != nil {
		worker.Shutdown()
	}
	sugar.Infow("shutdown_complete")
	return err
}

// startWorker runs the asynq consumer in-process when the queue is enabled.
func startWorker(app *cmd.CompositionRoot, configs cmd.Config, sugar *zap.SugaredLogger) (*asynq.Server, error) {
	consumer := app.CreateConsumer()
	if consumer == nil {
		sugar.Infow("worker_disabled", "reason", "queue disabled")
		return nil, nil
	}

	redisOpt, workerCfg := queue.ServerConfig(configs.Queue.ToQueue(configs.Redis))
	workerCfg.Logger = sugar
	srv := asynq.NewServer(redisOpt, workerCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	if err := srv.Start(mux); err != nil {
		return nil, err
	}
	sugar.Infow("worker_started", "concurrency", workerCfg.Concurrency)
	return srv, nil
}
