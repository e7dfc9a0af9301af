package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kvstore/internal/application/service"
	"kvstore/internal/domain"
	"kvstore/internal/platform/api/zmq"
	"kvstore/internal/platform/cli"
	"kvstore/internal/platform/client"
	"kvstore/internal/platform/config"
	"kvstore/internal/platform/logger"
	"kvstore/internal/platform/repository"
	"kvstore/internal/platform/server"
	"kvstore/internal/platform/server/handler/dbentry"
	"kvstore/internal/platform/storage"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Run replays the store and serves the command loop on stdin. When network
// adapters are enabled they keep serving after the loop ends, until SIGINT
// or SIGTERM.
func Run() (bool, error) {
	cfg := config.LoadConfig()
	container, err := buildContainer(cfg)
	if err != nil {
		return false, err
	}

	var closers []func(context.Context) error
	if cfg.RemoteUrl == "" {
		if cfg.HttpEnabled {
			err := container.Invoke(func(s *server.Server, log *zap.SugaredLogger) {
				go func() {
					if err := s.Run(); err != nil {
						log.Errorw("HTTP server stopped", "error", err)
					}
				}()
				closers = append(closers, s.Close)
			})
			if err != nil {
				return false, err
			}
		}
		if cfg.ZmqEnabled {
			err := container.Invoke(func(api *zmq.ZmqApi, log *zap.SugaredLogger) {
				go func() {
					if err := api.Listen(); err != nil {
						log.Errorw("ZMQ API stopped", "error", err)
					}
				}()
				closers = append(closers, func(context.Context) error { return api.Close() })
			})
			if err != nil {
				return false, err
			}
		}
	}

	var runErr error
	err = container.Invoke(func(loop *cli.CommandLoop, log *zap.SugaredLogger) {
		defer log.Sync()
		runErr = loop.Run(os.Stdin, os.Stdout)
		if runErr != nil || len(closers) == 0 {
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Info("Command loop finished, network APIs still serving")
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, closeFn := range closers {
			if err := closeFn(shutdownCtx); err != nil {
				log.Warnw("Shutdown error", "error", err)
			}
		}
	})
	if err != nil {
		return false, err
	}
	if runErr != nil {
		return false, runErr
	}
	return true, nil
}

func buildContainer(cfg config.Config) (*dig.Container, error) {
	container := dig.New()
	serviceConstructors := []interface{}{
		func() config.Config { return cfg },
		logger.NewLogger,
		service.NewSaveEntryService,
		service.NewGetEntryService,
		cli.NewCommandLoop,
	}
	if cfg.RemoteUrl != "" {
		serviceConstructors = append(serviceConstructors, remoteRepository)
	} else {
		serviceConstructors = append(serviceConstructors,
			dataLog,
			localRepository,
			entryRepository,
			dbentry.NewDbEntryHandler,
			server.NewServer,
			zmq.NewZmqApi,
		)
	}
	for _, service := range serviceConstructors {
		if err := container.Provide(service); err != nil {
			return nil, err
		}
	}
	return container, nil
}

func dataLog(cfg config.Config) *storage.Log {
	return storage.NewLog(cfg.DataFile)
}

func localRepository(log *storage.Log, cfg config.Config, logger *zap.SugaredLogger) (*repository.LogIndexRepository, error) {
	return repository.NewLogIndexRepository(log, cfg.InitialCapacity, logger)
}

func entryRepository(r *repository.LogIndexRepository) domain.EntryRepository {
	return r
}

func remoteRepository(cfg config.Config, logger *zap.SugaredLogger) domain.EntryRepository {
	logger.Infow("Using remote store", "url", cfg.RemoteUrl)
	return client.NewKVStoreClient(cfg.RemoteUrl)
}
