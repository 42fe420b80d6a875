package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/crypto"
	handler "github.com/MKhiriev/lockbox/internal/handler/http"
	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/internal/mediator"
	"github.com/MKhiriev/lockbox/internal/metadata"
	"github.com/MKhiriev/lockbox/internal/server"
	"github.com/MKhiriev/lockbox/internal/shepherd"
	"github.com/MKhiriev/lockbox/internal/store"
	"github.com/MKhiriev/lockbox/internal/utils"
	"github.com/MKhiriev/lockbox/internal/watcher"
	"github.com/MKhiriev/lockbox/internal/workers"
	"github.com/MKhiriev/lockbox/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// drainTimeout bounds how long shepherds may finish their current job after
// a shutdown signal.
const drainTimeout = 30 * time.Second

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Printf("Build: %s\n", buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("lockbox", "info").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewLogger("lockbox", cfg.App.LogLevel)
	log.Debug().Any("sync", cfg.Sync).Msg("received configs")

	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err = run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("lockbox run error")
	}
	log.Info().Msg("lockbox stopped")
}

func run(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) error {
	root, err := filepath.Abs(cfg.Sync.Root)
	if err != nil {
		return fmt.Errorf("resolve sync root: %w", err)
	}

	warnLocalMetadata(cfg.Storage.Metadata, log)

	clock := clockwork.NewRealClock()
	fs := afero.NewOsFs()

	storages, err := store.NewStorages(ctx, cfg.Storage, fs, clock, log)
	if err != nil {
		return fmt.Errorf("error creating storages: %w", err)
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Err(err).Msg("error closing storages")
		}
	}()

	meta := metadata.NewStore(storages.Attributes, metadata.Options{
		LockDomain:   cfg.Storage.Metadata.LockDomain,
		DataDomain:   cfg.Storage.Metadata.DataDomain,
		Holder:       cfg.App.Holder,
		LockTimeout:  cfg.Sync.LockTimeout,
		WriteRetries: cfg.Sync.WriteRetries,
		RetryDelay:   cfg.Sync.RetryDelay,
	}, clock, utils.NewUUIDGenerator(), log)

	encryptor, err := crypto.NewEncryptor(fs, root, cfg.App.Recipients, filepath.Join(os.TempDir(), "lockbox"), log)
	if err != nil {
		return fmt.Errorf("error creating encryptor: %w", err)
	}

	m := mediator.New(storages.Queue, mediator.Options{
		PollInterval: cfg.Sync.PollInterval,
		Retention:    cfg.Sync.Retention,
	}, clock, log)

	pool := shepherd.NewPool(cfg.Sync.Shepherds, shepherd.Dependencies{
		Mediator:  m,
		Encryptor: encryptor,
		ObjectIDs: crypto.NewPathHasher(root, cfg.App.HashKey),
		Metadata:  meta,
		Blobs:     storages.Blobs,
	}, shepherd.Options{
		MaxCommitAttempts: cfg.Sync.MaxCommitAttempts,
		CallTimeout:       cfg.Sync.CallTimeout,
	}, log)

	srv, err := server.NewServer(handler.NewHandler(m, cfg.App.Version, log).Init(), cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	return workers.New(
		runMediator(m, pool),
		runPool(pool),
		watcher.New(root, m, clock, log),
		srv,
	).Run(ctx)
}

// runMediator keeps the coordinator running until ctx is done. Stopping it
// also asks every shepherd to stop after its current job.
// warnLocalMetadata flags an in-process metadata store: its locks and
// version chains are invisible to every other client of the bucket.
func warnLocalMetadata(cfg config.Metadata, log *logger.Logger) {
	if cfg.Driver != config.DriverMemory {
		return
	}
	log.Warn().
		Str("driver", cfg.Driver).
		Msg("metadata is kept in memory: locks and version chains are not shared with other clients and are lost on exit")
}

func runMediator(m *mediator.Mediator, pool *shepherd.Pool) workers.Func {
	return func(ctx context.Context) error {
		shepherds := pool.Shepherds()
		ws := make([]mediator.Worker, 0, len(shepherds))
		for _, s := range shepherds {
			ws = append(ws, s)
		}

		if err := m.Start(ctx, ws...); err != nil {
			pool.Shutdown()
			return err
		}
		<-ctx.Done()
		return m.Stop()
	}
}

// runPool runs the shepherds on a context that outlives the shutdown signal
// by at most drainTimeout.
func runPool(pool *shepherd.Pool) workers.Func {
	return func(ctx context.Context) error {
		poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()

		done := make(chan struct{})
		go func() {
			pool.Run(poolCtx)
			close(done)
		}()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
		}

		select {
		case <-done:
		case <-time.After(drainTimeout):
			cancel()
			<-done
		}
		return nil
	}
}
