package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mmynk/giftwiser/internal/config"
	"github.com/mmynk/giftwiser/internal/metrics"
	"github.com/mmynk/giftwiser/internal/repository"
	"github.com/mmynk/giftwiser/internal/service"
	"github.com/mmynk/giftwiser/internal/storage"
	"github.com/mmynk/giftwiser/internal/storage/filestore"
	"github.com/mmynk/giftwiser/internal/storage/memory"
	"github.com/mmynk/giftwiser/internal/storage/sqlite"
	"github.com/mmynk/giftwiser/pkg/logging"
)

// options holds the global flags and the configuration they resolve to.
type options struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "giftwiser",
		Short: "Keep track of gift ideas for the people you know",
		Long: `Giftwiser records people with their birthdays and, for each person,
a list of gift ideas with a photo.

Data is stored locally. Run "giftwiser serve" for the HTTP API, or use the
person and idea commands directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}
			level, err := logging.ParseLevel(cfg.Logging.Level)
			if err != nil {
				return err
			}
			logging.SetupWithLevel(level)
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(opts),
		newPersonCmd(opts),
		newIdeaCmd(opts),
	)
	return root
}

// app is the wired data layer shared by every command.
type app struct {
	kv       storage.KV
	repo     *repository.Repository
	svc      *service.PeopleService
	registry *prometheus.Registry
}

func openKV(cfg config.StorageConfig) (storage.KV, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverFile:
		s, err := filestore.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openApp opens the configured store and builds the repository and service.
// The repository is not loaded yet.
func openApp(cfg *config.Config) (*app, error) {
	kv, err := openKV(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	slog.Debug("Storage opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	registry := prometheus.NewRegistry()
	repo := repository.New(storage.NewPeopleStore(kv, cfg.Storage.Key), repository.Options{
		Metrics: metrics.New(registry),
	})

	return &app{
		kv:       kv,
		repo:     repo,
		svc:      service.NewPeopleService(repo, cfg.Ideas.ScreenWidth),
		registry: registry,
	}, nil
}

// close flushes pending changes and releases the store. A failed final save
// is returned so the command exits non-zero.
func (a *app) close(ctx context.Context) error {
	repoErr := a.repo.Close(ctx)
	if repoErr != nil {
		repoErr = fmt.Errorf("failed to save changes: %w", repoErr)
	}
	return errors.Join(repoErr, a.kv.Close())
}

// withApp runs fn against a loaded data layer and closes it afterwards.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(opts.cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close(context.Background()))
	}()

	if err := a.repo.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}
