package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/marinebook/internal/adapters/driven/config/file"
	"github.com/custodia-labs/marinebook/internal/adapters/driven/runtime/yaegi"
	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/cli"
	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/services"
	"github.com/custodia-labs/marinebook/internal/logger"
)

const (
	redisPingTimeout = 2 * time.Second
	tuiLogName       = "marinebook.log"
)

// application holds what main must release on exit.
type application struct {
	closers []func() error
	cancel  context.CancelFunc
}

func (a *application) close() {
	a.cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
}

// bootstrap reads the configuration, opens the stores and installs the
// services used by the commands.
func bootstrap(ctx context.Context) (*application, error) {
	configDir, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	config, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settingsService := services.NewSettingsService(config)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	app := &application{cancel: cancel}
	app.closers = append(app.closers, logger.Close)

	if settings.Log.File != "" {
		logger.SetLogFile(expandHome(settings.Log.File))
	}
	logger.Section("Startup")
	logger.Debug("config %s, storage backend %s", config.Path(), settings.Storage.Backend)

	primary, closePrimary := openPrimary(ctx, settings.Storage)
	if closePrimary != nil {
		app.closers = append(app.closers, closePrimary)
	}
	fallback := memory.NewKVStore("session", settings.Storage.SessionTTL, settings.Storage.QuotaBytes)

	exportDir := expandHome(settings.Export.Dir)
	if exportDir == "" {
		exportDir = filepath.Join(configDir, "exports")
	}
	storage := services.NewNotebookStorage(primary, fallback, file.NewDownloadSink(exportDir))

	engine := services.NewExecutionEngine(yaegi.New(), settings.Execution)
	workspace := services.NewWorkspace(storage, engine, services.EditorOptions{
		Debounce:    settings.Autosave.Debounce,
		Parallelism: settings.Execution.Parallelism,
	})
	if err := workspace.Load(ctx); err != nil {
		app.close()
		return nil, err
	}

	go watchConfig(watchCtx, config, settingsService, engine)

	cli.SetServices(cli.Services{
		Workspace:  workspace,
		Storage:    storage,
		Engine:     engine,
		Settings:   settingsService,
		TUILogFile: tuiLogFile(settings.Log.File, configDir),
	})
	return app, nil
}

// openPrimary opens the configured durable store. A store that cannot be
// opened leaves notebooks in the session fallback only.
func openPrimary(ctx context.Context, s domain.StorageSettings) (driven.KeyValueStore, func() error) {
	switch s.Backend {
	case domain.StorageBackendRedis:
		store, err := redis.NewKVStore(s.RedisAddr, redis.DefaultPrefix, 0, s.QuotaBytes)
		if err != nil {
			logger.Warn("redis unavailable, notebooks will not outlive this session: %v", err)
			return nil, nil
		}
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("redis at %s not reachable, saves will fall back to the session store: %v", s.RedisAddr, err)
		}
		return store, store.Close

	case domain.StorageBackendMemory:
		return memory.NewKVStore("memory", 0, s.QuotaBytes), nil

	default:
		store, err := sqlite.NewStore(expandHome(s.DataDir))
		if err != nil {
			logger.Warn("sqlite unavailable, notebooks will not outlive this session: %v", err)
			return nil, nil
		}
		logger.Debug("using notebook database %s", store.Path())
		return store.KeyValueStore(s.QuotaBytes), store.Close
	}
}

// watchConfig applies execution settings when the config file changes.
// Storage settings need a restart.
func watchConfig(ctx context.Context, config *file.ConfigStore, settings *services.SettingsService, engine *services.ExecutionEngine) {
	err := config.Watch(ctx, func() {
		current, err := settings.Get()
		if err != nil {
			logger.Warn("reload settings: %v", err)
			return
		}
		engine.Configure(current.Execution)
		logger.Info("execution settings reloaded")
	})
	if err != nil {
		logger.Debug("config watch stopped: %v", err)
	}
}

func tuiLogFile(configured, configDir string) string {
	if configured != "" {
		return expandHome(configured)
	}
	return filepath.Join(configDir, tuiLogName)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
