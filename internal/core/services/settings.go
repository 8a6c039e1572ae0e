package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyStorageBackend    = "storage.backend"
	KeyStorageDataDir    = "storage.data_dir"
	KeyStorageRedisAddr  = "storage.redis_addr"
	KeyStorageQuotaBytes = "storage.quota_bytes"
	KeyStorageSessionTTL = "storage.session_ttl"
	KeyAutosaveDebounce  = "autosave.debounce"
	KeyExecTimeout       = "execution.timeout"
	KeyExecRate          = "execution.rate_per_second"
	KeyExecBurst         = "execution.burst"
	KeyExecParallelism   = "execution.parallelism"
	KeyExportDir         = "export.dir"
	KeyLogFile           = "log.file"
)

type settingKind int

const (
	kindString settingKind = iota
	kindBackend
	kindInt
	kindFloat
	kindDuration
)

var settingKinds = map[string]settingKind{
	KeyStorageBackend:    kindBackend,
	KeyStorageDataDir:    kindString,
	KeyStorageRedisAddr:  kindString,
	KeyStorageQuotaBytes: kindInt,
	KeyStorageSessionTTL: kindDuration,
	KeyAutosaveDebounce:  kindDuration,
	KeyExecTimeout:       kindDuration,
	KeyExecRate:          kindFloat,
	KeyExecBurst:         kindInt,
	KeyExecParallelism:   kindInt,
	KeyExportDir:         kindString,
	KeyLogFile:           kindString,
}

var settingKeys = []string{
	KeyStorageBackend,
	KeyStorageDataDir,
	KeyStorageRedisAddr,
	KeyStorageQuotaBytes,
	KeyStorageSessionTTL,
	KeyAutosaveDebounce,
	KeyExecTimeout,
	KeyExecRate,
	KeyExecBurst,
	KeyExecParallelism,
	KeyExportDir,
	KeyLogFile,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling gaps with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, fmt.Errorf("config store not configured")
	}
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend:    s.getBackend(defaults.Storage.Backend),
			DataDir:    s.getString(KeyStorageDataDir, defaults.Storage.DataDir),
			RedisAddr:  s.getString(KeyStorageRedisAddr, defaults.Storage.RedisAddr),
			QuotaBytes: s.getInt(KeyStorageQuotaBytes, defaults.Storage.QuotaBytes),
			SessionTTL: s.getDuration(KeyStorageSessionTTL, defaults.Storage.SessionTTL),
		},
		Autosave: domain.AutosaveSettings{
			Debounce: s.getDuration(KeyAutosaveDebounce, defaults.Autosave.Debounce),
		},
		Execution: domain.ExecutionSettings{
			Timeout:       s.getDuration(KeyExecTimeout, defaults.Execution.Timeout),
			RatePerSecond: s.getFloat(KeyExecRate, defaults.Execution.RatePerSecond),
			Burst:         s.getInt(KeyExecBurst, defaults.Execution.Burst),
			Parallelism:   s.getInt(KeyExecParallelism, defaults.Execution.Parallelism),
		},
		Export: domain.ExportSettings{
			Dir: s.getString(KeyExportDir, defaults.Export.Dir),
		},
		Log: domain.LogSettings{
			File: s.getString(KeyLogFile, defaults.Log.File),
		},
	}, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return fmt.Errorf("config store not configured")
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyStorageBackend, settings.Storage.Backend.String()},
		{KeyStorageDataDir, settings.Storage.DataDir},
		{KeyStorageRedisAddr, settings.Storage.RedisAddr},
		{KeyStorageQuotaBytes, settings.Storage.QuotaBytes},
		{KeyStorageSessionTTL, settings.Storage.SessionTTL.String()},
		{KeyAutosaveDebounce, settings.Autosave.Debounce.String()},
		{KeyExecTimeout, settings.Execution.Timeout.String()},
		{KeyExecRate, settings.Execution.RatePerSecond},
		{KeyExecBurst, settings.Execution.Burst},
		{KeyExecParallelism, settings.Execution.Parallelism},
		{KeyExportDir, settings.Export.Dir},
		{KeyLogFile, settings.Log.File},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set validates and stores one setting given as text.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("config store not configured")
	}
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindString:
		typed = value
	case kindBackend:
		b := domain.StorageBackend(value)
		if !b.IsValid() {
			return fmt.Errorf("%w: storage backend %q (want sqlite, redis or memory)", domain.ErrInvalidInput, value)
		}
		typed = b.String()
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		typed = f
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration such as 2s or 500ms", domain.ErrInvalidInput, key)
		}
		typed = d.String()
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised setting keys.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logger.Warn("ignoring invalid %s %q: %v", key, val, err)
		return defaultVal
	}
	return d
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(KeyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
