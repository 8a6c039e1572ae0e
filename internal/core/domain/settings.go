package domain

import (
	"strconv"
	"time"
)

const unknownDescription = "Unknown"

// StorageBackend selects the primary durable key-value store.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSQLite keeps notebooks in a local SQLite file.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendRedis keeps notebooks in a Redis instance.
	StorageBackendRedis StorageBackend = "redis"

	// StorageBackendMemory keeps notebooks in process memory only.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendSQLite, StorageBackendRedis, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// IsDurable returns true if notebooks survive a process restart.
func (b StorageBackend) IsDurable() bool {
	return b == StorageBackendSQLite || b == StorageBackendRedis
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageBackendSQLite:
		return "SQLite (local file)"
	case StorageBackendRedis:
		return "Redis (network)"
	case StorageBackendMemory:
		return "Memory (lost on exit)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the primary store.
	Backend StorageBackend

	// DataDir is where the SQLite database lives.
	DataDir string

	// RedisAddr is the host:port of the Redis server.
	RedisAddr string

	// QuotaBytes caps the bytes a store accepts across all entries.
	QuotaBytes int

	// SessionTTL bounds how long the fallback store keeps entries.
	SessionTTL time.Duration
}

// AutosaveSettings holds editor autosave configuration.
type AutosaveSettings struct {
	// Debounce is the quiet period after the last edit before persisting.
	Debounce time.Duration
}

// ExecutionSettings holds execution engine configuration.
type ExecutionSettings struct {
	// Timeout bounds a single execution. Zero disables the bound.
	Timeout time.Duration

	// RatePerSecond is the sustained admission rate. Zero disables limiting.
	RatePerSecond float64

	// Burst is the admission burst size.
	Burst int

	// Parallelism bounds concurrent executions when running a whole notebook.
	Parallelism int
}

// ExportSettings holds export configuration.
type ExportSettings struct {
	// Dir is where exported files are written.
	Dir string
}

// LogSettings holds logging configuration.
type LogSettings struct {
	// File, when set, receives log output instead of stderr.
	File string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Autosave  AutosaveSettings
	Execution ExecutionSettings
	Export    ExportSettings
	Log       LogSettings
}

// Default values.
const (
	DefaultQuotaBytes  = 5 * 1024 * 1024
	DefaultSessionTTL  = 24 * time.Hour
	DefaultDebounce    = 2 * time.Second
	DefaultTimeout     = 30 * time.Second
	DefaultBurst       = 5
	DefaultParallelism = 4
)

// DefaultAppSettings returns settings with sensible defaults.
// Paths are left empty and resolved against the home directory by callers.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend:    StorageBackendSQLite,
			RedisAddr:  "localhost:6379",
			QuotaBytes: DefaultQuotaBytes,
			SessionTTL: DefaultSessionTTL,
		},
		Autosave: AutosaveSettings{
			Debounce: DefaultDebounce,
		},
		Execution: ExecutionSettings{
			Timeout:       DefaultTimeout,
			RatePerSecond: 0,
			Burst:         DefaultBurst,
			Parallelism:   DefaultParallelism,
		},
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageBackendSQLite,
		StorageBackendRedis,
		StorageBackendMemory,
	}
}

// Lookup returns the text form of a setting by its dotted key, as used by
// the config file and the settings commands.
func (s *AppSettings) Lookup(key string) (string, bool) {
	switch key {
	case "storage.backend":
		return s.Storage.Backend.String(), true
	case "storage.data_dir":
		return s.Storage.DataDir, true
	case "storage.redis_addr":
		return s.Storage.RedisAddr, true
	case "storage.quota_bytes":
		return strconv.Itoa(s.Storage.QuotaBytes), true
	case "storage.session_ttl":
		return s.Storage.SessionTTL.String(), true
	case "autosave.debounce":
		return s.Autosave.Debounce.String(), true
	case "execution.timeout":
		return s.Execution.Timeout.String(), true
	case "execution.rate_per_second":
		return strconv.FormatFloat(s.Execution.RatePerSecond, 'g', -1, 64), true
	case "execution.burst":
		return strconv.Itoa(s.Execution.Burst), true
	case "execution.parallelism":
		return strconv.Itoa(s.Execution.Parallelism), true
	case "export.dir":
		return s.Export.Dir, true
	case "log.file":
		return s.Log.File, true
	default:
		return "", false
	}
}
