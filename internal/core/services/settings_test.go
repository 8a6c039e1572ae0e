package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marinebook/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyStorageBackend, "redis")
	_ = store.Set(KeyStorageRedisAddr, "redis.internal:6380")
	_ = store.Set(KeyStorageQuotaBytes, 1024)
	_ = store.Set(KeyAutosaveDebounce, "500ms")
	_ = store.Set(KeyExecRate, 2.5)
	_ = store.Set(KeyExecParallelism, 8)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageBackendRedis, settings.Storage.Backend)
	assert.Equal(t, "redis.internal:6380", settings.Storage.RedisAddr)
	assert.Equal(t, 1024, settings.Storage.QuotaBytes)
	assert.Equal(t, 500*time.Millisecond, settings.Autosave.Debounce)
	assert.InDelta(t, 2.5, settings.Execution.RatePerSecond, 1e-9)
	assert.Equal(t, 8, settings.Execution.Parallelism)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyStorageBackend, "floppy")
	_ = store.Set(KeyExecTimeout, "soon")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Execution.Timeout, settings.Execution.Timeout)
}

func TestSettingsService_NilStore(t *testing.T) {
	service := NewSettingsService(nil)

	_, err := service.Get()
	assert.Error(t, err)
	assert.Error(t, service.Save(&domain.AppSettings{}))
	assert.Error(t, service.Set(KeyLogFile, "x"))
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	want := domain.DefaultAppSettings()
	want.Storage.Backend = domain.StorageBackendMemory
	want.Storage.SessionTTL = 90 * time.Minute
	want.Execution.Timeout = 5 * time.Second
	want.Execution.RatePerSecond = 1.5
	want.Export.Dir = "/tmp/exports"

	require.NoError(t, service.Save(&want))
	assert.Equal(t, "1h30m0s", store.GetString(KeyStorageSessionTTL))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_Save_InvalidBackend(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Storage.Backend = "tape"

	err := NewSettingsService(memory.NewConfigStore()).Save(&settings)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set(KeyStorageBackend, "memory"))
	require.NoError(t, service.Set(KeyExecBurst, "10"))
	require.NoError(t, service.Set(KeyExecRate, "0.5"))
	require.NoError(t, service.Set(KeyAutosaveDebounce, "1500ms"))
	require.NoError(t, service.Set(KeyExportDir, "~/exports"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StorageBackendMemory, settings.Storage.Backend)
	assert.Equal(t, 10, settings.Execution.Burst)
	assert.InDelta(t, 0.5, settings.Execution.RatePerSecond, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, settings.Autosave.Debounce)
	assert.Equal(t, "~/exports", settings.Export.Dir)
	assert.Equal(t, "1.5s", store.GetString(KeyAutosaveDebounce))
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	tests := []struct {
		key   string
		value string
	}{
		{"unknown.key", "x"},
		{KeyStorageBackend, "floppy"},
		{KeyStorageQuotaBytes, "-1"},
		{KeyStorageQuotaBytes, "lots"},
		{KeyExecRate, "-0.5"},
		{KeyExecTimeout, "forever"},
		{KeyExecTimeout, "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()
	assert.Len(t, keys, 12)
	assert.Equal(t, KeyStorageBackend, keys[0])

	keys[0] = "mutated"
	assert.Equal(t, KeyStorageBackend, service.Keys()[0])
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
