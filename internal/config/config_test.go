package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func Test_Config(t *testing.T) {
	t.Run("Should convert kebab case keys", func(t *testing.T) {
		assert.Equal(t, "buffer.output_region_capacity", KebabToSnakeCase(BufferOutputRegionCapacity))
		assert.Equal(t, "program_id", KebabToSnakeCase(ProgramID))
	})
	t.Run("Should parse store backends", func(t *testing.T) {
		assert.Equal(t, StoreBackend_Postgres, ParseStoreBackend("POSTGRES"))
		assert.Equal(t, StoreBackend_LevelDB, ParseStoreBackend("leveldb"))
		assert.Equal(t, StoreBackend_LevelDB, ParseStoreBackend(""))
	})
	t.Run("Should fall back to defaults", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		cfg := NewConfig()
		assert.Equal(t, DefaultProgramID, cfg.ProgramID)
		assert.Equal(t, DefaultBufferCapacity, cfg.BufferConfig.Capacity)
		assert.Equal(t, DefaultOutputRegionCapacity, cfg.BufferConfig.OutputRegionCapacity)
		assert.Equal(t, StoreBackend_LevelDB, cfg.StoreConfig.Backend)
	})
	t.Run("Should read values set through viper", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		viper.Set(KebabToSnakeCase(BufferCapacity), 4096)
		viper.Set(KebabToSnakeCase(StoreBackend), "postgres")
		viper.Set(KebabToSnakeCase(DatabaseHost), "db.internal")
		viper.Set(KebabToSnakeCase(Debug), true)

		cfg := NewConfig()
		assert.Equal(t, 4096, cfg.BufferConfig.Capacity)
		assert.Equal(t, StoreBackend_Postgres, cfg.StoreConfig.Backend)
		assert.Equal(t, "db.internal", cfg.DatabaseConfig.Host)
		assert.True(t, cfg.Debug)
	})
}

func Test_CommandConfig(t *testing.T) {
	t.Run("Should read command specific flags", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		viper.Set(KebabToSnakeCase(BufferKey), "key")
		viper.Set(KebabToSnakeCase(BufferReinit), true)
		viper.Set(KebabToSnakeCase(ScenarioFile), "scenario.json")
		viper.Set(KebabToSnakeCase(ShowProgressBars), true)

		cfg := NewConfig()
		assert.Equal(t, "key", cfg.BufferCommandConfig.Key)
		assert.True(t, cfg.BufferCommandConfig.Reinit)
		assert.Equal(t, "scenario.json", cfg.ReplayConfig.ScenarioFile)
		assert.True(t, cfg.ReplayConfig.ShowProgressBars)
	})
}
