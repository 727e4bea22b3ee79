package postgres

import (
	"os"
	"testing"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/internal/tests"
	"github.com/Layr-Labs/txcontext/pkg/postgres/migrations"
	"github.com/stretchr/testify/assert"
)

func Test_ConnectionString(t *testing.T) {
	t.Run("Should build a plain connection string", func(t *testing.T) {
		s, err := getConnectionString(&PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Username: "txcontext",
			DbName:   "txcontext",
		})
		assert.Nil(t, err)
		assert.Equal(t, "host=localhost port=5432 dbname=txcontext sslmode=disable TimeZone=UTC user=txcontext", s)
	})
	t.Run("Should reject unknown ssl modes", func(t *testing.T) {
		_, err := getConnectionString(&PostgresConfig{SSLMode: "sometimes"})
		assert.NotNil(t, err)
	})
	t.Run("Should only add certificates when ssl is on", func(t *testing.T) {
		s, err := getConnectionString(&PostgresConfig{SSLCert: "/tmp/cert"})
		assert.Nil(t, err)
		assert.NotContains(t, s, "sslcert")

		s, err = getConnectionString(&PostgresConfig{SSLMode: "require", SSLCert: "/tmp/cert"})
		assert.Nil(t, err)
		assert.Contains(t, s, "sslcert=/tmp/cert")
	})
	t.Run("Should detect duplicate key errors", func(t *testing.T) {
		assert.False(t, IsDuplicateKeyError(nil))
	})
}

func Test_Postgres(t *testing.T) {
	if !tests.PostgresAvailable() {
		t.Skip("postgres not configured")
	}
	cfg := config.NewConfig()
	cfg.Debug = os.Getenv(config.Debug) == "true"
	cfg.DatabaseConfig = *tests.GetDbConfigFromEnv()

	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

	dbName, grm, err := GetTestPostgresDatabase(cfg.DatabaseConfig, l)
	if err != nil {
		t.Fatalf("Failed to setup postgres: %v", err)
	}

	t.Run("Should record every migration", func(t *testing.T) {
		var count int64
		res := grm.Model(&migrations.Migrations{}).Count(&count)
		assert.Nil(t, res.Error)
		assert.Equal(t, int64(2), count)
	})
	t.Run("Should not run migrations twice", func(t *testing.T) {
		rawDb, err := grm.DB()
		assert.Nil(t, err)
		assert.Nil(t, migrations.NewMigrator(rawDb, grm, l).MigrateAll())
	})
	t.Cleanup(func() {
		TeardownTestDatabase(dbName, cfg.DatabaseConfig, grm, l)
	})
}
