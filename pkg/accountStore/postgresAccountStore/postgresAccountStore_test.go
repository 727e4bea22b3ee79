package postgresAccountStore

import (
	"os"
	"testing"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/internal/tests"
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/postgres"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup() (
	string,
	*gorm.DB,
	*zap.Logger,
	*config.Config,
	error,
) {
	cfg := config.NewConfig()
	cfg.Debug = os.Getenv(config.Debug) == "true"
	cfg.DatabaseConfig = *tests.GetDbConfigFromEnv()

	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

	dbname, grm, err := postgres.GetTestPostgresDatabase(cfg.DatabaseConfig, l)
	if err != nil {
		return dbname, nil, nil, nil, err
	}
	return dbname, grm, l, cfg, nil
}

func Test_PostgresAccountStore(t *testing.T) {
	if !tests.PostgresAvailable() {
		t.Skip("postgres not configured")
	}
	dbName, grm, l, cfg, err := setup()
	if err != nil {
		t.Fatal(err)
	}

	store := NewPostgresAccountStore(grm, l)
	owner := types.NewUniquePubkey()

	t.Run("Should return nil for a missing account", func(t *testing.T) {
		acct, err := store.GetAccount(types.NewUniquePubkey())
		assert.Nil(t, err)
		assert.Nil(t, acct)
	})
	t.Run("Should upsert accounts", func(t *testing.T) {
		a := &accountStore.Account{Key: types.NewUniquePubkey(), Owner: owner, Data: []byte{1, 2, 3}}
		assert.Nil(t, store.PutAccounts(a))

		a.Data = []byte{4, 5}
		assert.Nil(t, store.PutAccounts(a))

		got, err := store.GetAccount(a.Key)
		assert.Nil(t, err)
		assert.Equal(t, a, got)
	})
	t.Run("Should list accounts by owner", func(t *testing.T) {
		accounts, err := store.ListAccounts(owner)
		assert.Nil(t, err)
		assert.Len(t, accounts, 1)
	})
	t.Cleanup(func() {
		postgres.TeardownTestDatabase(dbName, cfg.DatabaseConfig, grm, l)
	})
}
