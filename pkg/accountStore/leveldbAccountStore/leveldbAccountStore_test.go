package leveldbAccountStore

import (
	"path/filepath"
	"testing"

	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LevelDBAccountStore(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	store, err := NewLevelDBAccountStore("", l)
	require.Nil(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	owner := types.NewUniquePubkey()

	t.Run("Should return nil for a missing account", func(t *testing.T) {
		acct, err := store.GetAccount(types.NewUniquePubkey())
		assert.Nil(t, err)
		assert.Nil(t, acct)
	})
	t.Run("Should write and read accounts", func(t *testing.T) {
		a := &accountStore.Account{Key: types.NewUniquePubkey(), Owner: owner, Data: []byte{1, 2, 3}}
		b := &accountStore.Account{Key: types.NewUniquePubkey(), Owner: owner, Data: []byte{}}
		assert.Nil(t, store.PutAccounts(a, b))

		got, err := store.GetAccount(a.Key)
		assert.Nil(t, err)
		assert.Equal(t, a, got)

		got, err = store.GetAccount(b.Key)
		assert.Nil(t, err)
		assert.Equal(t, b.Owner, got.Owner)
		assert.Equal(t, 0, got.Len())
	})
	t.Run("Should overwrite an existing account", func(t *testing.T) {
		a := &accountStore.Account{Key: types.NewUniquePubkey(), Owner: owner, Data: []byte{1}}
		assert.Nil(t, store.PutAccounts(a))

		a.Data = []byte{9, 9}
		assert.Nil(t, store.PutAccounts(a))

		got, err := store.GetAccount(a.Key)
		assert.Nil(t, err)
		assert.Equal(t, []byte{9, 9}, got.Data)
	})
	t.Run("Should list accounts by owner", func(t *testing.T) {
		other := types.NewUniquePubkey()
		a := &accountStore.Account{Key: types.NewUniquePubkey(), Owner: other, Data: []byte{1}}
		assert.Nil(t, store.PutAccounts(a))

		accounts, err := store.ListAccounts(other)
		assert.Nil(t, err)
		assert.Len(t, accounts, 1)
		assert.Equal(t, a, accounts[0])
	})
	t.Run("Should persist to disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "accounts")
		disk, err := NewLevelDBAccountStore(path, l)
		require.Nil(t, err)

		a := &accountStore.Account{Key: types.NewUniquePubkey(), Owner: owner, Data: []byte("persisted")}
		assert.Nil(t, disk.PutAccounts(a))
		assert.Nil(t, disk.Close())

		reopened, err := NewLevelDBAccountStore(path, l)
		require.Nil(t, err)
		defer reopened.Close()

		got, err := reopened.GetAccount(a.Key)
		assert.Nil(t, err)
		assert.Equal(t, a, got)
	})
}
