package leveldbAccountStore

import (
	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

var accountPrefix = []byte("acct/")

type LevelDBAccountStore struct {
	db     *leveldb.DB
	logger *zap.Logger
	sync   bool
}

// NewLevelDBAccountStore opens a store at path. An empty path opens an
// in-memory store.
func NewLevelDBAccountStore(path string, l *zap.Logger) (*LevelDBAccountStore, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open leveldb at '%s'", path)
	}
	return &LevelDBAccountStore{
		db:     db,
		logger: l,
		sync:   path != "",
	}, nil
}

func accountKey(key types.Pubkey) []byte {
	return append(append([]byte{}, accountPrefix...), key[:]...)
}

// value layout: [owner:32][data]
func encodeValue(acct *accountStore.Account) []byte {
	v := make([]byte, 0, types.PubkeyLength+len(acct.Data))
	v = append(v, acct.Owner[:]...)
	return append(v, acct.Data...)
}

func decodeValue(key types.Pubkey, v []byte) (*accountStore.Account, error) {
	if len(v) < types.PubkeyLength {
		return nil, errors.Errorf("corrupt account record for %s", key)
	}
	acct := &accountStore.Account{Key: key}
	copy(acct.Owner[:], v[:types.PubkeyLength])
	acct.Data = append([]byte(nil), v[types.PubkeyLength:]...)
	return acct, nil
}

func (s *LevelDBAccountStore) GetAccount(key types.Pubkey) (*accountStore.Account, error) {
	v, err := s.db.Get(accountKey(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			s.logger.Sugar().Debugw("Account not found in store", zap.String("key", key.String()))
			return nil, nil
		}
		return nil, err
	}
	return decodeValue(key, v)
}

func (s *LevelDBAccountStore) PutAccounts(accounts ...*accountStore.Account) error {
	batch := new(leveldb.Batch)
	for _, acct := range accounts {
		batch.Put(accountKey(acct.Key), encodeValue(acct))
	}
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: s.sync}); err != nil {
		s.logger.Sugar().Errorw("Failed to write accounts", zap.Int("count", len(accounts)), zap.Error(err))
		return err
	}
	return nil
}

// ListAccounts returns every account owned by owner, ordered by key.
func (s *LevelDBAccountStore) ListAccounts(owner types.Pubkey) ([]*accountStore.Account, error) {
	iter := s.db.NewIterator(util.BytesPrefix(accountPrefix), nil)
	defer iter.Release()

	accounts := make([]*accountStore.Account, 0)
	for iter.Next() {
		key, err := types.PubkeyFromBytes(iter.Key()[len(accountPrefix):])
		if err != nil {
			return nil, err
		}
		acct, err := decodeValue(key, iter.Value())
		if err != nil {
			return nil, err
		}
		if acct.Owner == owner {
			accounts = append(accounts, acct)
		}
	}
	return accounts, iter.Error()
}

func (s *LevelDBAccountStore) Close() error {
	return s.db.Close()
}
