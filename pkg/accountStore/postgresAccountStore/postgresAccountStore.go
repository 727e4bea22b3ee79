package postgresAccountStore

import (
	"errors"
	"time"

	"github.com/Layr-Labs/txcontext/pkg/accountStore"
	"github.com/Layr-Labs/txcontext/pkg/postgres/helpers"
	"github.com/Layr-Labs/txcontext/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRecord is a row of the accounts table. Keys are stored in base58.
type AccountRecord struct {
	Key       string `gorm:"primaryKey"`
	Owner     string
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AccountRecord) TableName() string {
	return "accounts"
}

type PostgresAccountStore struct {
	Db     *gorm.DB
	Logger *zap.Logger
}

func NewPostgresAccountStore(db *gorm.DB, l *zap.Logger) *PostgresAccountStore {
	return &PostgresAccountStore{
		Db:     db,
		Logger: l,
	}
}

func toRecord(acct *accountStore.Account) *AccountRecord {
	data := acct.Data
	if data == nil {
		data = []byte{}
	}
	return &AccountRecord{
		Key:   acct.Key.String(),
		Owner: acct.Owner.String(),
		Data:  data,
	}
}

func fromRecord(r *AccountRecord) (*accountStore.Account, error) {
	key, err := types.PubkeyFromString(r.Key)
	if err != nil {
		return nil, err
	}
	owner, err := types.PubkeyFromString(r.Owner)
	if err != nil {
		return nil, err
	}
	return &accountStore.Account{
		Key:   key,
		Owner: owner,
		Data:  r.Data,
	}, nil
}

func (s *PostgresAccountStore) GetAccount(key types.Pubkey) (*accountStore.Account, error) {
	var record *AccountRecord

	result := s.Db.First(&record, "key = ?", key.String())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.Logger.Sugar().Debugw("Account not found in store", zap.String("key", key.String()))
			return nil, nil
		}
		return nil, result.Error
	}
	return fromRecord(record)
}

func (s *PostgresAccountStore) PutAccounts(accounts ...*accountStore.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	records := make([]*AccountRecord, 0, len(accounts))
	for _, acct := range accounts {
		records = append(records, toRecord(acct))
	}

	_, err := helpers.WrapTxAndCommit[any](func(tx *gorm.DB) (any, error) {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner", "data", "updated_at"}),
		}).Create(&records)
		return nil, res.Error
	}, s.Db, nil)
	if err != nil {
		s.Logger.Sugar().Errorw("Failed to upsert accounts", zap.Int("count", len(accounts)), zap.Error(err))
	}
	return err
}

// ListAccounts returns every account owned by owner, ordered by key.
func (s *PostgresAccountStore) ListAccounts(owner types.Pubkey) ([]*accountStore.Account, error) {
	records := make([]*AccountRecord, 0)
	if res := s.Db.Where("owner = ?", owner.String()).Order("key asc").Find(&records); res.Error != nil {
		return nil, res.Error
	}
	accounts := make([]*accountStore.Account, 0, len(records))
	for _, r := range records {
		acct, err := fromRecord(r)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
