package migrations

import (
	"database/sql"
	"fmt"
	"time"

	_202503101015_accountsTable "github.com/Layr-Labs/txcontext/pkg/postgres/migrations/202503101015_accountsTable"
	_202503121140_emittedTransitions "github.com/Layr-Labs/txcontext/pkg/postgres/migrations/202503121140_emittedTransitions"
	"github.com/Layr-Labs/txcontext/pkg/postgres/helpers"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Migration interface {
	Up(db *sql.DB, grm *gorm.DB) error
	GetName() string
}

type Migrator struct {
	Db     *sql.DB
	GDb    *gorm.DB
	Logger *zap.Logger
}

func NewMigrator(db *sql.DB, gDb *gorm.DB, l *zap.Logger) *Migrator {
	_ = gDb.AutoMigrate(&Migrations{})
	return &Migrator{
		Db:     db,
		GDb:    gDb,
		Logger: l,
	}
}

func (m *Migrator) MigrateAll() error {
	migrations := []Migration{
		&_202503101015_accountsTable.Migration{},
		&_202503121140_emittedTransitions.Migration{},
	}

	for _, migration := range migrations {
		if err := m.Migrate(migration); err != nil {
			return err
		}
	}
	return nil
}

// Migrate runs a single migration unless it was already recorded. The
// migration and its record are applied in one transaction.
func (m *Migrator) Migrate(migration Migration) error {
	name := migration.GetName()

	var count int64
	if res := m.GDb.Model(&Migrations{}).Where("name = ?", name).Count(&count); res.Error != nil {
		m.Logger.Sugar().Errorw(fmt.Sprintf("Failed to find migration '%s'", name), zap.Error(res.Error))
		return res.Error
	}
	if count > 0 {
		m.Logger.Sugar().Debugw("Migration already run", zap.String("name", name))
		return nil
	}

	m.Logger.Sugar().Infow("Running migration", zap.String("name", name))
	_, err := helpers.WrapTxAndCommit[any](func(tx *gorm.DB) (any, error) {
		if err := migration.Up(m.Db, tx); err != nil {
			return nil, err
		}
		return nil, tx.Create(&Migrations{Name: name}).Error
	}, m.GDb, nil)
	if err != nil {
		m.Logger.Sugar().Errorw(fmt.Sprintf("Failed to run migration '%s'", name), zap.Error(err))
		return err
	}
	return nil
}

type Migrations struct {
	Name      string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"default:current_timestamp;type:timestamp with time zone"`
	UpdatedAt time.Time `gorm:"default:null;type:timestamp with time zone"`
}
