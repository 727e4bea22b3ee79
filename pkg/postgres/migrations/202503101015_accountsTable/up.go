package _202503101015_accountsTable

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			key varchar not null primary key,
			owner varchar not null,
			data bytea not null,
			created_at timestamp with time zone DEFAULT current_timestamp,
			updated_at timestamp with time zone DEFAULT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts (owner)`,
	}
	for _, query := range queries {
		if res := grm.Exec(query); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202503101015_accountsTable"
}
