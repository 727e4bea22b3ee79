package _202503121140_emittedTransitions

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS emitted_transitions (
			invocation_id varchar not null primary key,
			payer varchar not null,
			buffer varchar,
			extra_slots integer not null default 0,
			buffered_outputs integer not null default 0,
			total_outputs integer not null default 0,
			outputs_root varchar not null,
			output_region bytea not null,
			created_at timestamp with time zone DEFAULT current_timestamp
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emitted_transitions_payer ON emitted_transitions (payer)`,
	}
	for _, query := range queries {
		if res := grm.Exec(query); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202503121140_emittedTransitions"
}
