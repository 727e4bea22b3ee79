package cmd

import (
	"fmt"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/Layr-Labs/txcontext/internal/logger"
	"github.com/Layr-Labs/txcontext/pkg/postgres"
	"github.com/Layr-Labs/txcontext/pkg/postgres/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()

		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		grm, err := postgres.NewMigratedGorm(&cfg.DatabaseConfig, l)
		if err != nil {
			l.Error("Failed to migrate", zap.Error(err))
			return err
		}
		if db, err := grm.DB(); err == nil {
			defer db.Close()
		}

		applied := make([]*migrations.Migrations, 0)
		if res := grm.Order("name asc").Find(&applied); res.Error != nil {
			return res.Error
		}
		for _, m := range applied {
			fmt.Printf("%s\t%s\n", m.Name, m.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
