package postgres

import (
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/Layr-Labs/txcontext/internal/tests"
	"github.com/Layr-Labs/txcontext/pkg/postgres/migrations"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSSLMode = "disable"

var validSSLModes = []string{
	"disable",
	"require",
	"verify-ca",
	"verify-full",
}

var validDbName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type PostgresConfig struct {
	Host                string
	Port                int
	Username            string
	Password            string
	DbName              string
	CreateDbIfNotExists bool
	SchemaName          string
	SSLMode             string
	SSLCert             string
	SSLKey              string
	SSLRootCert         string
}

type Postgres struct {
	Db *sql.DB
}

func PostgresConfigFromDbConfig(dbCfg *config.DatabaseConfig) *PostgresConfig {
	return &PostgresConfig{
		Host:        dbCfg.Host,
		Port:        dbCfg.Port,
		Username:    dbCfg.User,
		Password:    dbCfg.Password,
		DbName:      dbCfg.DbName,
		SchemaName:  dbCfg.SchemaName,
		SSLMode:     dbCfg.SSLMode,
		SSLCert:     dbCfg.SSLCert,
		SSLKey:      dbCfg.SSLKey,
		SSLRootCert: dbCfg.SSLRootCert,
	}
}

func getConnectionString(cfg *PostgresConfig) (string, error) {
	sslMode := defaultSSLMode
	if cfg.SSLMode != "" {
		if !slices.Contains(validSSLModes, cfg.SSLMode) {
			return "", fmt.Errorf("invalid ssl mode: %s. Must be one of: %s", cfg.SSLMode, strings.Join(validSSLModes, ", "))
		}
		sslMode = cfg.SSLMode
	}

	parts := []string{
		fmt.Sprintf("host=%s", cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("dbname=%s", cfg.DbName),
		fmt.Sprintf("sslmode=%s", sslMode),
		"TimeZone=UTC",
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}
	if cfg.SchemaName != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", cfg.SchemaName))
	}
	if sslMode != defaultSSLMode {
		if cfg.SSLCert != "" {
			parts = append(parts, fmt.Sprintf("sslcert=%s", cfg.SSLCert))
		}
		if cfg.SSLKey != "" {
			parts = append(parts, fmt.Sprintf("sslkey=%s", cfg.SSLKey))
		}
		if cfg.SSLRootCert != "" {
			parts = append(parts, fmt.Sprintf("sslrootcert=%s", cfg.SSLRootCert))
		}
	}
	return strings.Join(parts, " "), nil
}

// openRoot connects to the "postgres" maintenance database of the same server.
func openRoot(cfg *PostgresConfig) (*sql.DB, error) {
	root := *cfg
	root.DbName = "postgres"
	root.SchemaName = ""

	connStr, err := getConnectionString(&root)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	return db, nil
}

func CreateDatabaseIfNotExists(cfg *PostgresConfig, l *zap.Logger) error {
	if !validDbName.MatchString(cfg.DbName) {
		return fmt.Errorf("invalid database name '%s'", cfg.DbName)
	}
	rootDb, err := openRoot(cfg)
	if err != nil {
		return err
	}
	defer rootDb.Close()

	var exists bool
	err = rootDb.QueryRow(`SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)`, cfg.DbName).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "failed to check if database exists")
	}
	if exists {
		return nil
	}
	if _, err = rootDb.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.DbName)); err != nil {
		return errors.Wrapf(err, "failed to create database '%s'", cfg.DbName)
	}
	l.Sugar().Infow("Created database", zap.String("name", cfg.DbName))
	return nil
}

func DeleteDatabase(cfg *PostgresConfig, dbName string, l *zap.Logger) error {
	if !validDbName.MatchString(dbName) {
		return fmt.Errorf("invalid database name '%s'", dbName)
	}
	rootDb, err := openRoot(cfg)
	if err != nil {
		return err
	}
	defer rootDb.Close()

	if _, err = rootDb.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
		return errors.Wrapf(err, "failed to drop database '%s'", dbName)
	}
	l.Sugar().Infow("Dropped database", zap.String("name", dbName))
	return nil
}

func NewPostgres(cfg *PostgresConfig, l *zap.Logger) (*Postgres, error) {
	if cfg.CreateDbIfNotExists {
		if err := CreateDatabaseIfNotExists(cfg, l); err != nil {
			return nil, err
		}
	}
	connStr, err := getConnectionString(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup database")
	}
	return &Postgres{Db: db}, nil
}

func NewGormFromPostgresConnection(pgDb *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: pgDb,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup gorm")
	}
	return db, nil
}

// NewMigratedGorm opens the configured database and applies every migration.
func NewMigratedGorm(cfg *config.DatabaseConfig, l *zap.Logger) (*gorm.DB, error) {
	pgConfig := PostgresConfigFromDbConfig(cfg)
	pgConfig.CreateDbIfNotExists = true

	pg, err := NewPostgres(pgConfig, l)
	if err != nil {
		return nil, err
	}
	grm, err := NewGormFromPostgresConnection(pg.Db)
	if err != nil {
		return nil, err
	}
	if err := migrations.NewMigrator(pg.Db, grm, l).MigrateAll(); err != nil {
		return nil, err
	}
	return grm, nil
}

// GetTestPostgresDatabase creates a uniquely named, migrated database.
func GetTestPostgresDatabase(cfg config.DatabaseConfig, l *zap.Logger) (string, *gorm.DB, error) {
	testDbName, err := tests.GenerateTestDbName()
	if err != nil {
		return "", nil, err
	}
	cfg.DbName = testDbName

	grm, err := NewMigratedGorm(&cfg, l)
	if err != nil {
		return testDbName, nil, err
	}
	return testDbName, grm, nil
}

func TeardownTestDatabase(dbName string, cfg config.DatabaseConfig, grm *gorm.DB, l *zap.Logger) {
	if rawDb, err := grm.DB(); err == nil {
		_ = rawDb.Close()
	}
	if err := DeleteDatabase(PostgresConfigFromDbConfig(&cfg), dbName, l); err != nil {
		l.Sugar().Errorw("Failed to delete test database", zap.Error(err))
	}
}

func IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
