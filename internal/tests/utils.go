package tests

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/google/uuid"
)

func getEnv(key string, def string) string {
	if v := os.Getenv(fmt.Sprintf("%s_%s", config.ENV_PREFIX, key)); v != "" {
		return v
	}
	return def
}

// PostgresAvailable reports whether a test database was configured.
func PostgresAvailable() bool {
	return os.Getenv(fmt.Sprintf("%s_DATABASE_HOST", config.ENV_PREFIX)) != ""
}

func GetDbConfigFromEnv() *config.DatabaseConfig {
	port, err := strconv.Atoi(getEnv("DATABASE_PORT", "5432"))
	if err != nil {
		port = 5432
	}
	return &config.DatabaseConfig{
		Host:     getEnv("DATABASE_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DATABASE_USER", "txcontext"),
		Password: getEnv("DATABASE_PASSWORD", ""),
		DbName:   getEnv("DATABASE_DB_NAME", "txcontext"),
	}
}

func GenerateTestDbName() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("txcontext_test_%s", strings.ReplaceAll(id.String(), "-", "")), nil
}
