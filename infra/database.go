// Package infra opens the database and builds the infrastructure pieces the
// services depend on.
package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/econbot/infra/repository"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// NewDBConnection opens the database named by cnf.Url. postgres:// and
// postgresql:// URLs use PostgreSQL; sqlite://<path> uses an embedded SQLite
// file. SQLite connections are limited to one so writers serialize.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var (
		dialector gorm.Dialector
		maxConns  = cnf.MaxOpenConns
	)
	switch {
	case strings.HasPrefix(cnf.Url, "postgres://"), strings.HasPrefix(cnf.Url, "postgresql://"):
		dialector = postgres.Open(cnf.Url)
	case strings.HasPrefix(cnf.Url, sqliteScheme):
		dialector = sqlite.Open(sqliteDSN(strings.TrimPrefix(cnf.Url, sqliteScheme)))
		maxConns = 1
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %s", cnf.Url)
	}

	connection, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 25
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	if cnf.ConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cnf.ConnLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return connection, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(repository.Models()...)
}
