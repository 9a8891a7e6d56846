package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for DB_DRIVER.
func Dialector(driver, source string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "sqlite3", "":
		return sqlite.Open(sqliteSource(source)), nil
	case "mysql":
		return mysql.Open(source), nil
	case "postgres", "postgresql":
		return postgres.Open(source), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// sqliteSource makes write transactions take the database lock at BEGIN and
// wait for it, so writers at different restaurants queue rather than fail
// with "database is locked".
func sqliteSource(source string) string {
	path, query, _ := strings.Cut(source, "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		return source
	}
	if params.Get("_txlock") == "" {
		params.Set("_txlock", "immediate")
	}
	if params.Get("_busy_timeout") == "" && params.Get("_timeout") == "" {
		params.Set("_busy_timeout", "5000")
	}
	return path + "?" + params.Encode()
}

// InitDB opens the database described by cfg with SQL logging routed to logrus.
func InitDB(cfg *Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, cfg.DBSource)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		utils.InfoLogger,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}

	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}
