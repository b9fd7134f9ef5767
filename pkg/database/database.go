package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ShopAssist/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options describes how to reach the database.
type Options struct {
	Driver       string // sqlite, mysql or postgres
	DSN          string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// Open connects with the configured driver, tunes the pool and verifies
// connectivity with a ping.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: pool: %w", err)
	}
	maxOpen := opts.MaxOpenConns
	if opts.Driver == "sqlite" {
		// sqlite serialises writers; one connection avoids "database is locked".
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	log.Printf("[db] connected driver=%s maxOpen=%d", opts.Driver, maxOpen)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty DSN")
	}
	switch driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(dsn)), nil
	case "mysql":
		return mysql.Open(mysqlDSN(dsn)), nil
	case "postgres":
		return postgres.Open(normalizePostgresDSN(dsn)), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

// sqliteDSN turns on foreign key enforcement, which sqlite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// mysqlDSN makes DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// normalizePostgresDSN accepts SQLAlchemy-style URLs such as postgresql+psycopg2://.
func normalizePostgresDSN(dsn string) string {
	if i := strings.Index(dsn, "://"); i > 0 {
		scheme := dsn[:i]
		if j := strings.Index(scheme, "+"); j > 0 {
			return scheme[:j] + dsn[i:]
		}
	}
	return dsn
}
