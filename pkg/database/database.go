package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Options selects and configures the backing store.
type Options struct {
	Driver string // postgres | sqlite

	DSN      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	TimeZone string

	SQLitePath string

	LogLevel logger.LogLevel
}

// zerologWriter adapts gorm's logger.Writer to zerolog.
type zerologWriter struct {
	l zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.l.Debug().Msgf(format, args...)
}

func newGormLogger(level logger.LogLevel) logger.Interface {
	if level == 0 {
		level = logger.Warn
	}
	return logger.New(
		zerologWriter{l: log.With().Str("component", "gorm").Logger()},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         newGormLogger(level),
		PrepareStmt:    false,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Connect opens the configured store and sets up the connection pool.
func Connect(opts Options) (*gorm.DB, error) {
	switch opts.Driver {
	case "", "postgres":
		return connectPostgres(opts)
	case "sqlite":
		path := opts.SQLitePath
		if path == "" {
			path = "inventory.db"
		}
		return OpenSQLite(path, opts.LogLevel)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

func connectPostgres(opts Options) (*gorm.DB, error) {
	dsn := opts.DSN
	if dsn == "" {
		tz := opts.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			opts.Host, opts.User, opts.Password, opts.Name, opts.Port, tz,
		)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pgbouncer transaction mode
	}), gormConfig(opts.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("driver", "postgres").Msg("database connection established")
	return db, nil
}

// OpenSQLite opens an embedded database. SQLite allows a single writer,
// so the pool is pinned to one connection.
func OpenSQLite(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info().Str("driver", "sqlite").Str("dsn", dsn).Msg("database connection established")
	return db, nil
}

// Migrate runs gorm auto migration for the given models.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
