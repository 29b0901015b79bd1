package database

import (
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
)

// Models lists every table managed by AutoMigrate.
var Models = []interface{}{
	&models.Company{},
	&models.Lead{},
	&models.Prompt{},
	&models.Sequence{},
	&models.SequenceStep{},
	&models.Enrollment{},
	&models.SentEmail{},
}

// NewGormLogger routes gorm's SQL log through log. Only slow queries and
// errors are reported unless debug is set.
func NewGormLogger(log logger.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		logger.Printf{Logger: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Connect opens the PostgreSQL database through lib/pq and migrates the schema.
func Connect(dsn string, log logger.Logger, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{
		Logger:         NewGormLogger(log, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database schema migration completed")
	return db, nil
}

// Migrate creates or updates every table. It never drops columns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}
	return nil
}
