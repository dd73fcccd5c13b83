package datastore

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGormDB opens a pooled Postgres connection from a DSN. Used when the
// deployment talks to the database directly instead of through the Supabase
// REST gateway.
func NewGormDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func gormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

// GormExecutor runs statements straight against Postgres. The same allow-list
// gate applies: callers only hand it validated SELECTs.
type GormExecutor struct {
	db *gorm.DB
}

var _ Executor = &GormExecutor{}

func NewGormExecutor(db *gorm.DB) *GormExecutor {
	return &GormExecutor{db: db}
}

func (e *GormExecutor) ExecSQL(ctx context.Context, query string) ([]Row, error) {
	var rows []map[string]interface{}
	if err := e.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return rows, nil
}
