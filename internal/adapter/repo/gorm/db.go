package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// OpenSnapshotRepo connects and brings the schema up to date.
func OpenSnapshotRepo(ctx context.Context, dsn string) (SnapshotRepo, error) {
	db, err := OpenPostgres(dsn)
	if err != nil {
		return SnapshotRepo{}, err
	}
	if err := ApplyMigrations(ctx, db, Migrations()); err != nil {
		return SnapshotRepo{}, err
	}
	return NewSnapshotRepo(db), nil
}
