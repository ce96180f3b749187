package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shiplife/internal/adapter/repo/gorm/model"
	"shiplife/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepo struct {
	db *gorm.DB
}

var _ ports.SnapshotStore = SnapshotRepo{}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return SnapshotRepo{db: db}
}

func (r SnapshotRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var m model.SaveSnapshot
	if err := r.db.WithContext(ctx).Where("save_key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return m.Blob, nil
}

func (r SnapshotRepo) Put(ctx context.Context, key string, blob []byte) error {
	m := model.SaveSnapshot{
		SaveKey:       key,
		SchemaVersion: schemaVersionOf(blob),
		Blob:          blob,
		UpdatedAt:     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "save_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"schema_version", "blob", "updated_at"}),
	}).Create(&m).Error
}

func (r SnapshotRepo) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("save_key = ?", key).Delete(&model.SaveSnapshot{}).Error
}

// schemaVersionOf reads the integer version of a snapshot, 0 when absent.
func schemaVersionOf(blob []byte) int32 {
	var head struct {
		Version int32 `json:"version"`
	}
	if err := json.Unmarshal(blob, &head); err != nil {
		return 0
	}
	return head.Version
}

func (r SnapshotRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
