package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tcm-clinic/internal/model"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, record *model.Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create record failed: %w", err)
	}
	return nil
}

// GetByID returns (nil, nil) when no record with that id exists.
func (r *RecordRepository) GetByID(ctx context.Context, id uint) (*model.Record, error) {
	var record model.Record
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record failed: %w", err)
	}
	return &record, nil
}

func (r *RecordRepository) ListAll(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records failed: %w", err)
	}
	return records, nil
}

// Delete reports whether a row was actually removed so the caller can
// distinguish a missing record from a successful delete.
func (r *RecordRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Record{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete record failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
