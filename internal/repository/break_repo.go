package repository

import (
	"context"

	"gorm.io/gorm"

	"turnapp/backend/internal/model"
)

// BreakRepository 班内休息记录数据访问接口
type BreakRepository interface {
	Create(ctx context.Context, record *model.BreakRecord) error
	GetByID(ctx context.Context, id string) (*model.BreakRecord, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]model.BreakRecord, error)
	Delete(ctx context.Context, id string) error
}

// ── Break Repository 实现 ──

type breakRepo struct {
	db *gorm.DB
}

func NewBreakRepo(db *gorm.DB) BreakRepository {
	return &breakRepo{db: db}
}

func (r *breakRepo) Create(ctx context.Context, record *model.BreakRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *breakRepo) GetByID(ctx context.Context, id string) (*model.BreakRecord, error) {
	var record model.BreakRecord
	err := r.db.WithContext(ctx).
		Where("break_id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *breakRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]model.BreakRecord, error) {
	var records []model.BreakRecord
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("start_time ASC").
		Find(&records).Error
	return records, err
}

func (r *breakRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("break_id = ?", id).
		Delete(&model.BreakRecord{}).Error
}
