package repository

import (
	"context"

	"gorm.io/gorm"

	"turnapp/backend/internal/model"
	pkgerrors "turnapp/backend/pkg/errors"
)

// ReplacementRepository 替班请求数据访问接口
type ReplacementRepository interface {
	Create(ctx context.Context, req *model.ReplacementRequest) error
	GetByID(ctx context.Context, id string) (*model.ReplacementRequest, error)
	ListPending(ctx context.Context, offset, limit int) ([]model.ReplacementRequest, int64, error)
	ListByReplacementUser(ctx context.Context, userID string) ([]model.ReplacementRequest, error)
	Update(ctx context.Context, req *model.ReplacementRequest) error
}

// ── Replacement Repository 实现 ──

type replacementRepo struct {
	db *gorm.DB
}

func NewReplacementRepo(db *gorm.DB) ReplacementRepository {
	return &replacementRepo{db: db}
}

func (r *replacementRepo) Create(ctx context.Context, req *model.ReplacementRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *replacementRepo) GetByID(ctx context.Context, id string) (*model.ReplacementRequest, error) {
	var req model.ReplacementRequest
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("replacement_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *replacementRepo) ListPending(ctx context.Context, offset, limit int) ([]model.ReplacementRequest, int64, error) {
	var reqs []model.ReplacementRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ReplacementRequest{}).
		Where("status = ?", model.ReplacementPending)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Assignment").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, total, err
}

func (r *replacementRepo) ListByReplacementUser(ctx context.Context, userID string) ([]model.ReplacementRequest, error) {
	var reqs []model.ReplacementRequest
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("replacement_user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *replacementRepo) Update(ctx context.Context, req *model.ReplacementRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(req).
		Where("replacement_id = ? AND version = ?", req.ReplacementID, oldVersion).
		Updates(map[string]interface{}{
			"approver_id": req.ApproverID,
			"reason":      req.Reason,
			"status":      req.Status,
			"updated_by":  req.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}
