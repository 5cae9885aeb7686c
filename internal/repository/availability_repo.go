package repository

import (
	"context"

	"gorm.io/gorm"

	"turnapp/backend/internal/model"
	pkgerrors "turnapp/backend/pkg/errors"
)

// AvailabilityRepository 可用时段偏好数据访问接口
type AvailabilityRepository interface {
	Create(ctx context.Context, pref *model.AvailabilityPreference) error
	GetByID(ctx context.Context, id string) (*model.AvailabilityPreference, error)
	GetByUserAndDay(ctx context.Context, userID string, dayOfWeek int) (*model.AvailabilityPreference, error)
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]model.AvailabilityPreference, error)
	Update(ctx context.Context, pref *model.AvailabilityPreference) error
	Delete(ctx context.Context, id string) error
}

// ── Availability Repository 实现 ──

type availabilityRepo struct {
	db *gorm.DB
}

func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) Create(ctx context.Context, pref *model.AvailabilityPreference) error {
	return r.db.WithContext(ctx).Create(pref).Error
}

func (r *availabilityRepo) GetByID(ctx context.Context, id string) (*model.AvailabilityPreference, error) {
	var pref model.AvailabilityPreference
	err := r.db.WithContext(ctx).
		Where("preference_id = ?", id).
		First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *availabilityRepo) GetByUserAndDay(ctx context.Context, userID string, dayOfWeek int) (*model.AvailabilityPreference, error) {
	var pref model.AvailabilityPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day_of_week = ?", userID, dayOfWeek).
		First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *availabilityRepo) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]model.AvailabilityPreference, error) {
	var prefs []model.AvailabilityPreference
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("day_of_week ASC").Find(&prefs).Error
	return prefs, err
}

func (r *availabilityRepo) Update(ctx context.Context, pref *model.AvailabilityPreference) error {
	oldVersion := pref.Version
	result := r.db.WithContext(ctx).
		Model(pref).
		Where("preference_id = ? AND version = ?", pref.PreferenceID, oldVersion).
		Updates(map[string]interface{}{
			"start_time": pref.StartTime,
			"end_time":   pref.EndTime,
			"is_active":  pref.IsActive,
			"updated_by": pref.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	pref.Version = oldVersion + 1
	return nil
}

func (r *availabilityRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("preference_id = ?", id).
		Delete(&model.AvailabilityPreference{}).Error
}
