package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"turnapp/backend/internal/model"
	pkgerrors "turnapp/backend/pkg/errors"
)

// ScheduleRepository 排班计划数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetByIDWithLines(ctx context.Context, id string) (*model.Schedule, error)
	List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error)
	ListCoveringDate(ctx context.Context, date time.Time) ([]model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id string) error
}

// ScheduleLineRepository 排班明细数据访问接口
type ScheduleLineRepository interface {
	Create(ctx context.Context, line *model.ScheduleLine) error
	GetByID(ctx context.Context, id string) (*model.ScheduleLine, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.ScheduleLine, error)
	Update(ctx context.Context, line *model.ScheduleLine) error
	Delete(ctx context.Context, id string) error
}

// ── Schedule Repository 实现 ──

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) GetByIDWithLines(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			// 发布循环依赖明细的存储顺序
			return db.Order("created_at ASC, line_id ASC")
		}).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error) {
	var schedules []model.Schedule
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Schedule{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("start_date DESC").
		Find(&schedules).Error
	return schedules, total, err
}

func (r *scheduleRepo) ListCoveringDate(ctx context.Context, date time.Time) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("start_date DESC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	oldVersion := schedule.Version
	result := r.db.WithContext(ctx).
		Model(schedule).
		Where("schedule_id = ? AND version = ?", schedule.ScheduleID, oldVersion).
		Updates(map[string]interface{}{
			"name":         schedule.Name,
			"start_date":   schedule.StartDate,
			"end_date":     schedule.EndDate,
			"description":  schedule.Description,
			"status":       schedule.Status,
			"published_at": schedule.PublishedAt,
			"updated_by":   schedule.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	schedule.Version = oldVersion + 1
	return nil
}

func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		Delete(&model.Schedule{}).Error
}

// ── ScheduleLine Repository 实现 ──

type scheduleLineRepo struct {
	db *gorm.DB
}

func NewScheduleLineRepo(db *gorm.DB) ScheduleLineRepository {
	return &scheduleLineRepo{db: db}
}

func (r *scheduleLineRepo) Create(ctx context.Context, line *model.ScheduleLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *scheduleLineRepo) GetByID(ctx context.Context, id string) (*model.ScheduleLine, error) {
	var line model.ScheduleLine
	err := r.db.WithContext(ctx).
		Where("line_id = ?", id).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *scheduleLineRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.ScheduleLine, error) {
	var lines []model.ScheduleLine
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC, line_id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *scheduleLineRepo) Update(ctx context.Context, line *model.ScheduleLine) error {
	oldVersion := line.Version
	result := r.db.WithContext(ctx).
		Model(line).
		Where("line_id = ? AND version = ?", line.LineID, oldVersion).
		Updates(map[string]interface{}{
			"assignment_id": line.AssignmentID,
			"status":        line.Status,
			"notes":         line.Notes,
			"confirmed_at":  line.ConfirmedAt,
			"updated_by":    line.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	line.Version = oldVersion + 1
	return nil
}

func (r *scheduleLineRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("line_id = ?", id).
		Delete(&model.ScheduleLine{}).Error
}
