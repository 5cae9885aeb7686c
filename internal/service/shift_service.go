package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound  = errors.New("班次不存在")
	ErrShiftNameTaken = errors.New("班次名称已被使用")
	ErrShiftInactive  = errors.New("班次未激活，不能用于排班")
)

// ShiftService 班次模板业务接口
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	Deactivate(ctx context.Context, id string, callerID string) error
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 名称唯一
	if _, err := s.repo.Shift.GetByName(ctx, req.Name); err == nil {
		return nil, ErrShiftNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询班次名称失败", zap.Error(err))
		return nil, err
	}

	shift := &model.Shift{
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: durationMinutes(req.StartTime, req.EndTime),
		Description:     req.Description,
		Status:          model.ShiftActive,
	}
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	return s.toShiftResponse(shift), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toShiftResponse(shift), nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error) {
	activeOnly := req.Active != nil && *req.Active
	shifts, total, err := s.repo.Shift.List(ctx, activeOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *s.toShiftResponse(&shifts[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != shift.Name {
		if _, err := s.repo.Shift.GetByName(ctx, *req.Name); err == nil {
			return nil, ErrShiftNameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if err := validateWindow(shift.StartTime, shift.EndTime); err != nil {
		return nil, err
	}
	shift.DurationMinutes = durationMinutes(shift.StartTime, shift.EndTime)
	if req.Description != nil {
		shift.Description = *req.Description
	}

	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("更新班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toShiftResponse(shift), nil
}

// ────────────────────── Deactivate ──────────────────────

// Deactivate 停用班次（软停用，不删除历史引用）
func (s *shiftService) Deactivate(ctx context.Context, id string, callerID string) error {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if shift.Status == model.ShiftInactive {
		return nil // 已停用，幂等
	}

	shift.Status = model.ShiftInactive
	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("停用班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *shiftService) toShiftResponse(shift *model.Shift) *dto.ShiftResponse {
	return &dto.ShiftResponse{
		ID:              shift.ShiftID,
		Name:            shift.Name,
		StartTime:       shift.StartTime,
		EndTime:         shift.EndTime,
		DurationMinutes: shift.DurationMinutes,
		Description:     shift.Description,
		Status:          shift.Status,
		CreatedAt:       shift.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       shift.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
