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

// ── 休息记录模块业务错误 ──

var (
	ErrBreakNotFound     = errors.New("休息记录不存在")
	ErrBreakOutsideShift = errors.New("休息时段必须完全落在班次时段内")
)

// BreakService 班内休息记录业务接口
type BreakService interface {
	Create(ctx context.Context, assignmentID string, req *dto.CreateBreakRequest, callerID string) (*dto.BreakResponse, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]dto.BreakResponse, error)
	Delete(ctx context.Context, id string) error
}

type breakService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBreakService 创建 BreakService 实例
func NewBreakService(repo *repository.Repository, logger *zap.Logger) BreakService {
	return &breakService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *breakService) Create(ctx context.Context, assignmentID string, req *dto.CreateBreakRequest, callerID string) (*dto.BreakResponse, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", assignmentID), zap.Error(err))
		return nil, err
	}

	// 休息时段须完全落在班次时段内
	if assignment.Shift == nil ||
		req.StartTime < assignment.Shift.StartTime ||
		req.EndTime > assignment.Shift.EndTime {
		return nil, ErrBreakOutsideShift
	}

	breakType := req.Type
	if breakType == "" {
		breakType = "rest"
	}

	record := &model.BreakRecord{
		AssignmentID: assignmentID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Type:         breakType,
		Notes:        req.Notes,
	}
	record.CreatedBy = &callerID
	record.UpdatedBy = &callerID

	if err := s.repo.Break.Create(ctx, record); err != nil {
		s.logger.Error("创建休息记录失败", zap.Error(err))
		return nil, err
	}

	return s.toBreakResponse(record), nil
}

// ────────────────────── ListByAssignment ──────────────────────

func (s *breakService) ListByAssignment(ctx context.Context, assignmentID string) ([]dto.BreakResponse, error) {
	if _, err := s.repo.Assignment.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	records, err := s.repo.Break.ListByAssignment(ctx, assignmentID)
	if err != nil {
		s.logger.Error("列出休息记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.BreakResponse, 0, len(records))
	for i := range records {
		result = append(result, *s.toBreakResponse(&records[i]))
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *breakService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Break.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBreakNotFound
		}
		return err
	}

	if err := s.repo.Break.Delete(ctx, id); err != nil {
		s.logger.Error("删除休息记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *breakService) toBreakResponse(r *model.BreakRecord) *dto.BreakResponse {
	return &dto.BreakResponse{
		ID:           r.BreakID,
		AssignmentID: r.AssignmentID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Type:         r.Type,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
