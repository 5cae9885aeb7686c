package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
	"turnapp/backend/pkg/metrics"
)

// ── 替班模块业务错误 ──

var (
	ErrReplacementNotFound         = errors.New("替班请求不存在")
	ErrReplacementNotPending       = errors.New("替班请求已有决定，不能重复审批")
	ErrReplacementSamePerson       = errors.New("替班人不能是分配的当前持有人")
	ErrReplacementAssignmentClosed = errors.New("已取消或已完成的分配不能发起替班")
)

// ReplacementService 替班请求业务接口
type ReplacementService interface {
	Request(ctx context.Context, req *dto.CreateReplacementRequest, callerID string) (*dto.ReplacementResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ReplacementResponse, error)
	ListPending(ctx context.Context, req *dto.PaginationRequest) ([]dto.ReplacementResponse, int64, error)
	ListByReplacementUser(ctx context.Context, userID string) ([]dto.ReplacementResponse, error)
	Approve(ctx context.Context, id string, approverID string) (*dto.ReplacementResponse, error)
	Reject(ctx context.Context, id string, approverID string, reason string) (*dto.ReplacementResponse, error)
}

type replacementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReplacementService 创建 ReplacementService 实例
func NewReplacementService(repo *repository.Repository, logger *zap.Logger) ReplacementService {
	return &replacementService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════
// Request — 发起替班
// ════════════════════════════════════════════════════════

// Request 发起替班请求。仅创建 pending 记录，此时不改动分配本身。
func (s *replacementService) Request(ctx context.Context, req *dto.CreateReplacementRequest, callerID string) (*dto.ReplacementResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", req.AssignmentID), zap.Error(err))
		return nil, err
	}

	if assignment.Status == model.AssignmentCancelled || assignment.Status == model.AssignmentCompleted {
		return nil, ErrReplacementAssignmentClosed
	}
	if req.ReplacementUserID == assignment.UserID {
		return nil, ErrReplacementSamePerson
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("日期格式非法: %w", err)
	}

	replacement := &model.ReplacementRequest{
		AssignmentID:      req.AssignmentID,
		ReplacementUserID: req.ReplacementUserID,
		Reason:            req.Reason,
		Date:              date,
		Status:            model.ReplacementPending,
	}
	replacement.CreatedBy = &callerID
	replacement.UpdatedBy = &callerID

	if err := s.repo.Replacement.Create(ctx, replacement); err != nil {
		s.logger.Error("创建替班请求失败", zap.Error(err))
		return nil, err
	}

	return s.toReplacementResponse(replacement), nil
}

// ════════════════════════════════════════════════════════
// 读操作
// ════════════════════════════════════════════════════════

func (s *replacementService) GetByID(ctx context.Context, id string) (*dto.ReplacementResponse, error) {
	replacement, err := s.repo.Replacement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplacementNotFound
		}
		s.logger.Error("查询替班请求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toReplacementResponse(replacement), nil
}

func (s *replacementService) ListPending(ctx context.Context, req *dto.PaginationRequest) ([]dto.ReplacementResponse, int64, error) {
	replacements, total, err := s.repo.Replacement.ListPending(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出待审批替班请求失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ReplacementResponse, 0, len(replacements))
	for i := range replacements {
		result = append(result, *s.toReplacementResponse(&replacements[i]))
	}
	return result, total, nil
}

func (s *replacementService) ListByReplacementUser(ctx context.Context, userID string) ([]dto.ReplacementResponse, error) {
	replacements, err := s.repo.Replacement.ListByReplacementUser(ctx, userID)
	if err != nil {
		s.logger.Error("按替班人列出请求失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReplacementResponse, 0, len(replacements))
	for i := range replacements {
		result = append(result, *s.toReplacementResponse(&replacements[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════
// Approve / Reject — 审批
// ════════════════════════════════════════════════════════

// Approve 批准替班：这是分配所有权变更的唯一路径。
// 将分配的 user_id 改为替班人并追加审计备注。
// 审批时不对替班人做冲突复核，沿用既有审批语义（见 DESIGN.md）。
func (s *replacementService) Approve(ctx context.Context, id string, approverID string) (*dto.ReplacementResponse, error) {
	replacement, err := s.repo.Replacement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplacementNotFound
		}
		s.logger.Error("查询替班请求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !replacement.CanTransitionTo(model.ReplacementApproved) {
		return nil, ErrReplacementNotPending
	}

	assignment, err := s.repo.Assignment.GetByID(ctx, replacement.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	originalUserID := assignment.UserID
	assignment.UserID = replacement.ReplacementUserID
	assignment.Notes = appendNote(assignment.Notes,
		fmt.Sprintf("REEMPLAZADO: Usuario original %s reemplazado por %s. Motivo: %s",
			originalUserID, replacement.ReplacementUserID, replacement.Reason))
	assignment.UpdatedBy = &approverID
	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("变更分配所有权失败", zap.String("assignment_id", assignment.AssignmentID), zap.Error(err))
		return nil, err
	}

	replacement.Status = model.ReplacementApproved
	replacement.ApproverID = &approverID
	replacement.UpdatedBy = &approverID
	if err := s.repo.Replacement.Update(ctx, replacement); err != nil {
		s.logger.Error("更新替班请求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	metrics.IncReplacementDecision("approved")
	s.logger.Info("替班请求已批准",
		zap.String("event", "replacement_approved"),
		zap.String("replacement_id", id),
		zap.String("assignment_id", assignment.AssignmentID),
		zap.String("original_user", originalUserID),
		zap.String("replacement_user", replacement.ReplacementUserID),
	)

	return s.toReplacementResponse(replacement), nil
}

// Reject 驳回替班：驳回理由追加到请求的 reason 字段，分配不受影响
func (s *replacementService) Reject(ctx context.Context, id string, approverID string, reason string) (*dto.ReplacementResponse, error) {
	replacement, err := s.repo.Replacement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplacementNotFound
		}
		s.logger.Error("查询替班请求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !replacement.CanTransitionTo(model.ReplacementRejected) {
		return nil, ErrReplacementNotPending
	}

	replacement.Status = model.ReplacementRejected
	replacement.ApproverID = &approverID
	replacement.Reason = appendNote(replacement.Reason, "RECHAZADO: "+reason)
	replacement.UpdatedBy = &approverID
	if err := s.repo.Replacement.Update(ctx, replacement); err != nil {
		s.logger.Error("更新替班请求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	metrics.IncReplacementDecision("rejected")
	s.logger.Info("替班请求已驳回",
		zap.String("event", "replacement_rejected"),
		zap.String("replacement_id", id),
	)

	return s.toReplacementResponse(replacement), nil
}

// ── 内部辅助方法 ──

func (s *replacementService) toReplacementResponse(r *model.ReplacementRequest) *dto.ReplacementResponse {
	return &dto.ReplacementResponse{
		ID:                r.ReplacementID,
		AssignmentID:      r.AssignmentID,
		ReplacementUserID: r.ReplacementUserID,
		ApproverID:        r.ApproverID,
		Reason:            r.Reason,
		Date:              r.Date.Format(dto.DateLayout),
		Status:            r.Status,
		CreatedAt:         r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:         r.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
