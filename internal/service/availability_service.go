package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnapp/backend/internal/client"
	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
)

// ── 可用时段偏好模块业务错误 ──

var (
	ErrPreferenceNotFound = errors.New("可用时段偏好不存在")
	ErrPreferenceExists   = errors.New("该用户在此星期已存在偏好记录")
)

// Evaluation 偏好评估结果
// 纯标注：WithinPreference 为 false 时调用方只记录警告，从不拒绝排班
type Evaluation struct {
	WithinPreference bool
	HasPreference    bool
	Message          string
}

// AvailabilityService 可用时段偏好业务接口
type AvailabilityService interface {
	Create(ctx context.Context, req *dto.CreateAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AvailabilityResponse, error)
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]dto.AvailabilityResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error)
	Delete(ctx context.Context, id string) error
	Evaluate(ctx context.Context, userID string, dayOfWeek int, start, end string) Evaluation
	ListAvailableUsers(ctx context.Context, req *dto.AvailableUsersRequest) ([]dto.AvailableUserResponse, error)
}

type availabilityService struct {
	repo   *repository.Repository
	users  client.UserClient
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(repo *repository.Repository, users client.UserClient, logger *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, users: users, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *availabilityService) Create(ctx context.Context, req *dto.CreateAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// (user_id, day_of_week) 唯一
	if _, err := s.repo.Availability.GetByUserAndDay(ctx, req.UserID, req.DayOfWeek); err == nil {
		return nil, ErrPreferenceExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询偏好失败", zap.Error(err))
		return nil, err
	}

	pref := &model.AvailabilityPreference{
		UserID:    req.UserID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  true,
	}
	pref.CreatedBy = &callerID
	pref.UpdatedBy = &callerID

	if err := s.repo.Availability.Create(ctx, pref); err != nil {
		s.logger.Error("创建偏好失败", zap.Error(err))
		return nil, err
	}

	return s.toAvailabilityResponse(pref), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *availabilityService) GetByID(ctx context.Context, id string) (*dto.AvailabilityResponse, error) {
	pref, err := s.repo.Availability.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferenceNotFound
		}
		s.logger.Error("查询偏好失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toAvailabilityResponse(pref), nil
}

// ────────────────────── ListByUser ──────────────────────

func (s *availabilityService) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]dto.AvailabilityResponse, error) {
	prefs, err := s.repo.Availability.ListByUser(ctx, userID, activeOnly)
	if err != nil {
		s.logger.Error("列出偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AvailabilityResponse, 0, len(prefs))
	for i := range prefs {
		result = append(result, *s.toAvailabilityResponse(&prefs[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *availabilityService) Update(ctx context.Context, id string, req *dto.UpdateAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error) {
	pref, err := s.repo.Availability.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferenceNotFound
		}
		s.logger.Error("查询偏好失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.StartTime != nil {
		pref.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		pref.EndTime = *req.EndTime
	}
	if err := validateWindow(pref.StartTime, pref.EndTime); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		pref.IsActive = *req.IsActive
	}

	pref.UpdatedBy = &callerID

	if err := s.repo.Availability.Update(ctx, pref); err != nil {
		s.logger.Error("更新偏好失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toAvailabilityResponse(pref), nil
}

// ────────────────────── Delete ──────────────────────

func (s *availabilityService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Availability.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPreferenceNotFound
		}
		s.logger.Error("查询偏好失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Availability.Delete(ctx, id); err != nil {
		s.logger.Error("删除偏好失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Evaluate ──────────────────────

// Evaluate 混合可用性评估。从不返回错误、从不阻止排班：
//   - 无偏好记录 → 默认可用
//   - 记录未激活 → 视为可用
//   - 记录激活 → 候选时段须完全落在偏好时段内
//
// 查询失败同样按"默认可用"处理，仅记录日志。
func (s *availabilityService) Evaluate(ctx context.Context, userID string, dayOfWeek int, start, end string) Evaluation {
	pref, err := s.repo.Availability.GetByUserAndDay(ctx, userID, dayOfWeek)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("偏好查询失败，按默认可用处理",
				zap.String("user_id", userID),
				zap.Int("day_of_week", dayOfWeek),
				zap.Error(err),
			)
		}
		return Evaluation{WithinPreference: true, HasPreference: false}
	}

	if !pref.IsActive {
		return Evaluation{WithinPreference: true, HasPreference: true}
	}

	if pref.Contains(start, end) {
		return Evaluation{WithinPreference: true, HasPreference: true}
	}

	return Evaluation{
		WithinPreference: false,
		HasPreference:    true,
		Message: fmt.Sprintf("候选时段 %s-%s 超出用户偏好时段 %s-%s",
			start, end, pref.StartTime, pref.EndTime),
	}
}

// ────────────────────── ListAvailableUsers ──────────────────────

// ListAvailableUsers 列出某日某时段可排的用户：
// 用户微服务的全部激活用户，去掉当日已有未取消分配且时段重叠的，
// 其余逐个附上偏好匹配标注。
func (s *availabilityService) ListAvailableUsers(ctx context.Context, req *dto.AvailableUsersRequest) ([]dto.AvailableUserResponse, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("日期格式非法: %w", err)
	}

	users, err := s.users.ListActiveUsers(ctx)
	if err != nil {
		// UnavailableError 原样上抛，由 handler 映射为 503
		return nil, err
	}

	occupied, err := s.repo.Assignment.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询当日分配失败", zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}

	// 当日与候选时段重叠的未取消分配持有者
	busy := make(map[string]bool)
	for i := range occupied {
		a := &occupied[i]
		if a.IsCancelled() || a.Shift == nil {
			continue
		}
		if overlaps(req.StartTime, req.EndTime, a.Shift.StartTime, a.Shift.EndTime) {
			busy[a.UserID] = true
		}
	}

	weekday := weekdayISO(date)
	result := make([]dto.AvailableUserResponse, 0, len(users))
	for _, u := range users {
		if busy[u.ID] {
			continue
		}
		eval := s.Evaluate(ctx, u.ID, weekday, req.StartTime, req.EndTime)
		result = append(result, dto.AvailableUserResponse{
			User:               u,
			HasPreferences:     eval.HasPreference,
			MatchesPreferences: eval.WithinPreference,
			Message:            eval.Message,
		})
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *availabilityService) toAvailabilityResponse(pref *model.AvailabilityPreference) *dto.AvailabilityResponse {
	return &dto.AvailabilityResponse{
		ID:        pref.PreferenceID,
		UserID:    pref.UserID,
		DayOfWeek: pref.DayOfWeek,
		StartTime: pref.StartTime,
		EndTime:   pref.EndTime,
		IsActive:  pref.IsActive,
		CreatedAt: pref.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: pref.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
