package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
	"turnapp/backend/pkg/metrics"
)

// ── 排班计划模块业务错误 ──

var (
	ErrScheduleNotFound       = errors.New("排班计划不存在")
	ErrScheduleNotEditable    = errors.New("排班计划不是草稿状态，不能修改")
	ErrScheduleNotPublishable = errors.New("排班计划不可发布：需为草稿且至少包含一条明细")
	ErrScheduleInvalidRange   = errors.New("日期区间非法：开始日期必须不晚于结束日期")
	ErrLineNotFound           = errors.New("排班明细不存在")
	ErrLineDateOutOfRange     = errors.New("明细日期不在计划区间内")
	ErrLineNotInSchedule      = errors.New("明细不属于该排班计划")
)

// ScheduleService 排班计划业务接口
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
	AddLine(ctx context.Context, scheduleID string, req *dto.AddLineRequest, callerID string) (*dto.ScheduleLineResponse, error)
	AddLinesBatch(ctx context.Context, scheduleID string, req *dto.AddLinesBatchRequest, callerID string) (*dto.BatchLinesResponse, error)
	RemoveLine(ctx context.Context, scheduleID, lineID string) error
	Publish(ctx context.Context, id string, callerID string) (*dto.PublicationReport, error)
	GetConsolidated(ctx context.Context, id string) (*dto.ConsolidatedScheduleResponse, error)
}

type scheduleService struct {
	repo       *repository.Repository
	assignment AssignmentService
	logger     *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, assignment AssignmentService, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, assignment: assignment, logger: logger}
}

// ════════════════════════════════════════════════════════
// 计划 CRUD（仅草稿可变）
// ════════════════════════════════════════════════════════

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	schedule := &model.Schedule{
		Name:        req.Name,
		StartDate:   start,
		EndDate:     end,
		Description: req.Description,
		Status:      model.ScheduleDraft,
	}
	schedule.CreatedBy = &callerID
	schedule.UpdatedBy = &callerID

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建排班计划失败", zap.Error(err))
		return nil, err
	}

	return s.toScheduleResponse(schedule, false), nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByIDWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toScheduleResponse(schedule, true), nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("日期格式非法: %w", err)
		}
		schedules, err := s.repo.Schedule.ListCoveringDate(ctx, date)
		if err != nil {
			s.logger.Error("按日期列出计划失败", zap.Error(err))
			return nil, 0, err
		}
		result := make([]dto.ScheduleResponse, 0, len(schedules))
		for i := range schedules {
			result = append(result, *s.toScheduleResponse(&schedules[i], false))
		}
		return result, int64(len(result)), nil
	}

	schedules, total, err := s.repo.Schedule.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出排班计划失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, *s.toScheduleResponse(&schedules[i], false))
	}
	return result, total, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !schedule.IsEditable() {
		return nil, ErrScheduleNotEditable
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.Description != nil {
		schedule.Description = *req.Description
	}
	startStr := schedule.StartDate.Format(dto.DateLayout)
	endStr := schedule.EndDate.Format(dto.DateLayout)
	if req.StartDate != nil {
		startStr = *req.StartDate
	}
	if req.EndDate != nil {
		endStr = *req.EndDate
	}
	start, end, err := parseRange(startStr, endStr)
	if err != nil {
		return nil, err
	}
	schedule.StartDate = start
	schedule.EndDate = end

	schedule.UpdatedBy = &callerID

	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		s.logger.Error("更新排班计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toScheduleResponse(schedule, false), nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if !schedule.IsEditable() {
		return ErrScheduleNotEditable
	}

	if err := s.repo.Schedule.Delete(ctx, id); err != nil {
		s.logger.Error("删除排班计划失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════
// 明细管理（仅草稿）
// ════════════════════════════════════════════════════════

func (s *scheduleService) AddLine(ctx context.Context, scheduleID string, req *dto.AddLineRequest, callerID string) (*dto.ScheduleLineResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", scheduleID), zap.Error(err))
		return nil, err
	}

	if !schedule.IsEditable() {
		return nil, ErrScheduleNotEditable
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("日期格式非法: %w", err)
	}
	if !schedule.ContainsDate(date) {
		return nil, ErrLineDateOutOfRange
	}

	// 班次名缓存在明细上，发布报告不再回查班次表
	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return nil, err
	}

	line := &model.ScheduleLine{
		ScheduleID: scheduleID,
		UserID:     req.UserID,
		ShiftID:    shift.ShiftID,
		ShiftName:  shift.Name,
		Date:       date,
		Status:     model.LinePlanned,
		Notes:      req.Notes,
	}
	line.CreatedBy = &callerID
	line.UpdatedBy = &callerID

	if err := s.repo.ScheduleLine.Create(ctx, line); err != nil {
		s.logger.Error("创建排班明细失败", zap.Error(err))
		return nil, err
	}

	return s.toLineResponse(line), nil
}

// AddLinesBatch 批量添加明细，逐条处理，单条失败不影响其余
func (s *scheduleService) AddLinesBatch(ctx context.Context, scheduleID string, req *dto.AddLinesBatchRequest, callerID string) (*dto.BatchLinesResponse, error) {
	// 前置条件只检查一次
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if !schedule.IsEditable() {
		return nil, ErrScheduleNotEditable
	}

	resp := &dto.BatchLinesResponse{
		TotalRequested: len(req.Lines),
		Created:        make([]dto.ScheduleLineResponse, 0, len(req.Lines)),
	}

	for i := range req.Lines {
		line, err := s.AddLine(ctx, scheduleID, &req.Lines[i], callerID)
		if err != nil {
			resp.Errors = append(resp.Errors, dto.BatchLineError{
				Index:   i,
				Message: err.Error(),
			})
			continue
		}
		resp.Created = append(resp.Created, *line)
	}
	resp.TotalCreated = len(resp.Created)

	return resp, nil
}

func (s *scheduleService) RemoveLine(ctx context.Context, scheduleID, lineID string) error {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	if !schedule.IsEditable() {
		return ErrScheduleNotEditable
	}

	line, err := s.repo.ScheduleLine.GetByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineNotFound
		}
		return err
	}
	if line.ScheduleID != scheduleID {
		return ErrLineNotInSchedule
	}

	if err := s.repo.ScheduleLine.Delete(ctx, lineID); err != nil {
		s.logger.Error("删除排班明细失败", zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════
// Publish — 发布循环
// ════════════════════════════════════════════════════════

// Publish 将草稿计划的明细逐条转为真实分配。
// 前置条件检查一次；循环按存储顺序逐行独立执行，任何一行失败
// （冲突、班次未激活、下游不可用）只记入失败列表，不中断后续行。
// 循环结束后无条件置为 published 并打发布时间戳，全部失败也不例外：
// 分配是下游独立资源，失败行不回滚成功行，计划必须留下发布痕迹
// 以便运维仅重试失败子集。
func (s *scheduleService) Publish(ctx context.Context, id string, callerID string) (*dto.PublicationReport, error) {
	schedule, err := s.repo.Schedule.GetByIDWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !schedule.IsPublishable() {
		return nil, ErrScheduleNotPublishable
	}

	report := &dto.PublicationReport{
		ScheduleID:   schedule.ScheduleID,
		ScheduleName: schedule.Name,
		Successes:    make([]dto.PublicationSuccess, 0, len(schedule.Lines)),
		Failures:     make([]dto.PublicationFailure, 0),
	}

	for i := range schedule.Lines {
		line := &schedule.Lines[i]
		report.TotalProcessed++

		entry, err := s.publishLine(ctx, line, callerID)
		if err != nil {
			report.TotalFailed++
			metrics.IncPublicationLine("failed")
			report.Failures = append(report.Failures, dto.PublicationFailure{
				LineID:       line.LineID,
				UserID:       line.UserID,
				Date:         line.Date.Format(dto.DateLayout),
				ShiftID:      line.ShiftID,
				ErrorMessage: err.Error(),
			})
			s.logger.Warn("发布行失败",
				zap.String("event", "publication_line_failed"),
				zap.String("schedule_id", id),
				zap.String("line_id", line.LineID),
				zap.Error(err),
			)
			continue
		}

		report.TotalSucceeded++
		metrics.IncPublicationLine("success")
		report.Successes = append(report.Successes, *entry)
	}

	// 无条件发布，全部失败也要留下发布痕迹
	now := time.Now()
	schedule.Status = model.SchedulePublished
	schedule.PublishedAt = &now
	schedule.UpdatedBy = &callerID
	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		s.logger.Error("更新计划状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	switch {
	case report.FullSuccess():
		metrics.IncPublicationRun("full")
	case report.FullFailure():
		metrics.IncPublicationRun("all_failed")
	default:
		metrics.IncPublicationRun("partial")
	}
	s.logger.Info("排班计划已发布",
		zap.String("event", "schedule_published"),
		zap.String("schedule_id", id),
		zap.Int("processed", report.TotalProcessed),
		zap.Int("succeeded", report.TotalSucceeded),
		zap.Int("failed", report.TotalFailed),
	)

	return report, nil
}

// publishLine 发布单条明细：创建分配并确认明细
func (s *scheduleService) publishLine(ctx context.Context, line *model.ScheduleLine, callerID string) (*dto.PublicationSuccess, error) {
	created, err := s.assignment.Create(ctx, &dto.CreateAssignmentRequest{
		UserID:  line.UserID,
		ShiftID: line.ShiftID,
		Date:    line.Date.Format(dto.DateLayout),
		Notes:   line.Notes,
	}, callerID)
	if err != nil {
		return nil, err
	}

	line.Confirm(created.ID, time.Now())
	line.UpdatedBy = &callerID
	if err := s.repo.ScheduleLine.Update(ctx, line); err != nil {
		// 分配已创建但明细未确认：记为失败行，留待人工核对
		return nil, fmt.Errorf("分配 %s 已创建但明细确认失败: %w", created.ID, err)
	}

	return &dto.PublicationSuccess{
		LineID:       line.LineID,
		AssignmentID: created.ID,
		UserID:       line.UserID,
		Date:         line.Date.Format(dto.DateLayout),
		ShiftName:    line.ShiftName,
	}, nil
}

// ════════════════════════════════════════════════════════
// GetConsolidated — 合并视图
// ════════════════════════════════════════════════════════

// GetConsolidated 计划期间实际分配的按日合并视图与统计
func (s *scheduleService) GetConsolidated(ctx context.Context, id string) (*dto.ConsolidatedScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByIDWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByPeriod(ctx, schedule.StartDate, schedule.EndDate)
	if err != nil {
		s.logger.Error("查询计划期间分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.ConsolidatedScheduleResponse{
		Schedule: *s.toScheduleResponse(schedule, false),
		Days:     make([]dto.ConsolidatedDay, 0),
	}

	var currentDay *dto.ConsolidatedDay
	for i := range assignments {
		a := &assignments[i]
		dateStr := a.Date.Format(dto.DateLayout)
		if currentDay == nil || currentDay.Date != dateStr {
			resp.Days = append(resp.Days, dto.ConsolidatedDay{Date: dateStr})
			currentDay = &resp.Days[len(resp.Days)-1]
		}
		currentDay.Assignments = append(currentDay.Assignments, *s.assignmentBrief(a))

		resp.Stats.TotalAssignments++
		switch a.Status {
		case model.AssignmentCompleted:
			resp.Stats.Completed++
		case model.AssignmentCancelled:
			resp.Stats.Cancelled++
		case model.AssignmentAssigned:
			resp.Stats.Assigned++
		}
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrScheduleInvalidRange
	}
	end, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrScheduleInvalidRange
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrScheduleInvalidRange
	}
	return start, end, nil
}

func (s *scheduleService) toScheduleResponse(schedule *model.Schedule, withLines bool) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:          schedule.ScheduleID,
		Name:        schedule.Name,
		StartDate:   schedule.StartDate.Format(dto.DateLayout),
		EndDate:     schedule.EndDate.Format(dto.DateLayout),
		Description: schedule.Description,
		Status:      schedule.Status,
		CreatedAt:   schedule.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   schedule.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if schedule.PublishedAt != nil {
		published := schedule.PublishedAt.Format("2006-01-02T15:04:05Z")
		resp.PublishedAt = &published
	}
	if withLines {
		resp.Lines = make([]dto.ScheduleLineResponse, 0, len(schedule.Lines))
		for i := range schedule.Lines {
			resp.Lines = append(resp.Lines, *s.toLineResponse(&schedule.Lines[i]))
		}
	}
	return resp
}

func (s *scheduleService) toLineResponse(line *model.ScheduleLine) *dto.ScheduleLineResponse {
	resp := &dto.ScheduleLineResponse{
		ID:           line.LineID,
		ScheduleID:   line.ScheduleID,
		UserID:       line.UserID,
		ShiftID:      line.ShiftID,
		ShiftName:    line.ShiftName,
		Date:         line.Date.Format(dto.DateLayout),
		AssignmentID: line.AssignmentID,
		Status:       line.Status,
		Notes:        line.Notes,
	}
	if line.ConfirmedAt != nil {
		confirmed := line.ConfirmedAt.Format("2006-01-02T15:04:05Z")
		resp.ConfirmedAt = &confirmed
	}
	return resp
}

func (s *scheduleService) assignmentBrief(a *model.Assignment) *dto.AssignmentResponse {
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
