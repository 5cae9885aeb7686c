package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
)

// ── 测试辅助 ──

type scheduleTestEnv struct {
	svc            ScheduleService
	scheduleRepo   *mockScheduleRepo
	lineRepo       *mockScheduleLineRepo
	shiftRepo      *mockShiftRepo
	assignmentRepo *mockAssignmentRepo
	users          *mockUserClient
}

func setupTestScheduleService() *scheduleTestEnv {
	shiftRepo := newMockShiftRepo()
	assignmentRepo := newMockAssignmentRepo()
	lineRepo := newMockScheduleLineRepo()
	scheduleRepo := newMockScheduleRepo(lineRepo)
	repo := &repository.Repository{
		Shift:        shiftRepo,
		Availability: newMockAvailabilityRepo(),
		Assignment:   assignmentRepo,
		Schedule:     scheduleRepo,
		ScheduleLine: lineRepo,
		Replacement:  newMockReplacementRepo(),
		Break:        newMockBreakRepo(),
	}
	users := newMockUserClient()
	logger := zap.NewNop()
	availability := NewAvailabilityService(repo, users, logger)
	assignment := NewAssignmentService(repo, users, availability, logger)
	svc := NewScheduleService(repo, assignment, logger)
	return &scheduleTestEnv{
		svc:            svc,
		scheduleRepo:   scheduleRepo,
		lineRepo:       lineRepo,
		shiftRepo:      shiftRepo,
		assignmentRepo: assignmentRepo,
		users:          users,
	}
}

func (e *scheduleTestEnv) seedSchedule(t *testing.T, id, start, end, status string) *model.Schedule {
	t.Helper()
	schedule := &model.Schedule{
		ScheduleID: id,
		Name:       "三月第一周",
		StartDate:  mustDate(t, start),
		EndDate:    mustDate(t, end),
		Status:     status,
	}
	e.scheduleRepo.schedules[id] = schedule
	return schedule
}

func (e *scheduleTestEnv) seedShift(id, name, start, end string) *model.Shift {
	shift := &model.Shift{
		ShiftID:   id,
		Name:      name,
		StartTime: start,
		EndTime:   end,
		Status:    model.ShiftActive,
	}
	e.shiftRepo.shifts[id] = shift
	return shift
}

func (e *scheduleTestEnv) seedLine(t *testing.T, id, scheduleID, userID string, shift *model.Shift, date string) {
	t.Helper()
	e.lineRepo.lines = append(e.lineRepo.lines, &model.ScheduleLine{
		LineID:     id,
		ScheduleID: scheduleID,
		UserID:     userID,
		ShiftID:    shift.ShiftID,
		ShiftName:  shift.Name,
		Date:       mustDate(t, date),
		Status:     model.LinePlanned,
	})
}

// ── 计划 CRUD 测试 ──

func TestScheduleService_Create_Success(t *testing.T) {
	env := setupTestScheduleService()

	result, err := env.svc.Create(context.Background(), &dto.CreateScheduleRequest{
		Name:      "三月第一周",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-08",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.ScheduleDraft {
		t.Errorf("新建计划应为draft，实际=%s", result.Status)
	}
}

func TestScheduleService_Create_InvalidRange(t *testing.T) {
	env := setupTestScheduleService()

	_, err := env.svc.Create(context.Background(), &dto.CreateScheduleRequest{
		Name:      "倒置区间",
		StartDate: "2026-03-08",
		EndDate:   "2026-03-02",
	}, "admin-001")
	if !errors.Is(err, ErrScheduleInvalidRange) {
		t.Errorf("期望 ErrScheduleInvalidRange，实际=%v", err)
	}
}

func TestScheduleService_Update_NotDraft(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.SchedulePublished)

	name := "改名"
	_, err := env.svc.Update(context.Background(), "sched-001", &dto.UpdateScheduleRequest{Name: &name}, "admin-001")
	if !errors.Is(err, ErrScheduleNotEditable) {
		t.Errorf("非草稿计划不可修改，实际=%v", err)
	}
}

func TestScheduleService_Delete_NotDraft(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.SchedulePublished)

	err := env.svc.Delete(context.Background(), "sched-001")
	if !errors.Is(err, ErrScheduleNotEditable) {
		t.Errorf("非草稿计划不可删除，实际=%v", err)
	}
}

// ── 明细管理测试 ──

func TestScheduleService_AddLine_Success(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	env.seedShift("shift-001", "早班", "08:00", "16:00")

	result, err := env.svc.AddLine(context.Background(), "sched-001", &dto.AddLineRequest{
		UserID:  "user-001",
		ShiftID: "shift-001",
		Date:    "2026-03-03",
	}, "admin-001")
	if err != nil {
		t.Fatalf("AddLine 应成功: %v", err)
	}
	if result.Status != model.LinePlanned {
		t.Errorf("新建明细应为planned，实际=%s", result.Status)
	}
	if result.ShiftName != "早班" {
		t.Errorf("明细应缓存班次名，实际=%s", result.ShiftName)
	}
}

func TestScheduleService_AddLine_DateOutOfRange(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	env.seedShift("shift-001", "早班", "08:00", "16:00")

	_, err := env.svc.AddLine(context.Background(), "sched-001", &dto.AddLineRequest{
		UserID:  "user-001",
		ShiftID: "shift-001",
		Date:    "2026-03-15",
	}, "admin-001")
	if !errors.Is(err, ErrLineDateOutOfRange) {
		t.Errorf("区间外日期应返回 ErrLineDateOutOfRange，实际=%v", err)
	}
}

func TestScheduleService_AddLine_NotDraft(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.SchedulePublished)
	env.seedShift("shift-001", "早班", "08:00", "16:00")

	_, err := env.svc.AddLine(context.Background(), "sched-001", &dto.AddLineRequest{
		UserID:  "user-001",
		ShiftID: "shift-001",
		Date:    "2026-03-03",
	}, "admin-001")
	if !errors.Is(err, ErrScheduleNotEditable) {
		t.Errorf("非草稿计划不可加明细，实际=%v", err)
	}
}

func TestScheduleService_AddLinesBatch_ContinueOnError(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	env.seedShift("shift-001", "早班", "08:00", "16:00")

	result, err := env.svc.AddLinesBatch(context.Background(), "sched-001", &dto.AddLinesBatchRequest{
		Lines: []dto.AddLineRequest{
			{UserID: "user-001", ShiftID: "shift-001", Date: "2026-03-03"},
			{UserID: "user-002", ShiftID: "shift-001", Date: "2026-03-04"},
			{UserID: "user-003", ShiftID: "shift-001", Date: "2026-03-20"}, // 区间外
		},
	}, "admin-001")
	if err != nil {
		t.Fatalf("批量添加整体应成功: %v", err)
	}
	if result.TotalRequested != 3 || result.TotalCreated != 2 {
		t.Errorf("期望requested=3 created=2，实际=%d/%d", result.TotalRequested, result.TotalCreated)
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 2 {
		t.Errorf("期望第3条失败并记录索引2，实际=%+v", result.Errors)
	}
}

func TestScheduleService_RemoveLine_WrongSchedule(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	env.seedSchedule(t, "sched-002", "2026-03-09", "2026-03-15", model.ScheduleDraft)
	shift := env.seedShift("shift-001", "早班", "08:00", "16:00")
	env.seedLine(t, "line-001", "sched-002", "user-001", shift, "2026-03-09")

	err := env.svc.RemoveLine(context.Background(), "sched-001", "line-001")
	if !errors.Is(err, ErrLineNotInSchedule) {
		t.Errorf("明细不属于该计划应返回 ErrLineNotInSchedule，实际=%v", err)
	}
}

// ── Publish 测试 ──

func TestScheduleService_Publish_NotDraft(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.SchedulePublished)
	shift := env.seedShift("shift-001", "早班", "08:00", "16:00")
	env.seedLine(t, "line-001", "sched-001", "user-001", shift, "2026-03-03")

	_, err := env.svc.Publish(context.Background(), "sched-001", "admin-001")
	if !errors.Is(err, ErrScheduleNotPublishable) {
		t.Errorf("已发布计划不可重复发布，实际=%v", err)
	}
}

func TestScheduleService_Publish_EmptySchedule(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)

	_, err := env.svc.Publish(context.Background(), "sched-001", "admin-001")
	if !errors.Is(err, ErrScheduleNotPublishable) {
		t.Errorf("空计划不可发布，实际=%v", err)
	}
}

func TestScheduleService_Publish_FullSuccess(t *testing.T) {
	env := setupTestScheduleService()
	env.users.addUser("user-001", "Ana", true)
	env.users.addUser("user-002", "Luis", true)
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	shift := env.seedShift("shift-001", "早班", "08:00", "16:00")
	env.seedLine(t, "line-001", "sched-001", "user-001", shift, "2026-03-03")
	env.seedLine(t, "line-002", "sched-001", "user-002", shift, "2026-03-03")

	report, err := env.svc.Publish(context.Background(), "sched-001", "admin-001")
	if err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}
	if report.TotalProcessed != 2 || report.TotalSucceeded != 2 || report.TotalFailed != 0 {
		t.Errorf("期望processed=2 succeeded=2 failed=0，实际=%d/%d/%d",
			report.TotalProcessed, report.TotalSucceeded, report.TotalFailed)
	}
	if !report.FullSuccess() {
		t.Error("期望FullSuccess")
	}

	stored := env.scheduleRepo.schedules["sched-001"]
	if stored.Status != model.SchedulePublished {
		t.Errorf("计划应转为published，实际=%s", stored.Status)
	}
	if stored.PublishedAt == nil {
		t.Error("发布后应有发布时间戳")
	}

	// 成功行的明细应确认并回填分配ID
	line, err := env.lineRepo.GetByID(context.Background(), "line-001")
	if err != nil {
		t.Fatalf("查询明细失败: %v", err)
	}
	if line.Status != model.LineConfirmed {
		t.Errorf("成功行明细应为confirmed，实际=%s", line.Status)
	}
	if line.AssignmentID == nil {
		t.Error("成功行明细应回填分配ID")
	}
}

func TestScheduleService_Publish_PartialFailure(t *testing.T) {
	env := setupTestScheduleService()
	env.users.addUser("user-001", "Ana", true)
	env.users.addUser("user-002", "Luis", true)
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	morning := env.seedShift("shift-001", "早班", "08:00", "16:00")
	overlap := env.seedShift("shift-002", "中班", "10:00", "18:00")

	// 第2行与第1行同人同日时段重叠，发布时必然冲突
	env.seedLine(t, "line-001", "sched-001", "user-001", morning, "2026-03-03")
	env.seedLine(t, "line-002", "sched-001", "user-001", overlap, "2026-03-03")
	env.seedLine(t, "line-003", "sched-001", "user-002", morning, "2026-03-03")

	report, err := env.svc.Publish(context.Background(), "sched-001", "admin-001")
	if err != nil {
		t.Fatalf("部分失败时 Publish 仍应返回报告: %v", err)
	}
	if report.TotalProcessed != 3 || report.TotalSucceeded != 2 || report.TotalFailed != 1 {
		t.Errorf("期望processed=3 succeeded=2 failed=1，实际=%d/%d/%d",
			report.TotalProcessed, report.TotalSucceeded, report.TotalFailed)
	}
	if report.TotalSucceeded+report.TotalFailed != report.TotalProcessed {
		t.Error("成功数+失败数应等于处理数")
	}
	if len(report.Failures) != 1 || report.Failures[0].LineID != "line-002" {
		t.Errorf("失败列表应只含冲突行line-002，实际=%+v", report.Failures)
	}

	// 部分失败不阻止发布
	if env.scheduleRepo.schedules["sched-001"].Status != model.SchedulePublished {
		t.Error("部分失败时计划仍应转为published")
	}
}

func TestScheduleService_Publish_AllFailedStillPublished(t *testing.T) {
	env := setupTestScheduleService()
	// 用户服务无任何用户：每一行都会失败
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.ScheduleDraft)
	shift := env.seedShift("shift-001", "早班", "08:00", "16:00")
	env.seedLine(t, "line-001", "sched-001", "user-001", shift, "2026-03-03")
	env.seedLine(t, "line-002", "sched-001", "user-002", shift, "2026-03-04")

	report, err := env.svc.Publish(context.Background(), "sched-001", "admin-001")
	if err != nil {
		t.Fatalf("全部失败时 Publish 仍应返回报告: %v", err)
	}
	if !report.FullFailure() {
		t.Errorf("期望FullFailure，实际 succeeded=%d failed=%d", report.TotalSucceeded, report.TotalFailed)
	}

	// 全部失败也无条件发布，留下发布痕迹
	stored := env.scheduleRepo.schedules["sched-001"]
	if stored.Status != model.SchedulePublished {
		t.Errorf("全部失败时计划仍应转为published，实际=%s", stored.Status)
	}
	if stored.PublishedAt == nil {
		t.Error("全部失败时仍应有发布时间戳")
	}
}

// ── GetConsolidated 测试 ──

func TestScheduleService_GetConsolidated_Stats(t *testing.T) {
	env := setupTestScheduleService()
	env.seedSchedule(t, "sched-001", "2026-03-02", "2026-03-08", model.SchedulePublished)
	shift := env.seedShift("shift-001", "早班", "08:00", "16:00")

	env.assignmentRepo.assignments["assign-001"] = &model.Assignment{
		AssignmentID: "assign-001", UserID: "user-001", ShiftID: shift.ShiftID,
		Date: mustDate(t, "2026-03-03"), Status: model.AssignmentAssigned, Shift: shift,
	}
	env.assignmentRepo.assignments["assign-002"] = &model.Assignment{
		AssignmentID: "assign-002", UserID: "user-002", ShiftID: shift.ShiftID,
		Date: mustDate(t, "2026-03-04"), Status: model.AssignmentCancelled, Shift: shift,
	}
	env.assignmentRepo.assignments["assign-003"] = &model.Assignment{
		AssignmentID: "assign-003", UserID: "user-003", ShiftID: shift.ShiftID,
		Date: mustDate(t, "2026-03-05"), Status: model.AssignmentCompleted, Shift: shift,
	}

	result, err := env.svc.GetConsolidated(context.Background(), "sched-001")
	if err != nil {
		t.Fatalf("GetConsolidated 应成功: %v", err)
	}
	if result.Stats.TotalAssignments != 3 {
		t.Errorf("期望3条分配，实际=%d", result.Stats.TotalAssignments)
	}
	if result.Stats.Assigned != 1 || result.Stats.Cancelled != 1 || result.Stats.Completed != 1 {
		t.Errorf("统计不符: %+v", result.Stats)
	}
}
