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

func setupTestBreakService(t *testing.T) (BreakService, *mockBreakRepo) {
	t.Helper()
	breakRepo := newMockBreakRepo()
	assignmentRepo := newMockAssignmentRepo()
	lineRepo := newMockScheduleLineRepo()
	repo := &repository.Repository{
		Shift:        newMockShiftRepo(),
		Availability: newMockAvailabilityRepo(),
		Assignment:   assignmentRepo,
		Schedule:     newMockScheduleRepo(lineRepo),
		ScheduleLine: lineRepo,
		Replacement:  newMockReplacementRepo(),
		Break:        breakRepo,
	}
	logger := zap.NewNop()
	svc := NewBreakService(repo, logger)

	assignmentRepo.assignments["assign-001"] = &model.Assignment{
		AssignmentID: "assign-001",
		UserID:       "user-001",
		ShiftID:      "shift-001",
		Date:         mustDate(t, "2026-03-03"),
		Status:       model.AssignmentAssigned,
		Shift: &model.Shift{
			ShiftID:   "shift-001",
			Name:      "早班",
			StartTime: "08:00",
			EndTime:   "16:00",
			Status:    model.ShiftActive,
		},
	}
	return svc, breakRepo
}

// ── Create 测试 ──

func TestBreakService_Create_Success(t *testing.T) {
	svc, _ := setupTestBreakService(t)

	result, err := svc.Create(context.Background(), "assign-001", &dto.CreateBreakRequest{
		StartTime: "12:00",
		EndTime:   "12:30",
		Type:      "meal",
	}, "user-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Type != "meal" {
		t.Errorf("期望Type=meal，实际=%s", result.Type)
	}
}

func TestBreakService_Create_DefaultType(t *testing.T) {
	svc, _ := setupTestBreakService(t)

	result, err := svc.Create(context.Background(), "assign-001", &dto.CreateBreakRequest{
		StartTime: "10:00",
		EndTime:   "10:15",
	}, "user-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Type != "rest" {
		t.Errorf("未指定类型应默认rest，实际=%s", result.Type)
	}
}

func TestBreakService_Create_OutsideShift(t *testing.T) {
	svc, _ := setupTestBreakService(t)

	// 班次 08:00-16:00，休息越过下班时刻
	_, err := svc.Create(context.Background(), "assign-001", &dto.CreateBreakRequest{
		StartTime: "15:30",
		EndTime:   "16:30",
	}, "user-001")
	if !errors.Is(err, ErrBreakOutsideShift) {
		t.Errorf("越界休息应返回 ErrBreakOutsideShift，实际=%v", err)
	}
}

func TestBreakService_Create_AssignmentNotFound(t *testing.T) {
	svc, _ := setupTestBreakService(t)

	_, err := svc.Create(context.Background(), "no-such-assignment", &dto.CreateBreakRequest{
		StartTime: "12:00",
		EndTime:   "12:30",
	}, "user-001")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际=%v", err)
	}
}

// ── ListByAssignment / Delete 测试 ──

func TestBreakService_ListByAssignment(t *testing.T) {
	svc, breakRepo := setupTestBreakService(t)
	breakRepo.records["break-001"] = &model.BreakRecord{
		BreakID:      "break-001",
		AssignmentID: "assign-001",
		StartTime:    "12:00",
		EndTime:      "12:30",
		Type:         "meal",
	}

	result, err := svc.ListByAssignment(context.Background(), "assign-001")
	if err != nil {
		t.Fatalf("ListByAssignment 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("期望1条记录，实际=%d", len(result))
	}
}

func TestBreakService_Delete_NotFound(t *testing.T) {
	svc, _ := setupTestBreakService(t)

	err := svc.Delete(context.Background(), "no-such-break")
	if !errors.Is(err, ErrBreakNotFound) {
		t.Errorf("期望 ErrBreakNotFound，实际=%v", err)
	}
}
