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

func setupTestShiftService() (ShiftService, *mockShiftRepo) {
	shiftRepo := newMockShiftRepo()
	repo := &repository.Repository{
		Shift:        shiftRepo,
		Availability: newMockAvailabilityRepo(),
		Assignment:   newMockAssignmentRepo(),
		Schedule:     newMockScheduleRepo(newMockScheduleLineRepo()),
		ScheduleLine: newMockScheduleLineRepo(),
		Replacement:  newMockReplacementRepo(),
		Break:        newMockBreakRepo(),
	}
	logger := zap.NewNop()
	svc := NewShiftService(repo, logger)
	return svc, shiftRepo
}

// ── Create 测试 ──

func TestShiftService_Create_Success(t *testing.T) {
	svc, _ := setupTestShiftService()

	req := &dto.CreateShiftRequest{
		Name:      "早班",
		StartTime: "08:00",
		EndTime:   "16:00",
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "早班" {
		t.Errorf("期望Name=早班，实际=%s", result.Name)
	}
	if result.DurationMinutes != 480 {
		t.Errorf("期望时长480分钟，实际=%d", result.DurationMinutes)
	}
	if result.Status != model.ShiftActive {
		t.Errorf("新建班次应为active，实际=%s", result.Status)
	}
}

func TestShiftService_Create_DuplicateName(t *testing.T) {
	svc, shiftRepo := setupTestShiftService()
	shiftRepo.shifts["shift-001"] = &model.Shift{
		ShiftID: "shift-001",
		Name:    "早班",
		Status:  model.ShiftActive,
	}

	req := &dto.CreateShiftRequest{
		Name:      "早班",
		StartTime: "08:00",
		EndTime:   "16:00",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrShiftNameTaken) {
		t.Errorf("重名应返回 ErrShiftNameTaken，实际=%v", err)
	}
}

func TestShiftService_Create_InvalidWindow(t *testing.T) {
	svc, _ := setupTestShiftService()

	req := &dto.CreateShiftRequest{
		Name:      "倒置班",
		StartTime: "16:00",
		EndTime:   "08:00",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrInvalidTimeWindow) {
		t.Errorf("起止倒置应返回 ErrInvalidTimeWindow，实际=%v", err)
	}
}

// ── GetByID / Update 测试 ──

func TestShiftService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestShiftService()

	_, err := svc.GetByID(context.Background(), "no-such-shift")
	if !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("期望 ErrShiftNotFound，实际=%v", err)
	}
}

func TestShiftService_Update_RecomputesDuration(t *testing.T) {
	svc, shiftRepo := setupTestShiftService()
	shiftRepo.shifts["shift-001"] = &model.Shift{
		ShiftID:         "shift-001",
		Name:            "早班",
		StartTime:       "08:00",
		EndTime:         "16:00",
		DurationMinutes: 480,
		Status:          model.ShiftActive,
	}

	newEnd := "14:00"
	result, err := svc.Update(context.Background(), "shift-001", &dto.UpdateShiftRequest{EndTime: &newEnd}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.DurationMinutes != 360 {
		t.Errorf("期望重算时长360分钟，实际=%d", result.DurationMinutes)
	}
}

// ── Deactivate 测试 ──

func TestShiftService_Deactivate_Idempotent(t *testing.T) {
	svc, shiftRepo := setupTestShiftService()
	shiftRepo.shifts["shift-001"] = &model.Shift{
		ShiftID:   "shift-001",
		Name:      "早班",
		StartTime: "08:00",
		EndTime:   "16:00",
		Status:    model.ShiftActive,
	}

	if err := svc.Deactivate(context.Background(), "shift-001", "admin-001"); err != nil {
		t.Fatalf("首次停用应成功: %v", err)
	}
	if shiftRepo.shifts["shift-001"].Status != model.ShiftInactive {
		t.Errorf("期望状态inactive，实际=%s", shiftRepo.shifts["shift-001"].Status)
	}

	// 重复停用是幂等的
	if err := svc.Deactivate(context.Background(), "shift-001", "admin-001"); err != nil {
		t.Errorf("重复停用应为幂等空操作: %v", err)
	}
}

func TestShiftService_Deactivate_NotFound(t *testing.T) {
	svc, _ := setupTestShiftService()

	err := svc.Deactivate(context.Background(), "no-such-shift", "admin-001")
	if !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("期望 ErrShiftNotFound，实际=%v", err)
	}
}
