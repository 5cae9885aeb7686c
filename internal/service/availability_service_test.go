package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
	pkgerrors "turnapp/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestAvailabilityService() (AvailabilityService, *mockAvailabilityRepo, *mockAssignmentRepo, *mockUserClient) {
	availabilityRepo := newMockAvailabilityRepo()
	assignmentRepo := newMockAssignmentRepo()
	lineRepo := newMockScheduleLineRepo()
	repo := &repository.Repository{
		Shift:        newMockShiftRepo(),
		Availability: availabilityRepo,
		Assignment:   assignmentRepo,
		Schedule:     newMockScheduleRepo(lineRepo),
		ScheduleLine: lineRepo,
		Replacement:  newMockReplacementRepo(),
		Break:        newMockBreakRepo(),
	}
	users := newMockUserClient()
	logger := zap.NewNop()
	svc := NewAvailabilityService(repo, users, logger)
	return svc, availabilityRepo, assignmentRepo, users
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		t.Fatalf("日期解析失败: %v", err)
	}
	return d
}

// ── Create 测试 ──

func TestAvailabilityService_Create_Success(t *testing.T) {
	svc, _, _, _ := setupTestAvailabilityService()

	req := &dto.CreateAvailabilityRequest{
		UserID:    "user-001",
		DayOfWeek: 1,
		StartTime: "08:00",
		EndTime:   "18:00",
	}

	result, err := svc.Create(context.Background(), req, "user-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if !result.IsActive {
		t.Error("新建偏好应为激活状态")
	}
	if result.DayOfWeek != 1 {
		t.Errorf("期望DayOfWeek=1，实际=%d", result.DayOfWeek)
	}
}

func TestAvailabilityService_Create_Duplicate(t *testing.T) {
	svc, availabilityRepo, _, _ := setupTestAvailabilityService()
	availabilityRepo.prefs["pref-001"] = &model.AvailabilityPreference{
		PreferenceID: "pref-001",
		UserID:       "user-001",
		DayOfWeek:    1,
		StartTime:    "08:00",
		EndTime:      "18:00",
		IsActive:     true,
	}

	req := &dto.CreateAvailabilityRequest{
		UserID:    "user-001",
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	_, err := svc.Create(context.Background(), req, "user-001")
	if !errors.Is(err, ErrPreferenceExists) {
		t.Errorf("同用户同星期重复创建应返回 ErrPreferenceExists，实际=%v", err)
	}
}

// ── Evaluate 测试 ──

func TestAvailabilityService_Evaluate_NoPreference(t *testing.T) {
	svc, _, _, _ := setupTestAvailabilityService()

	// 无偏好记录 → 默认可用
	eval := svc.Evaluate(context.Background(), "user-001", 1, "08:00", "16:00")
	if !eval.WithinPreference {
		t.Error("无偏好记录的用户应默认可用")
	}
	if eval.HasPreference {
		t.Error("期望HasPreference=false")
	}
}

func TestAvailabilityService_Evaluate_InactiveIgnored(t *testing.T) {
	svc, availabilityRepo, _, _ := setupTestAvailabilityService()
	availabilityRepo.prefs["pref-001"] = &model.AvailabilityPreference{
		PreferenceID: "pref-001",
		UserID:       "user-001",
		DayOfWeek:    1,
		StartTime:    "08:00",
		EndTime:      "12:00",
		IsActive:     false,
	}

	// 未激活偏好不参与评估，任何时段均视为可用
	eval := svc.Evaluate(context.Background(), "user-001", 1, "14:00", "22:00")
	if !eval.WithinPreference {
		t.Error("未激活偏好应视为可用")
	}
	if !eval.HasPreference {
		t.Error("期望HasPreference=true")
	}
}

func TestAvailabilityService_Evaluate_Contained(t *testing.T) {
	svc, availabilityRepo, _, _ := setupTestAvailabilityService()
	availabilityRepo.prefs["pref-001"] = &model.AvailabilityPreference{
		PreferenceID: "pref-001",
		UserID:       "user-001",
		DayOfWeek:    1,
		StartTime:    "08:00",
		EndTime:      "18:00",
		IsActive:     true,
	}

	eval := svc.Evaluate(context.Background(), "user-001", 1, "09:00", "17:00")
	if !eval.WithinPreference {
		t.Error("完全落在偏好内的时段应匹配")
	}
}

func TestAvailabilityService_Evaluate_Outside(t *testing.T) {
	svc, availabilityRepo, _, _ := setupTestAvailabilityService()
	availabilityRepo.prefs["pref-001"] = &model.AvailabilityPreference{
		PreferenceID: "pref-001",
		UserID:       "user-001",
		DayOfWeek:    1,
		StartTime:    "08:00",
		EndTime:      "16:00",
		IsActive:     true,
	}

	eval := svc.Evaluate(context.Background(), "user-001", 1, "14:00", "22:00")
	if eval.WithinPreference {
		t.Error("超出偏好的时段不应匹配")
	}
	if eval.Message == "" {
		t.Error("不匹配时应给出说明")
	}
}

// ── ListAvailableUsers 测试 ──

func TestAvailabilityService_ListAvailableUsers_ExcludesBusy(t *testing.T) {
	svc, _, assignmentRepo, users := setupTestAvailabilityService()
	users.addUser("user-001", "Ana", true)
	users.addUser("user-002", "Luis", true)

	morning := &model.Shift{ShiftID: "shift-001", Name: "早班", StartTime: "08:00", EndTime: "16:00", Status: model.ShiftActive}
	assignmentRepo.assignments["assign-001"] = &model.Assignment{
		AssignmentID: "assign-001",
		UserID:       "user-001",
		ShiftID:      "shift-001",
		Date:         mustDate(t, "2026-03-02"),
		Status:       model.AssignmentAssigned,
		Shift:        morning,
	}

	result, err := svc.ListAvailableUsers(context.Background(), &dto.AvailableUsersRequest{
		Date:      "2026-03-02",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("ListAvailableUsers 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望仅1个可用用户，实际=%d", len(result))
	}
	if result[0].User.ID != "user-002" {
		t.Errorf("已占用用户应被排除，实际返回=%s", result[0].User.ID)
	}
}

func TestAvailabilityService_ListAvailableUsers_CancelledNotBusy(t *testing.T) {
	svc, _, assignmentRepo, users := setupTestAvailabilityService()
	users.addUser("user-001", "Ana", true)

	morning := &model.Shift{ShiftID: "shift-001", Name: "早班", StartTime: "08:00", EndTime: "16:00", Status: model.ShiftActive}
	assignmentRepo.assignments["assign-001"] = &model.Assignment{
		AssignmentID: "assign-001",
		UserID:       "user-001",
		ShiftID:      "shift-001",
		Date:         mustDate(t, "2026-03-02"),
		Status:       model.AssignmentCancelled,
		Shift:        morning,
	}

	result, err := svc.ListAvailableUsers(context.Background(), &dto.AvailableUsersRequest{
		Date:      "2026-03-02",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("ListAvailableUsers 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("已取消分配不应占用时段，期望1个可用用户，实际=%d", len(result))
	}
}

func TestAvailabilityService_ListAvailableUsers_ServiceUnavailable(t *testing.T) {
	svc, _, _, users := setupTestAvailabilityService()
	users.unavailable = true

	_, err := svc.ListAvailableUsers(context.Background(), &dto.AvailableUsersRequest{
		Date:      "2026-03-02",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if !pkgerrors.IsUnavailable(err) {
		t.Errorf("用户服务不可达应上抛 UnavailableError，实际=%v", err)
	}
}
