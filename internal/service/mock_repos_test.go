package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"turnapp/backend/internal/client"
	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	pkgerrors "turnapp/backend/pkg/errors"
)

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = uuid.NewString()
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetByName(_ context.Context, name string) (*model.Shift, error) {
	for _, s := range m.shifts {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, activeOnly bool, _, _ int) ([]model.Shift, int64, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if activeOnly && !s.IsActive() {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	m.shifts[shift.ShiftID] = shift
	return nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	prefs map[string]*model.AvailabilityPreference
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{prefs: make(map[string]*model.AvailabilityPreference)}
}

func (m *mockAvailabilityRepo) Create(_ context.Context, pref *model.AvailabilityPreference) error {
	if pref.PreferenceID == "" {
		pref.PreferenceID = uuid.NewString()
	}
	m.prefs[pref.PreferenceID] = pref
	return nil
}

func (m *mockAvailabilityRepo) GetByID(_ context.Context, id string) (*model.AvailabilityPreference, error) {
	if p, ok := m.prefs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAvailabilityRepo) GetByUserAndDay(_ context.Context, userID string, dayOfWeek int) (*model.AvailabilityPreference, error) {
	for _, p := range m.prefs {
		if p.UserID == userID && p.DayOfWeek == dayOfWeek {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAvailabilityRepo) ListByUser(_ context.Context, userID string, activeOnly bool) ([]model.AvailabilityPreference, error) {
	var result []model.AvailabilityPreference
	for _, p := range m.prefs {
		if p.UserID != userID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockAvailabilityRepo) Update(_ context.Context, pref *model.AvailabilityPreference) error {
	m.prefs[pref.PreferenceID] = pref
	return nil
}

func (m *mockAvailabilityRepo) Delete(_ context.Context, id string) error {
	delete(m.prefs, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	failCreate  bool // 模拟存储层写入失败
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	if m.failCreate {
		return gorm.ErrInvalidDB
	}
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = uuid.NewString()
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByUserAndDate(_ context.Context, userID string, date time.Time) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.UserID == userID && a.Date.Equal(date) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByDate(_ context.Context, date time.Time) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.Date.Equal(date) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByUser(_ context.Context, userID string, from, to *time.Time, _, _ int) ([]model.Assignment, int64, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.UserID != userID {
			continue
		}
		if from != nil && a.Date.Before(*from) {
			continue
		}
		if to != nil && a.Date.After(*to) {
			continue
		}
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (m *mockAssignmentRepo) ListByPeriod(_ context.Context, from, to time.Time) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	if _, ok := m.assignments[assignment.AssignmentID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	lines     *mockScheduleLineRepo
}

func newMockScheduleRepo(lines *mockScheduleLineRepo) *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule), lines: lines}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if schedule.ScheduleID == "" {
		schedule.ScheduleID = uuid.NewString()
	}
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetByIDWithLines(ctx context.Context, id string) (*model.Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	lines, _ := m.lines.ListBySchedule(ctx, id)
	copied.Lines = lines
	return &copied, nil
}

func (m *mockScheduleRepo) List(_ context.Context, _, _ int) ([]model.Schedule, int64, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockScheduleRepo) ListCoveringDate(_ context.Context, date time.Time) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.ContainsDate(date) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	if _, ok := m.schedules[schedule.ScheduleID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

// ── Mock ScheduleLineRepository ──

// 切片保持插入顺序：发布循环依赖明细的存储序
type mockScheduleLineRepo struct {
	lines []*model.ScheduleLine
}

func newMockScheduleLineRepo() *mockScheduleLineRepo {
	return &mockScheduleLineRepo{}
}

func (m *mockScheduleLineRepo) Create(_ context.Context, line *model.ScheduleLine) error {
	if line.LineID == "" {
		line.LineID = uuid.NewString()
	}
	m.lines = append(m.lines, line)
	return nil
}

func (m *mockScheduleLineRepo) GetByID(_ context.Context, id string) (*model.ScheduleLine, error) {
	for _, l := range m.lines {
		if l.LineID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleLineRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.ScheduleLine, error) {
	var result []model.ScheduleLine
	for _, l := range m.lines {
		if l.ScheduleID == scheduleID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockScheduleLineRepo) Update(_ context.Context, line *model.ScheduleLine) error {
	for i, l := range m.lines {
		if l.LineID == line.LineID {
			m.lines[i] = line
			return nil
		}
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockScheduleLineRepo) Delete(_ context.Context, id string) error {
	for i, l := range m.lines {
		if l.LineID == id {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── Mock ReplacementRepository ──

type mockReplacementRepo struct {
	replacements map[string]*model.ReplacementRequest
}

func newMockReplacementRepo() *mockReplacementRepo {
	return &mockReplacementRepo{replacements: make(map[string]*model.ReplacementRequest)}
}

func (m *mockReplacementRepo) Create(_ context.Context, req *model.ReplacementRequest) error {
	if req.ReplacementID == "" {
		req.ReplacementID = uuid.NewString()
	}
	m.replacements[req.ReplacementID] = req
	return nil
}

func (m *mockReplacementRepo) GetByID(_ context.Context, id string) (*model.ReplacementRequest, error) {
	if r, ok := m.replacements[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReplacementRepo) ListPending(_ context.Context, _, _ int) ([]model.ReplacementRequest, int64, error) {
	var result []model.ReplacementRequest
	for _, r := range m.replacements {
		if r.IsPending() {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockReplacementRepo) ListByReplacementUser(_ context.Context, userID string) ([]model.ReplacementRequest, error) {
	var result []model.ReplacementRequest
	for _, r := range m.replacements {
		if r.ReplacementUserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReplacementRepo) Update(_ context.Context, req *model.ReplacementRequest) error {
	if _, ok := m.replacements[req.ReplacementID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.replacements[req.ReplacementID] = req
	return nil
}

// ── Mock BreakRepository ──

type mockBreakRepo struct {
	records map[string]*model.BreakRecord
}

func newMockBreakRepo() *mockBreakRepo {
	return &mockBreakRepo{records: make(map[string]*model.BreakRecord)}
}

func (m *mockBreakRepo) Create(_ context.Context, record *model.BreakRecord) error {
	if record.BreakID == "" {
		record.BreakID = uuid.NewString()
	}
	m.records[record.BreakID] = record
	return nil
}

func (m *mockBreakRepo) GetByID(_ context.Context, id string) (*model.BreakRecord, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBreakRepo) ListByAssignment(_ context.Context, assignmentID string) ([]model.BreakRecord, error) {
	var result []model.BreakRecord
	for _, r := range m.records {
		if r.AssignmentID == assignmentID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockBreakRepo) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

// ── Mock UserClient ──

type mockUserClient struct {
	users       map[string]dto.UserBrief
	unavailable bool // 模拟用户微服务不可达
}

func newMockUserClient() *mockUserClient {
	return &mockUserClient{users: make(map[string]dto.UserBrief)}
}

func (m *mockUserClient) addUser(id, name string, active bool) {
	m.users[id] = dto.UserBrief{ID: id, Name: name, IsActive: active}
}

func (m *mockUserClient) GetUser(_ context.Context, id string) (*dto.UserBrief, error) {
	if m.unavailable {
		return nil, pkgerrors.NewUnavailable("users-service", "GetUser", context.DeadlineExceeded)
	}
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, client.ErrUserNotFound
}

func (m *mockUserClient) ListActiveUsers(_ context.Context) ([]dto.UserBrief, error) {
	if m.unavailable {
		return nil, pkgerrors.NewUnavailable("users-service", "ListActiveUsers", context.DeadlineExceeded)
	}
	var result []dto.UserBrief
	for _, u := range m.users {
		if u.IsActive {
			result = append(result, u)
		}
	}
	return result, nil
}
