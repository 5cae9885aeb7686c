package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/service"
	pkgerrors "turnapp/backend/pkg/errors"
	"turnapp/backend/pkg/response"
)

// ScheduleHandler 排班计划模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// CreateSchedule 创建排班计划
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// GetSchedule 获取计划详情（含明细）
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	schedule, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListSchedules 列出排班计划
// GET /api/v1/schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedules, total, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OKPage(c, schedules, total, req.GetPage(), req.GetPageSize())
}

// UpdateSchedule 更新计划（仅草稿）
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// DeleteSchedule 删除计划（仅草稿）
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddLine 向计划添加明细
// POST /api/v1/schedules/:id/lines
func (h *ScheduleHandler) AddLine(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	var req dto.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	line, err := h.scheduleSvc.AddLine(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, line)
}

// AddLinesBatch 批量添加明细（逐条处理，单条失败不影响其余）
// POST /api/v1/schedules/:id/lines/batch
func (h *ScheduleHandler) AddLinesBatch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	var req dto.AddLinesBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.AddLinesBatch(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	if len(result.Errors) > 0 && result.TotalCreated > 0 {
		response.PartialContent(c, result)
		return
	}
	response.Created(c, result)
}

// RemoveLine 移除明细（仅草稿）
// DELETE /api/v1/schedules/:id/lines/:line_id
func (h *ScheduleHandler) RemoveLine(c *gin.Context) {
	id := c.Param("id")
	lineID := c.Param("line_id")
	if id == "" || lineID == "" {
		response.BadRequest(c, 10001, "计划ID和明细ID不能为空")
		return
	}

	if err := h.scheduleSvc.RemoveLine(c.Request.Context(), id, lineID); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// PublishSchedule 发布计划
// POST /api/v1/schedules/:id/publish
//
// 响应姿态由发布报告决定：
//   - 全部成功 → 200
//   - 部分成功 → 206，报告随响应返回
//   - 全部失败 → 500，报告仍随响应返回（计划已转为published）
func (h *ScheduleHandler) PublishSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.scheduleSvc.Publish(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	switch {
	case report.FullSuccess():
		response.OK(c, report)
	case report.FullFailure():
		response.ErrorWithData(c, http.StatusInternalServerError, 15010, "发布的全部明细均失败", report)
	default:
		response.PartialContent(c, report)
	}
}

// GetConsolidatedSchedule 获取计划期间分配的合并视图
// GET /api/v1/schedules/:id/consolidated
func (h *ScheduleHandler) GetConsolidatedSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	result, err := h.scheduleSvc.GetConsolidated(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// handleScheduleError 统一处理计划模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 15001, "排班计划不存在")
	case errors.Is(err, service.ErrScheduleNotEditable):
		response.Conflict(c, 15002, "排班计划不是草稿状态，不能修改")
	case errors.Is(err, service.ErrScheduleNotPublishable):
		response.Conflict(c, 15003, "排班计划不可发布：需为草稿且至少包含一条明细")
	case errors.Is(err, service.ErrScheduleInvalidRange):
		response.BadRequest(c, 15004, "日期区间非法")
	case errors.Is(err, service.ErrLineNotFound):
		response.NotFound(c, 15005, "排班明细不存在")
	case errors.Is(err, service.ErrLineDateOutOfRange):
		response.BadRequest(c, 15006, "明细日期不在计划区间内")
	case errors.Is(err, service.ErrLineNotInSchedule):
		response.BadRequest(c, 15007, "明细不属于该排班计划")
	case errors.Is(err, service.ErrShiftNotFound):
		response.BadRequest(c, 15008, "班次不存在")
	case pkgerrors.IsUnavailable(err):
		response.ServiceUnavailable(c, 15009, "下游服务暂不可用")
	default:
		response.InternalError(c)
	}
}
