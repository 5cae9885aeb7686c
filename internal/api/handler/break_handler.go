package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/service"
	"turnapp/backend/pkg/response"
)

// BreakHandler 班内休息记录模块 HTTP 处理器
type BreakHandler struct {
	breakSvc service.BreakService
}

// NewBreakHandler 创建 BreakHandler
func NewBreakHandler(breakSvc service.BreakService) *BreakHandler {
	return &BreakHandler{breakSvc: breakSvc}
}

// CreateBreak 登记休息时段
// POST /api/v1/assignments/:id/breaks
func (h *BreakHandler) CreateBreak(c *gin.Context) {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		response.BadRequest(c, 10001, "分配ID不能为空")
		return
	}

	var req dto.CreateBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.breakSvc.Create(c.Request.Context(), assignmentID, &req, callerID)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}

	response.Created(c, record)
}

// ListBreaks 列出分配下的休息时段
// GET /api/v1/assignments/:id/breaks
func (h *BreakHandler) ListBreaks(c *gin.Context) {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		response.BadRequest(c, 10001, "分配ID不能为空")
		return
	}

	records, err := h.breakSvc.ListByAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// DeleteBreak 删除休息记录
// DELETE /api/v1/breaks/:id
func (h *BreakHandler) DeleteBreak(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "休息记录ID不能为空")
		return
	}

	if err := h.breakSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleBreakError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleBreakError 统一处理休息记录模块业务错误
func (h *BreakHandler) handleBreakError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBreakNotFound):
		response.NotFound(c, 17001, "休息记录不存在")
	case errors.Is(err, service.ErrBreakOutsideShift):
		response.BadRequest(c, 17002, "休息时段必须完全落在班次时段内")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 17003, "排班分配不存在")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 17004, "时段起止时间非法")
	default:
		response.InternalError(c)
	}
}
