package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/service"
	"turnapp/backend/pkg/response"
)

// ReplacementHandler 替班请求模块 HTTP 处理器
type ReplacementHandler struct {
	replacementSvc service.ReplacementService
}

// NewReplacementHandler 创建 ReplacementHandler
func NewReplacementHandler(replacementSvc service.ReplacementService) *ReplacementHandler {
	return &ReplacementHandler{replacementSvc: replacementSvc}
}

// CreateReplacement 发起替班请求
// POST /api/v1/replacements
func (h *ReplacementHandler) CreateReplacement(c *gin.Context) {
	var req dto.CreateReplacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	replacement, err := h.replacementSvc.Request(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleReplacementError(c, err)
		return
	}

	response.Created(c, replacement)
}

// GetReplacement 获取替班请求详情
// GET /api/v1/replacements/:id
func (h *ReplacementHandler) GetReplacement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "替班请求ID不能为空")
		return
	}

	replacement, err := h.replacementSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleReplacementError(c, err)
		return
	}

	response.OK(c, replacement)
}

// ListPendingReplacements 列出待审批替班请求
// GET /api/v1/replacements/pending
func (h *ReplacementHandler) ListPendingReplacements(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	replacements, total, err := h.replacementSvc.ListPending(c.Request.Context(), &req)
	if err != nil {
		h.handleReplacementError(c, err)
		return
	}

	response.OKPage(c, replacements, total, req.GetPage(), req.GetPageSize())
}

// ListUserReplacements 按替班人列出请求
// GET /api/v1/users/:user_id/replacements
func (h *ReplacementHandler) ListUserReplacements(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	replacements, err := h.replacementSvc.ListByReplacementUser(c.Request.Context(), userID)
	if err != nil {
		h.handleReplacementError(c, err)
		return
	}

	response.OK(c, gin.H{"list": replacements})
}

// ApproveReplacement 批准替班（变更分配所有权）
// POST /api/v1/replacements/:id/approve
func (h *ReplacementHandler) ApproveReplacement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "替班请求ID不能为空")
		return
	}

	approverID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	replacement, err := h.replacementSvc.Approve(c.Request.Context(), id, approverID)
	if err != nil {
		h.handleReplacementError(c, err)
		return
	}

	response.OK(c, replacement)
}

// RejectReplacement 驳回替班
// POST /api/v1/replacements/:id/reject
func (h *ReplacementHandler) RejectReplacement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "替班请求ID不能为空")
		return
	}

	var req dto.RejectReplacementRequest
	_ = c.ShouldBindJSON(&req)

	approverID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	replacement, err := h.replacementSvc.Reject(c.Request.Context(), id, approverID, req.Reason)
	if err != nil {
		h.handleReplacementError(c, err)
		return
	}

	response.OK(c, replacement)
}

// handleReplacementError 统一处理替班模块业务错误
func (h *ReplacementHandler) handleReplacementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReplacementNotFound):
		response.NotFound(c, 16001, "替班请求不存在")
	case errors.Is(err, service.ErrReplacementNotPending):
		response.Conflict(c, 16002, "替班请求已有决定，不能重复审批")
	case errors.Is(err, service.ErrReplacementSamePerson):
		response.BadRequest(c, 16003, "替班人不能是分配的当前持有人")
	case errors.Is(err, service.ErrReplacementAssignmentClosed):
		response.Conflict(c, 16004, "已取消或已完成的分配不能发起替班")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 16005, "排班分配不存在")
	default:
		response.InternalError(c)
	}
}
