package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/service"
	pkgerrors "turnapp/backend/pkg/errors"
	"turnapp/backend/pkg/response"
)

// AvailabilityHandler 可用时段偏好模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// CreatePreference 创建可用时段偏好
// POST /api/v1/availability
func (h *AvailabilityHandler) CreatePreference(c *gin.Context) {
	var req dto.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pref, err := h.availabilitySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.Created(c, pref)
}

// GetPreference 获取偏好详情
// GET /api/v1/availability/:id
func (h *AvailabilityHandler) GetPreference(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "偏好ID不能为空")
		return
	}

	pref, err := h.availabilitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, pref)
}

// ListUserPreferences 列出某用户的偏好
// GET /api/v1/users/:user_id/availability
func (h *AvailabilityHandler) ListUserPreferences(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}
	activeOnly := c.Query("active") == "true"

	prefs, err := h.availabilitySvc.ListByUser(c.Request.Context(), userID, activeOnly)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": prefs})
}

// UpdatePreference 更新偏好
// PUT /api/v1/availability/:id
func (h *AvailabilityHandler) UpdatePreference(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "偏好ID不能为空")
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pref, err := h.availabilitySvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, pref)
}

// DeletePreference 删除偏好
// DELETE /api/v1/availability/:id
func (h *AvailabilityHandler) DeletePreference(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "偏好ID不能为空")
		return
	}

	if err := h.availabilitySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAvailableUsers 列出某日某时段可排的用户
// GET /api/v1/availability/users?date=YYYY-MM-DD&start=HH:MM&end=HH:MM
func (h *AvailabilityHandler) ListAvailableUsers(c *gin.Context) {
	var req dto.AvailableUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, err := h.availabilitySvc.ListAvailableUsers(c.Request.Context(), &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": users})
}

// handleAvailabilityError 统一处理偏好模块业务错误
func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPreferenceNotFound):
		response.NotFound(c, 13001, "可用时段偏好不存在")
	case errors.Is(err, service.ErrPreferenceExists):
		response.Conflict(c, 13002, "该用户在此星期已存在偏好记录")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 13003, "时段起止时间非法")
	case pkgerrors.IsUnavailable(err):
		response.ServiceUnavailable(c, 13004, "用户服务暂不可用")
	default:
		response.InternalError(c)
	}
}
