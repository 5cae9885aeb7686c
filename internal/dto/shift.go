package dto

// ── 班次模板 DTO ──

// CreateShiftRequest 创建班次模板请求
type CreateShiftRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	StartTime   string `json:"start_time"  binding:"required,len=5"` // "HH:MM"
	EndTime     string `json:"end_time"    binding:"required,len=5"` // "HH:MM"
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateShiftRequest 更新班次模板请求
type UpdateShiftRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	StartTime   *string `json:"start_time"  binding:"omitempty,len=5"`
	EndTime     *string `json:"end_time"    binding:"omitempty,len=5"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	Active *bool `form:"active"`
	PaginationRequest
}

// ShiftResponse 班次模板响应
type ShiftResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// ShiftBrief 班次简要信息
type ShiftBrief struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
