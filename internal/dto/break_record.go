package dto

// ── 班内休息 DTO ──

// CreateBreakRequest 创建休息记录请求
type CreateBreakRequest struct {
	StartTime string `json:"start_time" binding:"required,len=5"` // "HH:MM"
	EndTime   string `json:"end_time"   binding:"required,len=5"`
	Type      string `json:"type"       binding:"omitempty,oneof=rest meal"`
	Notes     string `json:"notes"      binding:"omitempty,max=500"`
}

// BreakResponse 休息记录响应
type BreakResponse struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignment_id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Type         string `json:"type"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
}
