package dto

// ── 排班分配 DTO ──

// CreateAssignmentRequest 创建排班分配请求
type CreateAssignmentRequest struct {
	UserID  string `json:"user_id"  binding:"required,uuid"`
	ShiftID string `json:"shift_id" binding:"required,uuid"`
	Date    string `json:"date"     binding:"required,len=10"` // "YYYY-MM-DD"
	Notes   string `json:"notes"    binding:"omitempty,max=1000"`
}

// CancelAssignmentRequest 取消排班分配请求
type CancelAssignmentRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// AssignmentListRequest 按用户查询分配列表参数
type AssignmentListRequest struct {
	From string `form:"from" binding:"omitempty,len=10"`
	To   string `form:"to"   binding:"omitempty,len=10"`
	PaginationRequest
}

// AssignmentResponse 排班分配响应
type AssignmentResponse struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"user_id"`
	UserName           string      `json:"user_name,omitempty"` // 从用户微服务补全，服务不可用时为空
	Date               string      `json:"date"`
	Shift              *ShiftBrief `json:"shift,omitempty"`
	Status             string      `json:"status"`
	Notes              string      `json:"notes,omitempty"`
	WithinPreference   bool        `json:"within_preference"`
	PreferenceWarning  string      `json:"preference_warning,omitempty"` // 偏好不匹配提示，仅作标注
	CreatedAt          string      `json:"created_at"`
	UpdatedAt          string      `json:"updated_at"`
}
