package dto

// ── 可用时段偏好 DTO ──

// CreateAvailabilityRequest 创建可用时段偏好请求
type CreateAvailabilityRequest struct {
	UserID    string `json:"user_id"     binding:"required,uuid"`
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"` // 1=周一 ... 7=周日
	StartTime string `json:"start_time"  binding:"required,len=5"`       // "HH:MM"
	EndTime   string `json:"end_time"    binding:"required,len=5"`       // "HH:MM"
}

// UpdateAvailabilityRequest 更新可用时段偏好请求
type UpdateAvailabilityRequest struct {
	StartTime *string `json:"start_time" binding:"omitempty,len=5"`
	EndTime   *string `json:"end_time"   binding:"omitempty,len=5"`
	IsActive  *bool   `json:"is_active"`
}

// AvailabilityResponse 可用时段偏好响应
type AvailabilityResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AvailableUsersRequest 查询某日可排用户请求
type AvailableUsersRequest struct {
	Date      string `form:"date"  binding:"required,len=10"` // "YYYY-MM-DD"
	StartTime string `form:"start" binding:"required,len=5"`
	EndTime   string `form:"end"   binding:"required,len=5"`
}

// AvailableUserResponse 可排用户响应（附偏好匹配标注）
type AvailableUserResponse struct {
	User               UserBrief `json:"user"`
	HasPreferences     bool      `json:"has_preferences"`
	MatchesPreferences bool      `json:"matches_preferences"`
	Message            string    `json:"message,omitempty"` // 偏好不匹配时的说明，仅作提示
}
