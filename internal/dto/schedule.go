package dto

// ── 排班计划 DTO ──

// CreateScheduleRequest 创建排班计划请求
type CreateScheduleRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=200"`
	StartDate   string `json:"start_date"  binding:"required,len=10"` // "YYYY-MM-DD"
	EndDate     string `json:"end_date"    binding:"required,len=10"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateScheduleRequest 更新排班计划请求（仅草稿）
type UpdateScheduleRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=200"`
	StartDate   *string `json:"start_date"  binding:"omitempty,len=10"`
	EndDate     *string `json:"end_date"    binding:"omitempty,len=10"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ScheduleListRequest 排班计划列表查询参数
type ScheduleListRequest struct {
	Date string `form:"date" binding:"omitempty,len=10"` // 返回覆盖该日期的计划
	PaginationRequest
}

// AddLineRequest 添加排班明细请求
type AddLineRequest struct {
	UserID  string `json:"user_id"  binding:"required,uuid"`
	ShiftID string `json:"shift_id" binding:"required,uuid"`
	Date    string `json:"date"     binding:"required,len=10"`
	Notes   string `json:"notes"    binding:"omitempty,max=1000"`
}

// AddLinesBatchRequest 批量添加排班明细请求
type AddLinesBatchRequest struct {
	Lines []AddLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ScheduleResponse 排班计划响应
type ScheduleResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Description string                 `json:"description,omitempty"`
	Status      string                 `json:"status"`
	PublishedAt *string                `json:"published_at,omitempty"`
	Lines       []ScheduleLineResponse `json:"lines,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// ScheduleLineResponse 排班明细响应
type ScheduleLineResponse struct {
	ID           string  `json:"id"`
	ScheduleID   string  `json:"schedule_id"`
	UserID       string  `json:"user_id"`
	ShiftID      string  `json:"shift_id"`
	ShiftName    string  `json:"shift_name"`
	Date         string  `json:"date"`
	AssignmentID *string `json:"assignment_id,omitempty"`
	Status       string  `json:"status"`
	Notes        string  `json:"notes,omitempty"`
	ConfirmedAt  *string `json:"confirmed_at,omitempty"`
}

// BatchLinesResponse 批量添加明细结果
// 逐条处理，失败项不影响其余项
type BatchLinesResponse struct {
	TotalRequested int                    `json:"total_requested"`
	TotalCreated   int                    `json:"total_created"`
	Created        []ScheduleLineResponse `json:"created"`
	Errors         []BatchLineError       `json:"errors,omitempty"`
}

// BatchLineError 批量添加中单条失败信息
type BatchLineError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ── 发布报告 ──

// PublicationReport 排班发布报告
// 不变量：TotalProcessed == TotalSucceeded + TotalFailed == 明细条数
type PublicationReport struct {
	ScheduleID     string               `json:"schedule_id"`
	ScheduleName   string               `json:"schedule_name"`
	TotalProcessed int                  `json:"total_processed"`
	TotalSucceeded int                  `json:"total_succeeded"`
	TotalFailed    int                  `json:"total_failed"`
	Successes      []PublicationSuccess `json:"successes"`
	Failures       []PublicationFailure `json:"failures"`
}

// PublicationSuccess 发布成功行
type PublicationSuccess struct {
	LineID       string `json:"line_id"`
	AssignmentID string `json:"assignment_id"`
	UserID       string `json:"user_id"`
	Date         string `json:"date"`
	ShiftName    string `json:"shift_name"`
}

// PublicationFailure 发布失败行
type PublicationFailure struct {
	LineID       string `json:"line_id"`
	UserID       string `json:"user_id"`
	Date         string `json:"date"`
	ShiftID      string `json:"shift_id"`
	ErrorMessage string `json:"error_message"`
}

// FullSuccess 是否全部成功
func (r *PublicationReport) FullSuccess() bool { return r.TotalFailed == 0 }

// FullFailure 是否全部失败
func (r *PublicationReport) FullFailure() bool { return r.TotalSucceeded == 0 }

// ── 合并视图 ──

// ConsolidatedScheduleResponse 计划期间实际分配的合并视图
type ConsolidatedScheduleResponse struct {
	Schedule ScheduleResponse     `json:"schedule"`
	Days     []ConsolidatedDay    `json:"days"`
	Stats    ConsolidatedStats    `json:"stats"`
}

// ConsolidatedDay 按日期分组的实际分配
type ConsolidatedDay struct {
	Date        string               `json:"date"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// ConsolidatedStats 合并视图统计
type ConsolidatedStats struct {
	TotalAssignments int `json:"total_assignments"`
	Completed        int `json:"completed"`
	Cancelled        int `json:"cancelled"`
	Assigned         int `json:"assigned"`
}
