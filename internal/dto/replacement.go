package dto

// ── 替班请求 DTO ──

// CreateReplacementRequest 发起替班请求
type CreateReplacementRequest struct {
	AssignmentID      string `json:"assignment_id"       binding:"required,uuid"`
	ReplacementUserID string `json:"replacement_user_id" binding:"required,uuid"`
	Date              string `json:"date"                binding:"required,len=10"` // "YYYY-MM-DD"
	Reason            string `json:"reason"              binding:"required,min=2,max=500"`
}

// RejectReplacementRequest 驳回替班请求
type RejectReplacementRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// ReplacementResponse 替班请求响应
type ReplacementResponse struct {
	ID                string  `json:"id"`
	AssignmentID      string  `json:"assignment_id"`
	ReplacementUserID string  `json:"replacement_user_id"`
	ApproverID        *string `json:"approver_id,omitempty"`
	Reason            string  `json:"reason"`
	Date              string  `json:"date"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}
