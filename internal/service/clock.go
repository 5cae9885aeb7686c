package service

import (
	"errors"
	"time"

	"turnapp/backend/internal/dto"
)

// ErrInvalidTimeWindow 时段起止顺序非法（需 start < end）
var ErrInvalidTimeWindow = errors.New("时段起止时间非法：开始时间必须早于结束时间")

// validateWindow 校验 "HH:MM" 格式且 start < end
func validateWindow(start, end string) error {
	if _, err := time.Parse(dto.TimeLayout, start); err != nil {
		return ErrInvalidTimeWindow
	}
	if _, err := time.Parse(dto.TimeLayout, end); err != nil {
		return ErrInvalidTimeWindow
	}
	if start >= end {
		return ErrInvalidTimeWindow
	}
	return nil
}

// overlaps 半开区间 [start, end) 重叠判定
// 边界相接（a.end == b.start）不算冲突；"HH:MM" 字符串按字典序比较即时间序
func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// durationMinutes 计算 "HH:MM" 时段的分钟数（假定已通过 validateWindow）
func durationMinutes(start, end string) int {
	s, _ := time.Parse(dto.TimeLayout, start)
	e, _ := time.Parse(dto.TimeLayout, end)
	return int(e.Sub(s).Minutes())
}

// weekdayISO 返回 ISO 星期（1=周一 ... 7=周日）
func weekdayISO(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// parseDate 解析 "YYYY-MM-DD" 日期
func parseDate(s string) (time.Time, error) {
	return time.Parse(dto.DateLayout, s)
}
