package service

import (
	"errors"
	"testing"
	"time"
)

// ── overlaps 测试 ──

func TestOverlaps_StrictOverlap(t *testing.T) {
	if !overlaps("09:00", "17:00", "16:00", "20:00") {
		t.Error("09:00-17:00 与 16:00-20:00 应判定为冲突")
	}
}

func TestOverlaps_Touching(t *testing.T) {
	// 半开区间：边界相接不算冲突
	if overlaps("08:00", "16:00", "16:00", "22:00") {
		t.Error("08:00-16:00 与 16:00-22:00 边界相接，不应判定为冲突")
	}
	if overlaps("16:00", "22:00", "08:00", "16:00") {
		t.Error("边界相接的对称方向也不应判定为冲突")
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	cases := [][4]string{
		{"09:00", "17:00", "16:00", "20:00"},
		{"08:00", "12:00", "10:00", "11:00"},
		{"06:00", "14:00", "13:30", "21:30"},
		{"08:00", "16:00", "16:00", "22:00"},
		{"08:00", "09:00", "10:00", "11:00"},
	}
	for _, c := range cases {
		ab := overlaps(c[0], c[1], c[2], c[3])
		ba := overlaps(c[2], c[3], c[0], c[1])
		if ab != ba {
			t.Errorf("overlaps(%s-%s, %s-%s)=%v 与对称方向 %v 不一致", c[0], c[1], c[2], c[3], ab, ba)
		}
	}
}

func TestOverlaps_Contained(t *testing.T) {
	if !overlaps("08:00", "20:00", "10:00", "12:00") {
		t.Error("完全包含的时段应判定为冲突")
	}
}

func TestOverlaps_Disjoint(t *testing.T) {
	if overlaps("08:00", "10:00", "14:00", "16:00") {
		t.Error("完全分离的时段不应判定为冲突")
	}
}

// ── validateWindow 测试 ──

func TestValidateWindow(t *testing.T) {
	if err := validateWindow("08:00", "16:00"); err != nil {
		t.Fatalf("合法时段应通过校验: %v", err)
	}
	if err := validateWindow("16:00", "08:00"); !errors.Is(err, ErrInvalidTimeWindow) {
		t.Error("start > end 应返回 ErrInvalidTimeWindow")
	}
	if err := validateWindow("10:00", "10:00"); !errors.Is(err, ErrInvalidTimeWindow) {
		t.Error("start == end 应返回 ErrInvalidTimeWindow")
	}
	if err := validateWindow("25:00", "26:00"); !errors.Is(err, ErrInvalidTimeWindow) {
		t.Error("非法时刻应返回 ErrInvalidTimeWindow")
	}
}

// ── durationMinutes 测试 ──

func TestDurationMinutes(t *testing.T) {
	if got := durationMinutes("08:00", "16:00"); got != 480 {
		t.Errorf("期望480分钟，实际=%d", got)
	}
	if got := durationMinutes("09:30", "10:15"); got != 45 {
		t.Errorf("期望45分钟，实际=%d", got)
	}
}

// ── weekdayISO 测试 ──

func TestWeekdayISO(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := weekdayISO(monday); got != 1 {
		t.Errorf("周一期望1，实际=%d", got)
	}
	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if got := weekdayISO(sunday); got != 7 {
		t.Errorf("周日期望7，实际=%d", got)
	}
}
