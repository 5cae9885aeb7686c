package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnapp/backend/internal/dto"
	"turnapp/backend/internal/model"
	"turnapp/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoLines      = errors.New("排班计划中无明细，无法导出")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 按日期排序逐行呈现明细，供运营核对
//   - ICS 每条明细一个 VEVENT，可订阅到日历客户端
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportScheduleExcel(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error)
	ExportScheduleICS(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportScheduleExcel — 导出排班计划为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：计划名 + 日期区间
//   - 表头: | 日期 | 用户 | 班次 | 时间 | 状态 | 备注 |
//   - 明细按存储顺序（创建序）逐行输出
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportScheduleExcel(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error) {
	schedule, lines, shifts, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "排班明细"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 38)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 12)
	f.SetColWidth(sheetName, "F", "F", 30)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s（%s ~ %s）",
		schedule.Name,
		schedule.StartDate.Format(dto.DateLayout),
		schedule.EndDate.Format(dto.DateLayout)))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "用户", "班次", "时间", "状态", "备注"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", col), h)
	}

	// 数据行
	row := 3
	for i := range lines {
		line := &lines[i]
		window := ""
		if shift, ok := shifts[line.ShiftID]; ok {
			window = fmt.Sprintf("%s-%s", shift.StartTime, shift.EndTime)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line.Date.Format(dto.DateLayout))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), line.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), line.ShiftName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), window)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), line.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), line.Notes)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("排班_%s.xlsx", schedule.Name)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportScheduleICS — 导出排班计划为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportScheduleICS(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error) {
	schedule, lines, shifts, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//turnapp//schedule//ES")

	for i := range lines {
		line := &lines[i]
		shift, ok := shifts[line.ShiftID]
		if !ok {
			continue
		}

		start, err := combineDateTime(line.Date, shift.StartTime)
		if err != nil {
			continue
		}
		end, err := combineDateTime(line.Date, shift.EndTime)
		if err != nil {
			continue
		}

		evt := cal.AddEvent(fmt.Sprintf("%s@turnapp", line.LineID))
		evt.SetCreatedTime(line.CreatedAt)
		evt.SetDtStampTime(time.Now())
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(fmt.Sprintf("%s - %s", line.ShiftName, line.UserID))
		if line.Notes != "" {
			evt.SetDescription(line.Notes)
		}
		switch line.Status {
		case model.LineConfirmed:
			evt.SetStatus(ics.ObjectStatusConfirmed)
		case model.LineCancelled:
			evt.SetStatus(ics.ObjectStatusCancelled)
		default:
			evt.SetStatus(ics.ObjectStatusTentative)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("排班_%s.ics", schedule.Name)
	return buf, filename, nil
}

// ── 内部辅助方法 ──

// loadSchedule 取计划、明细与引用到的班次（按 ID 去重查询）
func (s *exportService) loadSchedule(ctx context.Context, scheduleID string) (*model.Schedule, []model.ScheduleLine, map[string]*model.Shift, error) {
	schedule, err := s.repo.Schedule.GetByIDWithLines(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班计划失败", zap.String("id", scheduleID), zap.Error(err))
		return nil, nil, nil, err
	}
	if len(schedule.Lines) == 0 {
		return nil, nil, nil, ErrExportNoLines
	}

	shifts := make(map[string]*model.Shift)
	for i := range schedule.Lines {
		shiftID := schedule.Lines[i].ShiftID
		if _, ok := shifts[shiftID]; ok {
			continue
		}
		shift, err := s.repo.Shift.GetByID(ctx, shiftID)
		if err != nil {
			// 班次缺失的明细仍导出，时间列留空
			continue
		}
		shifts[shiftID] = shift
	}

	return schedule, schedule.Lines, shifts, nil
}

// combineDateTime 合并日期与 "HH:MM" 得到具体时刻
func combineDateTime(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(dto.TimeLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
