package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"esp-tracker/internal/storage"
)

type ReportStorage interface {
	GetWorkPlans(ctx context.Context, date string) ([]*storage.WorkPlanRow, error)
}

type Summarizer interface {
	ProductionSummary(ctx context.Context, date string) ([]storage.SummaryRow, error)
}

// Service собирает дневной отчет цеха в xlsx: лист с планами работ и лист со
// сводкой производства.
type Service struct {
	storage  ReportStorage
	tracking Summarizer
}

func NewService(storage ReportStorage, tracking Summarizer) *Service {
	return &Service{storage: storage, tracking: tracking}
}

func (s *Service) GenerateDailyReport(ctx context.Context, date string) ([]byte, error) {
	const op = "service.report.GenerateDailyReport"

	plans, err := s.storage.GetWorkPlans(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch plans: %w", op, err)
	}

	summary, err := s.tracking.ProductionSummary(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch summary: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	planSheet := "План работ"
	f.SetSheetName("Sheet1", planSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	planHeaders := []string{"ID", "Дата", "Код работы", "Наименование", "Начало", "Окончание", "Операторы", "Завершен"}
	for i, name := range planHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(planSheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(planHeaders), 1)
	f.SetCellStyle(planSheet, "A1", lastCol, headerStyle)

	for rowIdx, p := range plans {
		rowNum := rowIdx + 2

		finished := "нет"
		if p.IsFinished != nil && *p.IsFinished {
			finished = "да"
		}

		f.SetCellValue(planSheet, cellName(1, rowNum), p.ID)
		f.SetCellValue(planSheet, cellName(2, rowNum), p.ProductionDate)
		f.SetCellValue(planSheet, cellName(3, rowNum), p.JobCode)
		f.SetCellValue(planSheet, cellName(4, rowNum), p.JobName)
		f.SetCellValue(planSheet, cellName(5, rowNum), p.StartTime)
		f.SetCellValue(planSheet, cellName(6, rowNum), p.EndTime)
		f.SetCellValue(planSheet, cellName(7, rowNum), strings.Join(p.Operators, ", "))
		f.SetCellValue(planSheet, cellName(8, rowNum), finished)
	}

	summarySheet := "Сводка"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("%s: new sheet: %w", op, err)
	}

	summaryHeaders := []string{"Код работы", "Наименование", "Операций запущено", "Стартов", "Стопов", "Первое событие", "Последнее событие"}
	for i, name := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summarySheet, cell, name)
	}
	lastCol, _ = excelize.CoordinatesToCellName(len(summaryHeaders), 1)
	f.SetCellStyle(summarySheet, "A1", lastCol, headerStyle)

	for rowIdx, row := range summary {
		rowNum := rowIdx + 2

		f.SetCellValue(summarySheet, cellName(1, rowNum), row.JobCode)
		f.SetCellValue(summarySheet, cellName(2, rowNum), row.JobName)
		f.SetCellValue(summarySheet, cellName(3, rowNum), row.ProcessesStarted)
		f.SetCellValue(summarySheet, cellName(4, rowNum), row.TotalStarts)
		f.SetCellValue(summarySheet, cellName(5, rowNum), row.TotalStops)
		f.SetCellValue(summarySheet, cellName(6, rowNum), row.FirstStart.Format("15:04:05"))
		f.SetCellValue(summarySheet, cellName(7, rowNum), row.LastActivity.Format("15:04:05"))
	}

	for _, sheet := range []string{planSheet, summarySheet} {
		f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			XSplit:      0,
			YSplit:      1,
			TopLeftCell: "A2",
		})
		f.SetColWidth(sheet, "A", "H", 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write buffer: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
