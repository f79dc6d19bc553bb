package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

const (
	SheetSummary = "Итоги"
	SheetGrades  = "Оценки"
)

// GradebookData: снимок класса по предмету для выгрузки.
type GradebookData struct {
	Class       models.Class
	Subject     models.Subject
	Categories  []models.Category
	Assignments []models.Assignment
	Report      grading.Report
	Scores      grading.Scores
	// Location: часовой пояс школы для сроков работ; nil означает UTC.
	Location *time.Location
}

func (d GradebookData) loc() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

// assignmentHeader: "Категория / Работа", со сроком "(до 02.01)" в поясе школы, если он задан.
func assignmentHeader(category string, a models.Assignment, loc *time.Location) string {
	h := fmt.Sprintf("%s / %s", category, a.Title)
	if a.DueAt != nil {
		h += " (до " + a.DueAt.In(loc).Format("02.01") + ")"
	}
	return h
}

// GradebookWorkbook строит книгу из двух листов: итоги по категориям и сырые оценки.
// Отсутствующая оценка или средняя: пустая ячейка, не ноль.
func GradebookWorkbook(d GradebookData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetGrades); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}

	if err := writeSummary(f, d); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeGrades(f, d); err != nil {
		_ = f.Close()
		return nil, err
	}
	for sh, nameCols := range map[string]int{SheetSummary: 2, SheetGrades: 1} {
		if err := formatSheet(f, sh, nameCols); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("format %s: %w", sh, err)
		}
	}
	return f, nil
}

func writeSummary(f *excelize.File, d GradebookData) error {
	header := []any{"Ученик", "Идентификатор"}
	for _, c := range d.Categories {
		header = append(header, fmt.Sprintf("%s (%g%%)", c.Name, c.Weight))
	}
	header = append(header, "Итог", "Оценка")
	if err := f.SetSheetRow(SheetSummary, "A1", &header); err != nil {
		return err
	}

	for i, row := range d.Report.Rows {
		vals := []any{row.Student.FullName(), row.Student.Identifier}
		for _, cr := range row.Categories {
			vals = append(vals, avgCell(cr.Average))
		}
		vals = append(vals, avgCell(row.Overall), string(row.Letter))
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}

func writeGrades(f *excelize.File, d GradebookData) error {
	catName := make(map[int64]string, len(d.Categories))
	for _, c := range d.Categories {
		catName[c.ID] = c.Name
	}
	header := []any{"Ученик"}
	for _, a := range d.Assignments {
		header = append(header, assignmentHeader(catName[a.CategoryID], a, d.loc()))
	}
	if err := f.SetSheetRow(SheetGrades, "A1", &header); err != nil {
		return err
	}

	for i, row := range d.Report.Rows {
		vals := []any{row.Student.FullName()}
		for _, a := range d.Assignments {
			if p, ok := d.Scores.Get(row.Student.ID, a.ID); ok {
				vals = append(vals, p)
			} else {
				vals = append(vals, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetGrades, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}

// avgCell: средняя с одним знаком после запятой или nil (пустая ячейка).
func avgCell(a grading.Average) any {
	if !a.Valid {
		return nil
	}
	return math.Round(a.Value*10) / 10
}

// WriteGradebook: книга в байтах, готовая к отдаче по HTTP.
func WriteGradebook(d GradebookData) ([]byte, error) {
	f, err := GradebookWorkbook(d)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
