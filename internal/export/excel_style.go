package export

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 8
	maxColWidth = 48
)

// formatSheet: жирная закреплённая шапка, автофильтр и ширина колонок по содержимому.
// Первые nameCols колонок (ФИО, идентификатор) не сужаются до ширины чисел.
func formatSheet(f *excelize.File, sheet string, nameCols int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+last+"1", nil); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	for c := 0; c < cols; c++ {
		w := float64(minColWidth)
		if c < nameCols {
			w = 16
		}
		for i, row := range rows {
			if c >= len(row) {
				continue
			}
			// кириллица шире латиницы
			cw := float64(utf8.RuneCountInString(row[c])) * 1.1
			if i == 0 {
				// шапка переносится, хватит половины
				cw = cw/2 + 2
			}
			w = max(w, min(cw, maxColWidth))
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// BuildGradebookFilename: "Gradebook — 7А — Алгебра.xlsx" без запрещённых в именах файлов символов.
func BuildGradebookFilename(className, subjectName string) string {
	return sanitizeFileName(fmt.Sprintf("Gradebook — %s — %s.xlsx", orDash(className), orDash(subjectName)))
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
