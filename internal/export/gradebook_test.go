package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

func sampleData() GradebookData {
	students := []models.Student{
		{ID: 1, ClassID: 1, FirstName: "Анна", LastName: "Антонова", Identifier: "Антонова, Анна"},
		{ID: 2, ClassID: 1, FirstName: "Борис", LastName: "Борисов", Identifier: "Борисов, Борис"},
	}
	cats := []models.Category{
		{ID: 10, Name: "Экзамены", Weight: 60},
		{ID: 11, Name: "Тесты", Weight: 40},
	}
	asg := []models.Assignment{
		{ID: 100, CategoryID: 10, Title: "Экзамен 1", Weight: 100},
		{ID: 101, CategoryID: 11, Title: "Тест 1", Weight: 100},
	}
	scores := grading.NewScores([]models.Grade{
		{StudentID: 1, AssignmentID: 100, PointsEarned: 85},
		{StudentID: 1, AssignmentID: 101, PointsEarned: 70},
		{StudentID: 2, AssignmentID: 101, PointsEarned: 0},
	})
	return GradebookData{
		Class:       models.Class{ID: 1, Name: "7А"},
		Subject:     models.Subject{ID: 1, Name: "Алгебра"},
		Categories:  cats,
		Assignments: asg,
		Report:      grading.BuildReport(students, cats, asg, scores),
		Scores:      scores,
	}
}

func TestGradebookWorkbook(t *testing.T) {
	raw, err := WriteGradebook(sampleData())
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SheetSummary || sheets[1] != SheetGrades {
		t.Fatalf("листы: %v", sheets)
	}

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("строк в итогах: %d", len(rows))
	}
	if rows[0][2] != "Экзамены (60%)" || rows[0][4] != "Итог" {
		t.Fatalf("шапка: %v", rows[0])
	}
	// Анна: 85*60 + 70*40 = 79
	if rows[1][0] != "Антонова Анна" || rows[1][4] != "79" || rows[1][5] != "B" {
		t.Fatalf("строка Анны: %v", rows[1])
	}
	// У Бориса экзамен не оценён: ячейка пустая, итог = 0 по тестам.
	if rows[2][2] != "" || rows[2][3] != "0" || rows[2][5] != "F" {
		t.Fatalf("строка Бориса: %v", rows[2])
	}

	grades, err := f.GetRows(SheetGrades)
	if err != nil {
		t.Fatal(err)
	}
	if grades[0][1] != "Экзамены / Экзамен 1" {
		t.Fatalf("шапка оценок: %v", grades[0])
	}
	if grades[2][1] != "" || grades[2][2] != "0" {
		t.Fatalf("оценки Бориса: %v", grades[2])
	}
}

func TestAssignmentHeader_DueDateInSchoolZone(t *testing.T) {
	msk, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skip("нет tzdata:", err)
	}
	// 22:30 UTC 14 марта = 01:30 МСК 15 марта
	due := time.Date(2025, 3, 14, 22, 30, 0, 0, time.UTC)
	a := models.Assignment{Title: "Контрольная", DueAt: &due}

	if got := assignmentHeader("Экзамены", a, msk); got != "Экзамены / Контрольная (до 15.03)" {
		t.Fatalf("заголовок в МСК: %q", got)
	}
	if got := assignmentHeader("Экзамены", a, time.UTC); got != "Экзамены / Контрольная (до 14.03)" {
		t.Fatalf("заголовок в UTC: %q", got)
	}
	a.DueAt = nil
	if got := assignmentHeader("Экзамены", a, msk); got != "Экзамены / Контрольная" {
		t.Fatalf("без срока: %q", got)
	}

	d := sampleData()
	d.Assignments[0].DueAt = &due
	d.Location = msk
	f, err := GradebookWorkbook(d)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetGrades)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][1] != "Экзамены / Экзамен 1 (до 15.03)" {
		t.Fatalf("шапка оценок: %v", rows[0])
	}
}

func TestBuildGradebookFilename(t *testing.T) {
	got := BuildGradebookFilename(" 7/А ", "Алгебра:  углублённая")
	want := "Gradebook — 7_А — Алгебра_ углублённая.xlsx"
	if got != want {
		t.Fatalf("имя файла: %q, ожидали %q", got, want)
	}
	if got := BuildGradebookFilename("", "Алгебра"); got != "Gradebook — - — Алгебра.xlsx" {
		t.Fatalf("пустой класс: %q", got)
	}
}

func TestFormatSheet(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	header := []any{"Ученик", "Очень длинное название категории для проверки ширины", "Итог"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []any{"Антонова Анна", 85.5, 79}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}
	if err := formatSheet(f, "Sheet1", 1); err != nil {
		t.Fatal(err)
	}

	panes, err := f.GetPanes("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	if !panes.Freeze || panes.YSplit != 1 {
		t.Fatalf("шапка должна быть закреплена: %+v", panes)
	}
	name, _ := f.GetColWidth("Sheet1", "A")
	total, _ := f.GetColWidth("Sheet1", "C")
	long, _ := f.GetColWidth("Sheet1", "B")
	if name < 16 || total != minColWidth || long <= total || long > maxColWidth {
		t.Fatalf("ширины: A=%v B=%v C=%v", name, long, total)
	}

	empty := excelize.NewFile()
	defer func() { _ = empty.Close() }()
	if err := formatSheet(empty, "Sheet1", 1); err != nil {
		t.Fatalf("пустой лист: %v", err)
	}
}
