package screens

import (
	"context"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

// StudentGradesScreen: итоговая таблица по классу и предмету.
type StudentGradesScreen struct {
	sel selection
}

func NewStudentGradesScreen(l Loader) *StudentGradesScreen {
	return &StudentGradesScreen{sel: selection{loader: l}}
}

func (s *StudentGradesScreen) SelectClass(ctx context.Context, id int64) error {
	return s.sel.selectClass(ctx, id)
}

func (s *StudentGradesScreen) SelectSubject(ctx context.Context, id int64) error {
	return s.sel.selectSubject(ctx, id)
}

func (s *StudentGradesScreen) Reset() { s.sel.reset() }

type StudentGradesView struct {
	Class       *models.Class       `json:"class"`
	Subject     *models.Subject     `json:"subject"`
	Categories  []models.Category   `json:"categories"`
	Assignments []models.Assignment `json:"assignments"`
	Report      grading.Report      `json:"report"`
}

func (s *StudentGradesScreen) View() StudentGradesView {
	v := StudentGradesView{
		Class:       s.sel.class,
		Subject:     s.sel.subject,
		Categories:  []models.Category{},
		Assignments: []models.Assignment{},
		Report:      grading.Report{Rows: []grading.StudentRow{}},
	}
	if s.sel.subject == nil {
		return v
	}
	v.Categories = s.sel.categories
	v.Assignments = s.sel.assignments
	v.Report = grading.BuildReport(s.sel.students, s.sel.categories, s.sel.assignments, s.sel.scores)
	return v
}

// Scores: снимок оценок для выгрузки сырой таблицы.
func (s *StudentGradesScreen) Scores() grading.Scores { return s.sel.scores }
