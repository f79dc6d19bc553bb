package screens

import (
	"context"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

// GradingScreen отвечает за выставление оценок: класс → предмет → категория → таблица
// ученики × работы категории.
type GradingScreen struct {
	sel      selection
	category *models.Category
}

func NewGradingScreen(l Loader) *GradingScreen {
	return &GradingScreen{sel: selection{loader: l}}
}

// SelectClass сбрасывает предмет, категорию и загруженные данные.
func (s *GradingScreen) SelectClass(ctx context.Context, id int64) error {
	s.category = nil
	return s.sel.selectClass(ctx, id)
}

// SelectSubject загружает данные и выбирает первую (самую весомую) категорию.
func (s *GradingScreen) SelectSubject(ctx context.Context, id int64) error {
	s.category = nil
	if err := s.sel.selectSubject(ctx, id); err != nil {
		return err
	}
	if len(s.sel.categories) > 0 {
		c := s.sel.categories[0]
		s.category = &c
	}
	return nil
}

func (s *GradingScreen) SelectCategory(id int64) error {
	if s.sel.subject == nil {
		return ErrNoSubject
	}
	for _, c := range s.sel.categories {
		if c.ID == id {
			s.category = &c
			return nil
		}
	}
	return ErrNoCategory
}

// Reset: уход с экрана.
func (s *GradingScreen) Reset() {
	s.sel.reset()
	s.category = nil
}

type Cell struct {
	AssignmentID int64    `json:"assignment_id"`
	Points       *float64 `json:"points"`
}

type GradingRow struct {
	Student models.Student  `json:"student"`
	Cells   []Cell          `json:"cells"`
	Average grading.Average `json:"average"`
	Letter  grading.Letter  `json:"letter"`
	Color   string          `json:"color"`
	Graded  int             `json:"graded"`
}

type GradingView struct {
	ClassID           int64                `json:"class_id"`
	SubjectID         int64                `json:"subject_id"`
	Category          *models.Category     `json:"category"`
	Categories        []models.Category    `json:"categories"`
	Assignments       []models.Assignment  `json:"assignments"`
	Rows              []GradingRow         `json:"rows"`
	Graded            int                  `json:"graded"`
	Total             int                  `json:"total"`
	CategoryWeights   grading.WeightStatus `json:"category_weights"`
	AssignmentWeights grading.WeightStatus `json:"assignment_weights"`
}

func (s *GradingScreen) View() GradingView {
	v := GradingView{
		Categories:  []models.Category{},
		Assignments: []models.Assignment{},
		Rows:        []GradingRow{},
	}
	v.ClassID, v.SubjectID = s.sel.ids()
	if s.sel.subject == nil {
		return v
	}
	v.Categories = s.sel.categories
	v.CategoryWeights = weightsOf(s.sel.categories)
	if s.category == nil {
		return v
	}
	cat := *s.category
	v.Category = &cat

	aw := make([]float64, 0)
	for _, a := range s.sel.assignments {
		if a.CategoryID == cat.ID {
			v.Assignments = append(v.Assignments, a)
			aw = append(aw, a.Weight)
		}
	}
	v.AssignmentWeights = grading.CheckWeights(aw...)

	for _, st := range s.sel.students {
		row := GradingRow{Student: st, Cells: make([]Cell, 0, len(v.Assignments))}
		for _, a := range v.Assignments {
			cell := Cell{AssignmentID: a.ID}
			if p, ok := s.sel.scores.Get(st.ID, a.ID); ok {
				cell.Points = &p
				row.Graded++
			}
			row.Cells = append(row.Cells, cell)
		}
		row.Average = grading.CategoryAverage(st.ID, cat, v.Assignments, s.sel.scores)
		row.Letter = grading.LetterGrade(row.Average)
		row.Color = grading.GradeColor(row.Average)
		v.Graded += row.Graded
		v.Rows = append(v.Rows, row)
	}
	v.Total = len(s.sel.students) * len(v.Assignments)
	return v
}

func weightsOf(cats []models.Category) grading.WeightStatus {
	ws := make([]float64, 0, len(cats))
	for _, c := range cats {
		ws = append(ws, c.Weight)
	}
	return grading.CheckWeights(ws...)
}
