package grading

import "github.com/Carsk101/acutea/internal/models"

type CategoryResult struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Average    Average `json:"average"`
	Letter     Letter  `json:"letter"`
	Color      string  `json:"color"`
}

type StudentRow struct {
	Student    models.Student   `json:"student"`
	Categories []CategoryResult `json:"categories"`
	Overall    Average          `json:"overall"`
	Letter     Letter           `json:"letter"`
	Color      string           `json:"color"`
	Graded     int              `json:"graded"`
}

// Report: сводка по классу и предмету в порядке переданных учеников и категорий.
type Report struct {
	Rows    []StudentRow `json:"rows"`
	Weights WeightStatus `json:"weights"`
	Graded  int          `json:"graded"`
}

func BuildReport(students []models.Student, categories []models.Category, assignments []models.Assignment, scores Scores) Report {
	ws := make([]float64, 0, len(categories))
	for _, c := range categories {
		ws = append(ws, c.Weight)
	}
	rep := Report{
		Rows:    make([]StudentRow, 0, len(students)),
		Weights: CheckWeights(ws...),
	}
	for _, st := range students {
		row := StudentRow{
			Student:    st,
			Categories: make([]CategoryResult, 0, len(categories)),
		}
		for _, c := range categories {
			avg := CategoryAverage(st.ID, c, assignments, scores)
			row.Categories = append(row.Categories, CategoryResult{
				CategoryID: c.ID,
				Name:       c.Name,
				Weight:     c.Weight,
				Average:    avg,
				Letter:     LetterGrade(avg),
				Color:      GradeColor(avg),
			})
		}
		for _, a := range assignments {
			if _, ok := scores.Get(st.ID, a.ID); ok {
				row.Graded++
			}
		}
		row.Overall = OverallAverage(st.ID, categories, assignments, scores)
		row.Letter = LetterGrade(row.Overall)
		row.Color = GradeColor(row.Overall)
		rep.Graded += row.Graded
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}
