// Package grading считает средние баллы ученика: внутри категории (веса работ)
// и итоговый (веса категорий). Пакет чистый: без I/O и без общего состояния.
package grading

import "github.com/Carsk101/acutea/internal/models"

// Key: пара (ученик, работа).
type Key struct {
	StudentID    int64
	AssignmentID int64
}

// Scores: разреженная карта оценок. Нет ключа, значит работа не оценена.
type Scores map[Key]float64

func NewScores(grades []models.Grade) Scores {
	out := make(Scores, len(grades))
	for _, g := range grades {
		out[Key{StudentID: g.StudentID, AssignmentID: g.AssignmentID}] = g.PointsEarned
	}
	return out
}

func (s Scores) Get(studentID, assignmentID int64) (float64, bool) {
	v, ok := s[Key{StudentID: studentID, AssignmentID: assignmentID}]
	return v, ok
}

// CategoryAverage: взвешенное среднее оценок ученика по работам категории.
// Неоценённые работы пропускаются целиком: ни в числитель, ни в знаменатель.
// Баллы берутся как есть, без нормировки на max_points.
func CategoryAverage(studentID int64, category models.Category, assignments []models.Assignment, scores Scores) Average {
	var sum, weights float64
	for _, a := range assignments {
		if a.CategoryID != category.ID {
			continue
		}
		points, ok := scores.Get(studentID, a.ID)
		if !ok {
			continue
		}
		sum += points * a.Weight
		weights += a.Weight
	}
	if weights > 0 {
		return Some(sum / weights)
	}
	return Average{}
}

// OverallAverage: среднее средних по категориям с весами категорий.
// Категории без оценок пропускаются; сумма весов не обязана быть 100.
func OverallAverage(studentID int64, categories []models.Category, assignments []models.Assignment, scores Scores) Average {
	var sum, weights float64
	for _, c := range categories {
		avg := CategoryAverage(studentID, c, assignments, scores)
		if !avg.Valid {
			continue
		}
		sum += avg.Value * c.Weight
		weights += c.Weight
	}
	if weights > 0 {
		return Some(sum / weights)
	}
	return Average{}
}
