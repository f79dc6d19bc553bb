package grading

import (
	"math"
	"testing"

	"github.com/Carsk101/acutea/internal/models"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

var (
	exams   = models.Category{ID: 1, Name: "Exams", Type: models.CategoryExams, Weight: 60}
	quizzes = models.Category{ID: 2, Name: "Quizzes", Type: models.CategoryQuizzes, Weight: 40}
	exam1   = models.Assignment{ID: 10, CategoryID: exams.ID, Title: "Exam1", Weight: 100}
	quiz1   = models.Assignment{ID: 20, CategoryID: quizzes.ID, Title: "Quiz1", Weight: 100}
)

func TestCategoryAverage_NoScoresIsAbsent(t *testing.T) {
	avg := CategoryAverage(1, exams, []models.Assignment{exam1}, Scores{})
	if avg.Valid {
		t.Fatalf("ожидали отсутствие среднего, получили %v", avg.Value)
	}

	// оценка другого ученика не считается
	other := Scores{{StudentID: 2, AssignmentID: exam1.ID}: 95}
	if avg := CategoryAverage(1, exams, []models.Assignment{exam1}, other); avg.Valid {
		t.Fatalf("чужая оценка попала в среднее: %v", avg.Value)
	}
}

func TestCategoryAverage_SingleScoreIgnoresWeight(t *testing.T) {
	for _, w := range []float64{0.5, 1, 10, 33.3, 70, 100} {
		a := models.Assignment{ID: 5, CategoryID: exams.ID, Weight: w}
		s := Scores{{StudentID: 1, AssignmentID: 5}: 73.5}
		avg := CategoryAverage(1, exams, []models.Assignment{a}, s)
		if !avg.Valid || !approx(avg.Value, 73.5) {
			t.Fatalf("вес %v: ожидали 73.5, получили %+v", w, avg)
		}
	}
}

func TestCategoryAverage_WeightedSplit(t *testing.T) {
	a1 := models.Assignment{ID: 1, CategoryID: exams.ID, Weight: 70}
	a2 := models.Assignment{ID: 2, CategoryID: exams.ID, Weight: 30}
	s := Scores{
		{StudentID: 7, AssignmentID: 1}: 100,
		{StudentID: 7, AssignmentID: 2}: 0,
	}
	avg := CategoryAverage(7, exams, []models.Assignment{a1, a2}, s)
	if !avg.Valid || !approx(avg.Value, 70) {
		t.Fatalf("ожидали 70, получили %+v", avg)
	}
}

func TestCategoryAverage_Skips(t *testing.T) {
	graded := models.Assignment{ID: 1, CategoryID: exams.ID, Weight: 50}
	ungraded := models.Assignment{ID: 2, CategoryID: exams.ID, Weight: 50}
	zeroWeight := models.Assignment{ID: 3, CategoryID: exams.ID, Weight: 0}
	foreign := models.Assignment{ID: 4, CategoryID: quizzes.ID, Weight: 100}
	s := Scores{
		{StudentID: 1, AssignmentID: 1}: 80,
		{StudentID: 1, AssignmentID: 3}: 0,
		{StudentID: 1, AssignmentID: 4}: 10,
	}

	t.Run("ungraded_not_zero", func(t *testing.T) {
		avg := CategoryAverage(1, exams, []models.Assignment{graded, ungraded}, s)
		if !approx(avg.Value, 80) {
			t.Fatalf("неоценённая работа повлияла на среднее: %+v", avg)
		}
	})
	t.Run("zero_weight_neutral", func(t *testing.T) {
		avg := CategoryAverage(1, exams, []models.Assignment{graded, zeroWeight}, s)
		if !approx(avg.Value, 80) {
			t.Fatalf("работа с весом 0 повлияла на среднее: %+v", avg)
		}
	})
	t.Run("only_zero_weight_is_absent", func(t *testing.T) {
		avg := CategoryAverage(1, exams, []models.Assignment{zeroWeight}, s)
		if avg.Valid {
			t.Fatalf("ожидали отсутствие среднего, получили %+v", avg)
		}
	})
	t.Run("other_category_filtered", func(t *testing.T) {
		avg := CategoryAverage(1, exams, []models.Assignment{graded, foreign}, s)
		if !approx(avg.Value, 80) {
			t.Fatalf("работа чужой категории повлияла на среднее: %+v", avg)
		}
	})
}

func TestOverallAverage_Scenarios(t *testing.T) {
	cats := []models.Category{exams, quizzes}
	as := []models.Assignment{exam1, quiz1}

	t.Run("both_graded", func(t *testing.T) {
		s := Scores{
			{StudentID: 1, AssignmentID: exam1.ID}: 90,
			{StudentID: 1, AssignmentID: quiz1.ID}: 70,
		}
		if avg := CategoryAverage(1, exams, as, s); !approx(avg.Value, 90) {
			t.Fatalf("Exams: ожидали 90, получили %+v", avg)
		}
		if avg := CategoryAverage(1, quizzes, as, s); !approx(avg.Value, 70) {
			t.Fatalf("Quizzes: ожидали 70, получили %+v", avg)
		}
		overall := OverallAverage(1, cats, as, s)
		if !overall.Valid || !approx(overall.Value, 82) {
			t.Fatalf("ожидали 82, получили %+v", overall)
		}
		if l := LetterGrade(overall); l != LetterA {
			t.Fatalf("ожидали A, получили %s", l)
		}
	})

	t.Run("quiz_ungraded", func(t *testing.T) {
		s := Scores{{StudentID: 1, AssignmentID: exam1.ID}: 90}
		if avg := CategoryAverage(1, quizzes, as, s); avg.Valid {
			t.Fatalf("Quizzes: ожидали отсутствие, получили %+v", avg)
		}
		overall := OverallAverage(1, cats, as, s)
		if !overall.Valid || !approx(overall.Value, 90) {
			t.Fatalf("ожидали 90, получили %+v", overall)
		}
		if l := LetterGrade(overall); l != LetterA {
			t.Fatalf("ожидали A, получили %s", l)
		}
	})

	t.Run("nothing_graded", func(t *testing.T) {
		overall := OverallAverage(1, cats, as, Scores{})
		if overall.Valid {
			t.Fatalf("ожидали отсутствие, получили %+v", overall)
		}
		if l := LetterGrade(overall); l != Ungraded {
			t.Fatalf("ожидали %q, получили %q", Ungraded, l)
		}
	})
}

func TestOverallAverage_EmptyCategoriesDoNotMatter(t *testing.T) {
	s := Scores{
		{StudentID: 1, AssignmentID: exam1.ID}: 90,
		{StudentID: 1, AssignmentID: quiz1.ID}: 70,
	}
	as := []models.Assignment{exam1, quiz1}
	base := OverallAverage(1, []models.Category{exams, quizzes}, as, s)

	projects := models.Category{ID: 3, Name: "Projects", Weight: 25}
	empty := models.Category{ID: 4, Name: "Empty", Weight: 0}
	proj1 := models.Assignment{ID: 30, CategoryID: projects.ID, Weight: 100}
	with := OverallAverage(1, []models.Category{exams, projects, quizzes, empty}, append(as, proj1), s)

	if !approx(base.Value, with.Value) {
		t.Fatalf("пустые категории изменили итог: %v → %v", base.Value, with.Value)
	}
}

func TestOverallAverage_SelfNormalizes(t *testing.T) {
	// веса 30+20 = 50, итог всё равно нормируется на фактическую сумму
	a := models.Category{ID: 1, Weight: 30}
	b := models.Category{ID: 2, Weight: 20}
	as := []models.Assignment{
		{ID: 1, CategoryID: 1, Weight: 100},
		{ID: 2, CategoryID: 2, Weight: 100},
	}
	s := Scores{{StudentID: 1, AssignmentID: 1}: 100, {StudentID: 1, AssignmentID: 2}: 50}
	overall := OverallAverage(1, []models.Category{a, b}, as, s)
	if !approx(overall.Value, 80) {
		t.Fatalf("ожидали 80, получили %+v", overall)
	}
}

func TestNewScores(t *testing.T) {
	s := NewScores([]models.Grade{
		{StudentID: 1, AssignmentID: 2, PointsEarned: 0},
		{StudentID: 1, AssignmentID: 3, PointsEarned: 55},
	})
	if v, ok := s.Get(1, 2); !ok || v != 0 {
		t.Fatalf("ноль должен быть записанной оценкой, получили %v %v", v, ok)
	}
	if _, ok := s.Get(2, 2); ok {
		t.Fatal("оценки нет, а Get вернул ok")
	}
}
