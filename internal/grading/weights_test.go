package grading

import (
	"testing"

	"github.com/Carsk101/acutea/internal/models"
)

func TestCheckWeights(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		st := CheckWeights(33.3, 33.3, 33.4)
		if !st.Complete || st.Exceeded || st.Remaining != 0 {
			t.Fatalf("ожидали ровно 100%%, получили %+v", st)
		}
	})
	t.Run("short", func(t *testing.T) {
		st := CheckWeights(60)
		if st.Complete || st.Exceeded || st.Remaining != 40 {
			t.Fatalf("ожидали недобор 40, получили %+v", st)
		}
	})
	t.Run("exceeded", func(t *testing.T) {
		st := CheckWeights(60, 50)
		if !st.Exceeded || st.Complete {
			t.Fatalf("ожидали перебор, получили %+v", st)
		}
	})
	t.Run("empty", func(t *testing.T) {
		st := CheckWeights()
		if st.Total != 0 || st.Remaining != 100 {
			t.Fatalf("неожиданный статус: %+v", st)
		}
	})
}

func TestFits(t *testing.T) {
	if !Fits(60, 40) {
		t.Fatal("60+40 должно помещаться")
	}
	if Fits(60, 40.5) {
		t.Fatal("60+40.5 не должно помещаться")
	}
}

func TestBuildReport(t *testing.T) {
	students := []models.Student{
		{ID: 1, FirstName: "Иван", LastName: "Иванов"},
		{ID: 2, FirstName: "Пётр", LastName: "Петров"},
	}
	cats := []models.Category{exams, quizzes}
	as := []models.Assignment{exam1, quiz1}
	s := Scores{
		{StudentID: 1, AssignmentID: exam1.ID}: 90,
		{StudentID: 1, AssignmentID: quiz1.ID}: 70,
	}

	rep := BuildReport(students, cats, as, s)
	if len(rep.Rows) != 2 {
		t.Fatalf("ожидали 2 строки, получили %d", len(rep.Rows))
	}
	if !rep.Weights.Complete {
		t.Fatalf("веса 60+40 должны давать 100%%: %+v", rep.Weights)
	}
	if rep.Graded != 2 {
		t.Fatalf("ожидали 2 оценки, получили %d", rep.Graded)
	}

	first := rep.Rows[0]
	if !approx(first.Overall.Value, 82) || first.Letter != LetterA {
		t.Fatalf("первый ученик: %+v", first)
	}
	if len(first.Categories) != 2 || !approx(first.Categories[1].Average.Value, 70) {
		t.Fatalf("категории первого ученика: %+v", first.Categories)
	}

	second := rep.Rows[1]
	if second.Overall.Valid || second.Letter != Ungraded || second.Graded != 0 {
		t.Fatalf("второй ученик без оценок: %+v", second)
	}
}
