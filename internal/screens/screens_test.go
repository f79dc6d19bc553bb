package screens_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
	"github.com/Carsk101/acutea/internal/screens"
	"github.com/Carsk101/acutea/internal/testutil/memstore"
)

type fixture struct {
	store              *memstore.Store
	class              models.Class
	algebra, geometry  models.Subject
	ann, bob           models.Student
	exams, quizzes     models.Category
	exam1, exam2, quiz models.Assignment
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// Экзамены 60 / Тесты 40; у Анны все оценки, у Бориса ни одной.
func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	f := fixture{store: st}
	var err error

	f.class, err = st.CreateClass(ctx, models.Class{Name: "7А"})
	must(t, err)
	f.algebra, err = st.CreateSubject(ctx, models.Subject{Name: "Алгебра"})
	must(t, err)
	f.geometry, err = st.CreateSubject(ctx, models.Subject{Name: "Геометрия"})
	must(t, err)
	f.ann, err = st.CreateStudent(ctx, models.Student{ClassID: f.class.ID, FirstName: "Анна", LastName: "Антонова"})
	must(t, err)
	f.bob, err = st.CreateStudent(ctx, models.Student{ClassID: f.class.ID, FirstName: "Борис", LastName: "Борисов"})
	must(t, err)
	f.exams, _, err = st.CreateCategory(ctx, models.Category{ClassID: f.class.ID, SubjectID: f.algebra.ID, Name: "Экзамены", Weight: 60})
	must(t, err)
	f.quizzes, _, err = st.CreateCategory(ctx, models.Category{ClassID: f.class.ID, SubjectID: f.algebra.ID, Name: "Тесты", Weight: 40})
	must(t, err)
	f.exam1, _, err = st.CreateAssignment(ctx, models.Assignment{CategoryID: f.exams.ID, Title: "Экзамен 1", Weight: 50})
	must(t, err)
	f.exam2, _, err = st.CreateAssignment(ctx, models.Assignment{CategoryID: f.exams.ID, Title: "Экзамен 2", Weight: 50})
	must(t, err)
	f.quiz, _, err = st.CreateAssignment(ctx, models.Assignment{CategoryID: f.quizzes.ID, Title: "Тест 1", Weight: 100})
	must(t, err)
	for _, g := range []models.Grade{
		{StudentID: f.ann.ID, AssignmentID: f.exam1.ID, PointsEarned: 80},
		{StudentID: f.ann.ID, AssignmentID: f.exam2.ID, PointsEarned: 90},
		{StudentID: f.ann.ID, AssignmentID: f.quiz.ID, PointsEarned: 70},
	} {
		_, err := st.UpsertGrade(ctx, g)
		must(t, err)
	}
	return f
}

func TestGradingScreen_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := seed(t)
	s := screens.NewGradingScreen(f.store)

	if err := s.SelectSubject(ctx, f.algebra.ID); !errors.Is(err, screens.ErrNoClass) {
		t.Fatalf("без класса: ожидали ErrNoClass, получили %v", err)
	}
	if err := s.SelectCategory(f.exams.ID); !errors.Is(err, screens.ErrNoSubject) {
		t.Fatalf("без предмета: ожидали ErrNoSubject, получили %v", err)
	}

	if err := s.SelectClass(ctx, f.class.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectSubject(ctx, f.algebra.ID); err != nil {
		t.Fatal(err)
	}

	v := s.View()
	if v.Category == nil || v.Category.ID != f.exams.ID {
		t.Fatalf("должна выбраться самая весомая категория: %+v", v.Category)
	}
	if !v.CategoryWeights.Complete {
		t.Fatalf("веса категорий: %+v", v.CategoryWeights)
	}
	if len(v.Assignments) != 2 || len(v.Rows) != 2 {
		t.Fatalf("ожидали 2 работы и 2 строки: %d, %d", len(v.Assignments), len(v.Rows))
	}
	ann, bob := v.Rows[0], v.Rows[1]
	if ann.Student.ID != f.ann.ID || !ann.Average.Valid || math.Abs(ann.Average.Value-85) > 1e-9 || ann.Letter != grading.LetterA {
		t.Fatalf("строка Анны: %+v", ann)
	}
	if bob.Average.Valid || bob.Letter != grading.Ungraded || bob.Cells[0].Points != nil {
		t.Fatalf("у Бориса не должно быть оценок: %+v", bob)
	}
	if v.Graded != 2 || v.Total != 4 {
		t.Fatalf("оценено %d из %d, ожидали 2 из 4", v.Graded, v.Total)
	}

	if err := s.SelectCategory(f.quizzes.ID); err != nil {
		t.Fatal(err)
	}
	if v := s.View(); len(v.Assignments) != 1 || v.Rows[0].Average.Value != 70 {
		t.Fatalf("категория тестов: %+v", v)
	}
	if err := s.SelectCategory(12345); !errors.Is(err, screens.ErrNoCategory) {
		t.Fatalf("ожидали ErrNoCategory, получили %v", err)
	}

	t.Run("subject_without_categories", func(t *testing.T) {
		if err := s.SelectSubject(ctx, f.geometry.ID); err != nil {
			t.Fatal(err)
		}
		v := s.View()
		if v.Category != nil || len(v.Rows) != 0 || v.SubjectID != f.geometry.ID {
			t.Fatalf("пустой предмет: %+v", v)
		}
	})

	t.Run("select_class_resets_subject", func(t *testing.T) {
		if err := s.SelectSubject(ctx, f.algebra.ID); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectClass(ctx, f.class.ID); err != nil {
			t.Fatal(err)
		}
		v := s.View()
		if v.SubjectID != 0 || v.Category != nil || len(v.Rows) != 0 {
			t.Fatalf("после смены класса состояние должно сброситься: %+v", v)
		}
	})

	t.Run("reset", func(t *testing.T) {
		s.Reset()
		if v := s.View(); v.ClassID != 0 || v.SubjectID != 0 {
			t.Fatalf("после Reset: %+v", v)
		}
	})
}

func TestStudentGradesScreen(t *testing.T) {
	ctx := context.Background()
	f := seed(t)
	s := screens.NewStudentGradesScreen(f.store)
	if err := s.SelectClass(ctx, f.class.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectSubject(ctx, f.algebra.ID); err != nil {
		t.Fatal(err)
	}
	v := s.View()
	if len(v.Report.Rows) != 2 {
		t.Fatalf("строк: %d", len(v.Report.Rows))
	}
	ann := v.Report.Rows[0]
	// 85*60 + 70*40 = 7900 / 100
	if !ann.Overall.Valid || math.Abs(ann.Overall.Value-79) > 1e-9 || ann.Letter != grading.LetterB {
		t.Fatalf("итог Анны: %+v", ann)
	}
	if bob := v.Report.Rows[1]; bob.Overall.Valid || bob.Letter != grading.Ungraded {
		t.Fatalf("итог Бориса: %+v", bob)
	}
	if v.Report.Graded != 3 {
		t.Fatalf("оценено: %d", v.Report.Graded)
	}
	if _, ok := s.Scores().Get(f.ann.ID, f.quiz.ID); !ok {
		t.Fatal("снимок оценок должен содержать тест Анны")
	}
}

func TestCategoriesAndDashboardScreens(t *testing.T) {
	ctx := context.Background()
	f := seed(t)

	cs := screens.NewCategoriesScreen(f.store)
	if v := cs.View(); v.Categories == nil || len(v.Categories) != 0 {
		t.Fatalf("до загрузки: %+v", v)
	}
	if err := cs.Load(ctx, f.class.ID, f.algebra.ID); err != nil {
		t.Fatal(err)
	}
	v := cs.View()
	if len(v.Categories) != 2 || !v.Weights.Complete || v.Message != "100%" {
		t.Fatalf("категории: %+v", v)
	}

	ds := screens.NewDashboardScreen(f.store)
	if err := ds.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if st := ds.View(); st.Students != 2 || st.GradedAssignments != 3 {
		t.Fatalf("сводка: %+v", st)
	}
}
