// Package screens: состояние экранов журнала. Объект экрана создаётся на запрос
// (или на сеанс работы с экраном) и не разделяется между пользователями.
package screens

import (
	"context"
	"errors"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

var (
	ErrNoClass    = errors.New("класс не выбран")
	ErrNoSubject  = errors.New("предмет не выбран")
	ErrNoCategory = errors.New("категория не относится к выбранному предмету")
)

// Loader: чтение данных для экранов.
type Loader interface {
	GetClass(ctx context.Context, id int64) (*models.Class, error)
	GetSubject(ctx context.Context, id int64) (*models.Subject, error)
	ListStudents(ctx context.Context, classID int64) ([]models.Student, error)
	ListCategories(ctx context.Context, classID, subjectID int64) ([]models.Category, error)
	ListAssignments(ctx context.Context, classID, subjectID int64) ([]models.Assignment, error)
	ListGrades(ctx context.Context, studentIDs, assignmentIDs []int64) ([]models.Grade, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// selection: общий для экранов выбор класса и предмета с загруженным снимком.
type selection struct {
	loader Loader

	class   *models.Class
	subject *models.Subject

	students    []models.Student
	categories  []models.Category
	assignments []models.Assignment
	scores      grading.Scores
}

func (s *selection) selectClass(ctx context.Context, id int64) error {
	cl, err := s.loader.GetClass(ctx, id)
	if err != nil {
		return err
	}
	s.reset()
	s.class = cl
	return nil
}

func (s *selection) reset() {
	s.class = nil
	s.clearSubject()
}

func (s *selection) clearSubject() {
	s.subject = nil
	s.students = nil
	s.categories = nil
	s.assignments = nil
	s.scores = nil
}

// selectSubject загружает учеников, категории, работы и оценки выбранного класса по предмету.
func (s *selection) selectSubject(ctx context.Context, id int64) error {
	if s.class == nil {
		return ErrNoClass
	}
	s.clearSubject()

	sub, err := s.loader.GetSubject(ctx, id)
	if err != nil {
		return err
	}
	students, err := s.loader.ListStudents(ctx, s.class.ID)
	if err != nil {
		return err
	}
	cats, err := s.loader.ListCategories(ctx, s.class.ID, id)
	if err != nil {
		return err
	}
	asg, err := s.loader.ListAssignments(ctx, s.class.ID, id)
	if err != nil {
		return err
	}

	sids := make([]int64, 0, len(students))
	for _, st := range students {
		sids = append(sids, st.ID)
	}
	aids := make([]int64, 0, len(asg))
	for _, a := range asg {
		aids = append(aids, a.ID)
	}
	grades, err := s.loader.ListGrades(ctx, sids, aids)
	if err != nil {
		return err
	}

	s.subject = sub
	s.students = students
	s.categories = cats
	s.assignments = asg
	s.scores = grading.NewScores(grades)
	return nil
}

func (s *selection) ids() (classID, subjectID int64) {
	if s.class != nil {
		classID = s.class.ID
	}
	if s.subject != nil {
		subjectID = s.subject.ID
	}
	return classID, subjectID
}
