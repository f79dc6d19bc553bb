// Package gradebook реализует операции журнала с проверкой ввода и уведомлениями:
// классы, предметы, ученики, категории, работы и оценки.
package gradebook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/models"
	"github.com/Carsk101/acutea/internal/notify"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

func say(ctx context.Context, sink notify.Sink, lvl notify.Level, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Notify(ctx, notify.Notice{Level: lvl, Message: fmt.Sprintf(format, args...)})
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ---- classes

type ClassInput struct {
	Name string  `json:"name" validate:"required"`
	Term *string `json:"term"`
}

func (in *ClassInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Term = trimPtr(in.Term)
}

func (s *Service) ListClasses(ctx context.Context) ([]models.Class, error) {
	return s.repo.ListClasses(ctx)
}

func (s *Service) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	return s.repo.GetClass(ctx, id)
}

func (s *Service) CreateClass(ctx context.Context, sink notify.Sink, in ClassInput) (models.Class, error) {
	in.normalize()
	if err := check(in); err != nil {
		return models.Class{}, err
	}
	c, err := s.repo.CreateClass(ctx, models.Class{Name: in.Name, Term: in.Term})
	if err != nil {
		return models.Class{}, err
	}
	say(ctx, sink, notify.Success, "Class added")
	return c, nil
}

func (s *Service) UpdateClass(ctx context.Context, sink notify.Sink, id int64, in ClassInput) error {
	in.normalize()
	if err := check(in); err != nil {
		return err
	}
	if err := s.repo.UpdateClass(ctx, models.Class{ID: id, Name: in.Name, Term: in.Term}); err != nil {
		return err
	}
	say(ctx, sink, notify.Success, "Class saved")
	return nil
}

func (s *Service) DeleteClass(ctx context.Context, sink notify.Sink, id int64) error {
	if err := s.repo.DeleteClass(ctx, id); err != nil {
		return err
	}
	say(ctx, sink, notify.Info, "Class deleted")
	return nil
}

// ---- subjects

type SubjectInput struct {
	Name string `json:"name" validate:"required"`
}

func (s *Service) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.repo.ListSubjects(ctx)
}

func (s *Service) CreateSubject(ctx context.Context, sink notify.Sink, in SubjectInput) (models.Subject, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return models.Subject{}, err
	}
	sub, err := s.repo.CreateSubject(ctx, models.Subject{Name: in.Name})
	if err != nil {
		return models.Subject{}, err
	}
	say(ctx, sink, notify.Success, "Subject added")
	return sub, nil
}

func (s *Service) UpdateSubject(ctx context.Context, sink notify.Sink, id int64, in SubjectInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return err
	}
	if err := s.repo.UpdateSubject(ctx, models.Subject{ID: id, Name: in.Name}); err != nil {
		return err
	}
	say(ctx, sink, notify.Success, "Subject saved")
	return nil
}

func (s *Service) DeleteSubject(ctx context.Context, sink notify.Sink, id int64) error {
	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		return err
	}
	say(ctx, sink, notify.Info, "Subject deleted")
	return nil
}

// ---- students

type StudentInput struct {
	ClassID    int64  `json:"class_id" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Identifier string `json:"student_identifier"`
}

func (in *StudentInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Identifier = strings.TrimSpace(in.Identifier)
	if in.Identifier == "" && in.FirstName != "" && in.LastName != "" {
		in.Identifier = models.DefaultIdentifier(in.FirstName, in.LastName)
	}
}

func (s *Service) ListStudents(ctx context.Context, classID int64) ([]models.Student, error) {
	return s.repo.ListStudents(ctx, classID)
}

func (s *Service) CreateStudent(ctx context.Context, sink notify.Sink, in StudentInput) (models.Student, error) {
	in.normalize()
	if err := check(in); err != nil {
		return models.Student{}, err
	}
	if _, err := s.repo.GetClass(ctx, in.ClassID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Student{}, invalid("class_id", "class does not exist")
		}
		return models.Student{}, err
	}
	st, err := s.repo.CreateStudent(ctx, models.Student{
		ClassID:    in.ClassID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Identifier: in.Identifier,
	})
	if err != nil {
		return models.Student{}, err
	}
	say(ctx, sink, notify.Success, "Student added")
	return st, nil
}

// UpdateStudent меняет имя и идентификатор; класс ученика не меняется.
func (s *Service) UpdateStudent(ctx context.Context, sink notify.Sink, id int64, in StudentInput) error {
	cur, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	in.ClassID = cur.ClassID
	in.normalize()
	if err := check(in); err != nil {
		return err
	}
	if err := s.repo.UpdateStudent(ctx, models.Student{
		ID:         id,
		ClassID:    cur.ClassID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Identifier: in.Identifier,
	}); err != nil {
		return err
	}
	say(ctx, sink, notify.Success, "Student saved")
	return nil
}

func (s *Service) DeleteStudent(ctx context.Context, sink notify.Sink, id int64) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	say(ctx, sink, notify.Info, "Student deleted")
	return nil
}

// ---- dashboard

func (s *Service) Dashboard(ctx context.Context) (models.Stats, error) {
	return s.repo.Stats(ctx)
}
