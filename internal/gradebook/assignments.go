package gradebook

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/models"
	"github.com/Carsk101/acutea/internal/notify"
)

type AssignmentInput struct {
	CategoryID int64      `json:"category_id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	MaxPoints  *float64   `json:"max_points" validate:"omitempty,gt=0"`
	Weight     float64    `json:"weight" validate:"gte=0,lte=100"`
	DueAt      *time.Time `json:"due_at"`
}

func (in AssignmentInput) validate() error {
	if err := check(in); err != nil {
		return err
	}
	if in.MaxPoints != nil && (math.IsNaN(*in.MaxPoints) || math.IsInf(*in.MaxPoints, 0)) {
		return invalid("max_points", "must be a number")
	}
	return nil
}

// updateErr переводит отказы хранилища при правке работы в ошибки полей.
func updateErr(err error) error {
	var over *db.GradesOverMaxError
	switch {
	case errors.Is(err, db.ErrCategoryMove):
		return invalid("category_id", "An assignment can only move between categories of the same class and subject")
	case errors.As(err, &over):
		return invalid("max_points", "%d grade(s) are above %g; lower them first", over.Count, over.Max)
	}
	return err
}

func (s *Service) ListAssignments(ctx context.Context, classID, subjectID int64) ([]models.Assignment, error) {
	return s.repo.ListAssignments(ctx, classID, subjectID)
}

func (s *Service) CreateAssignment(ctx context.Context, sink notify.Sink, in AssignmentInput) (models.Assignment, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.validate(); err != nil {
		return models.Assignment{}, err
	}
	a, _, err := s.repo.CreateAssignment(ctx, models.Assignment{
		CategoryID: in.CategoryID,
		Title:      in.Title,
		MaxPoints:  in.MaxPoints,
		Weight:     in.Weight,
		DueAt:      in.DueAt,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Assignment{}, invalid("category_id", "Please select a category")
		}
		return models.Assignment{}, err
	}
	say(ctx, sink, notify.Success, "Assignment added")
	return a, nil
}

func (s *Service) UpdateAssignment(ctx context.Context, sink notify.Sink, id int64, in AssignmentInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetAssignment(ctx, id); err != nil {
		return err
	}
	_, err := s.repo.UpdateAssignment(ctx, models.Assignment{
		ID:         id,
		CategoryID: in.CategoryID,
		Title:      in.Title,
		MaxPoints:  in.MaxPoints,
		Weight:     in.Weight,
		DueAt:      in.DueAt,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return invalid("category_id", "Please select a category")
		}
		return updateErr(err)
	}
	say(ctx, sink, notify.Success, "Assignment saved")
	return nil
}

// UpdateAssignmentWeight меняет только вес работы внутри категории.
func (s *Service) UpdateAssignmentWeight(ctx context.Context, sink notify.Sink, id int64, weight float64) error {
	a, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	in := AssignmentInput{CategoryID: a.CategoryID, Title: a.Title, MaxPoints: a.MaxPoints, Weight: weight, DueAt: a.DueAt}
	if err := in.validate(); err != nil {
		return err
	}
	a.Weight = weight
	if _, err := s.repo.UpdateAssignment(ctx, *a); err != nil {
		return updateErr(err)
	}
	say(ctx, sink, notify.Success, "Weight saved")
	return nil
}

func (s *Service) DeleteAssignment(ctx context.Context, sink notify.Sink, id int64) error {
	if err := s.repo.DeleteAssignment(ctx, id); err != nil {
		return err
	}
	say(ctx, sink, notify.Info, "Assignment deleted")
	return nil
}
