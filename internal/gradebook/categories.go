package gradebook

import (
	"context"
	"errors"
	"strings"

	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
	"github.com/Carsk101/acutea/internal/notify"
)

type CategoryInput struct {
	ClassID   int64               `json:"class_id" validate:"required"`
	SubjectID int64               `json:"subject_id" validate:"required"`
	Name      string              `json:"name" validate:"required"`
	Type      models.CategoryType `json:"type" validate:"oneof=Exams Quizzes Assignments Participation Projects Other"`
	Weight    float64             `json:"weight" validate:"gt=0,lte=100"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = models.CategoryOther
	}
}

// ListCategories возвращает категории и состояние суммы их весов.
func (s *Service) ListCategories(ctx context.Context, classID, subjectID int64) ([]models.Category, grading.WeightStatus, error) {
	cats, err := s.repo.ListCategories(ctx, classID, subjectID)
	if err != nil {
		return nil, grading.WeightStatus{}, err
	}
	return cats, categoryWeights(cats), nil
}

func categoryWeights(cats []models.Category) grading.WeightStatus {
	ws := make([]float64, 0, len(cats))
	for _, c := range cats {
		ws = append(ws, c.Weight)
	}
	return grading.CheckWeights(ws...)
}

func (s *Service) CreateCategory(ctx context.Context, sink notify.Sink, in CategoryInput) (models.Category, grading.WeightStatus, error) {
	in.normalize()
	if err := check(in); err != nil {
		return models.Category{}, grading.WeightStatus{}, err
	}
	if _, err := s.repo.GetSubject(ctx, in.SubjectID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Category{}, grading.WeightStatus{}, invalid("subject_id", "subject does not exist")
		}
		return models.Category{}, grading.WeightStatus{}, err
	}
	c, total, err := s.repo.CreateCategory(ctx, models.Category{
		ClassID:   in.ClassID,
		SubjectID: in.SubjectID,
		Name:      in.Name,
		Type:      in.Type,
		Weight:    in.Weight,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Category{}, grading.WeightStatus{}, invalid("class_id", "class does not exist")
		}
		return models.Category{}, grading.WeightStatus{}, err
	}
	st := grading.CheckWeights(total)
	if st.Complete {
		say(ctx, sink, notify.Success, "Perfect! Categories now total exactly 100%%")
	} else {
		say(ctx, sink, notify.Info, "Category added. Total now: %.1f%%. You'll need %.1f%% more to reach 100%%.", st.Total, st.Remaining)
	}
	return c, st, nil
}

// UpdateCategory сохраняет имя, тип и вес категории.
func (s *Service) UpdateCategory(ctx context.Context, sink notify.Sink, id int64, in CategoryInput) (grading.WeightStatus, error) {
	cur, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return grading.WeightStatus{}, err
	}
	in.ClassID, in.SubjectID = cur.ClassID, cur.SubjectID
	in.normalize()
	if err := check(in); err != nil {
		return grading.WeightStatus{}, err
	}
	return s.saveCategory(ctx, sink, models.Category{
		ID: id, ClassID: cur.ClassID, SubjectID: cur.SubjectID,
		Name: in.Name, Type: in.Type, Weight: in.Weight,
	})
}

// UpdateCategoryWeight меняет только вес.
func (s *Service) UpdateCategoryWeight(ctx context.Context, sink notify.Sink, id int64, weight float64) (grading.WeightStatus, error) {
	cur, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return grading.WeightStatus{}, err
	}
	in := CategoryInput{ClassID: cur.ClassID, SubjectID: cur.SubjectID, Name: cur.Name, Type: cur.Type, Weight: weight}
	in.normalize()
	if err := check(in); err != nil {
		return grading.WeightStatus{}, err
	}
	cur.Weight = weight
	cur.Type = in.Type
	return s.saveCategory(ctx, sink, *cur)
}

func (s *Service) saveCategory(ctx context.Context, sink notify.Sink, c models.Category) (grading.WeightStatus, error) {
	total, err := s.repo.UpdateCategory(ctx, c)
	if err != nil {
		return grading.WeightStatus{}, err
	}
	st := grading.CheckWeights(total)
	if st.Complete {
		say(ctx, sink, notify.Success, "Perfect! Categories now total exactly 100%%")
	} else {
		say(ctx, sink, notify.Info, "Weight updated. Total weight is now %.1f%%. You need to adjust other categories by %.1f%% to reach 100%%.", st.Total, st.Remaining)
	}
	return st, nil
}

// DeleteCategory отказывает с *db.CategoryInUseError, если в категории есть работы.
func (s *Service) DeleteCategory(ctx context.Context, sink notify.Sink, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	say(ctx, sink, notify.Info, "Category deleted")
	return nil
}
