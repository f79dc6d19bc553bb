package screens

import (
	"context"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

type CategoriesScreen struct {
	loader     Loader
	classID    int64
	subjectID  int64
	categories []models.Category
}

func NewCategoriesScreen(l Loader) *CategoriesScreen {
	return &CategoriesScreen{loader: l}
}

func (s *CategoriesScreen) Load(ctx context.Context, classID, subjectID int64) error {
	cats, err := s.loader.ListCategories(ctx, classID, subjectID)
	if err != nil {
		return err
	}
	s.classID, s.subjectID, s.categories = classID, subjectID, cats
	return nil
}

type CategoriesView struct {
	ClassID    int64                `json:"class_id"`
	SubjectID  int64                `json:"subject_id"`
	Categories []models.Category    `json:"categories"`
	Weights    grading.WeightStatus `json:"weights"`
	Message    string               `json:"message"`
}

func (s *CategoriesScreen) View() CategoriesView {
	cats := s.categories
	if cats == nil {
		cats = []models.Category{}
	}
	ws := weightsOf(cats)
	return CategoriesView{
		ClassID:    s.classID,
		SubjectID:  s.subjectID,
		Categories: cats,
		Weights:    ws,
		Message:    ws.String(),
	}
}

type DashboardScreen struct {
	loader Loader
	stats  models.Stats
}

func NewDashboardScreen(l Loader) *DashboardScreen {
	return &DashboardScreen{loader: l}
}

func (s *DashboardScreen) Load(ctx context.Context) error {
	st, err := s.loader.Stats(ctx)
	if err != nil {
		return err
	}
	s.stats = st
	return nil
}

func (s *DashboardScreen) View() models.Stats { return s.stats }
