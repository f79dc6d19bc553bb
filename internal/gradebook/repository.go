package gradebook

import (
	"context"

	"github.com/Carsk101/acutea/internal/models"
)

// Repository описывает табличное хранилище журнала. Реализации: db.Store и memstore.Store.
type Repository interface {
	ListClasses(ctx context.Context) ([]models.Class, error)
	GetClass(ctx context.Context, id int64) (*models.Class, error)
	CreateClass(ctx context.Context, c models.Class) (models.Class, error)
	UpdateClass(ctx context.Context, c models.Class) error
	DeleteClass(ctx context.Context, id int64) error

	ListSubjects(ctx context.Context) ([]models.Subject, error)
	GetSubject(ctx context.Context, id int64) (*models.Subject, error)
	CreateSubject(ctx context.Context, s models.Subject) (models.Subject, error)
	UpdateSubject(ctx context.Context, s models.Subject) error
	DeleteSubject(ctx context.Context, id int64) error

	ListStudents(ctx context.Context, classID int64) ([]models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, s models.Student) (models.Student, error)
	UpdateStudent(ctx context.Context, s models.Student) error
	DeleteStudent(ctx context.Context, id int64) error

	// Create/Update категорий и работ возвращают сумму весов после записи
	// и *db.WeightExceededError, если она превысила бы 100%.
	ListCategories(ctx context.Context, classID, subjectID int64) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (models.Category, float64, error)
	UpdateCategory(ctx context.Context, c models.Category) (float64, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListAssignments(ctx context.Context, classID, subjectID int64) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	CreateAssignment(ctx context.Context, a models.Assignment) (models.Assignment, float64, error)
	UpdateAssignment(ctx context.Context, a models.Assignment) (float64, error)
	DeleteAssignment(ctx context.Context, id int64) error

	ListGrades(ctx context.Context, studentIDs, assignmentIDs []int64) ([]models.Grade, error)
	UpsertGrade(ctx context.Context, g models.Grade) (models.Grade, error)
	UpsertGrades(ctx context.Context, grades []models.Grade) ([]models.Grade, error)
	DeleteGrade(ctx context.Context, studentID, assignmentID int64) error
	DeleteGrades(ctx context.Context, assignmentID int64, studentIDs []int64) (int64, error)

	Stats(ctx context.Context) (models.Stats, error)
}
