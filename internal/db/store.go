package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Carsk101/acutea/internal/ctxutil"
	"github.com/Carsk101/acutea/internal/models"
)

// Store: обёртка над *sql.DB для сервисов, которые принимают интерфейсы.
// Каждый вызов ограничен ctxutil.DefaultDBTimeout.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{DB: database} }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return s.DB.PingContext(ctx)
}

func (s *Store) ListClasses(ctx context.Context) ([]models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListClasses(ctx, s.DB)
}

func (s *Store) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetClassByID(ctx, s.DB, id)
}

func (s *Store) CreateClass(ctx context.Context, c models.Class) (models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateClass(ctx, s.DB, c)
}

func (s *Store) UpdateClass(ctx context.Context, c models.Class) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpdateClass(ctx, s.DB, c)
}

func (s *Store) DeleteClass(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteClass(ctx, s.DB, id)
}

func (s *Store) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListSubjects(ctx, s.DB)
}

func (s *Store) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetSubjectByID(ctx, s.DB, id)
}

func (s *Store) CreateSubject(ctx context.Context, sub models.Subject) (models.Subject, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateSubject(ctx, s.DB, sub)
}

func (s *Store) UpdateSubject(ctx context.Context, sub models.Subject) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpdateSubject(ctx, s.DB, sub)
}

func (s *Store) DeleteSubject(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteSubject(ctx, s.DB, id)
}

func (s *Store) ListStudents(ctx context.Context, classID int64) ([]models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListStudentsByClass(ctx, s.DB, classID)
}

func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetStudentByID(ctx, s.DB, id)
}

func (s *Store) CreateStudent(ctx context.Context, st models.Student) (models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateStudent(ctx, s.DB, st)
}

func (s *Store) UpdateStudent(ctx context.Context, st models.Student) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpdateStudent(ctx, s.DB, st)
}

func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteStudent(ctx, s.DB, id)
}

func (s *Store) ListCategories(ctx context.Context, classID, subjectID int64) ([]models.Category, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListCategories(ctx, s.DB, classID, subjectID)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetCategoryByID(ctx, s.DB, id)
}

func (s *Store) CreateCategory(ctx context.Context, c models.Category) (models.Category, float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateCategory(ctx, s.DB, c)
}

func (s *Store) UpdateCategory(ctx context.Context, c models.Category) (float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpdateCategory(ctx, s.DB, c)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteCategory(ctx, s.DB, id)
}

func (s *Store) ListAssignments(ctx context.Context, classID, subjectID int64) ([]models.Assignment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListAssignments(ctx, s.DB, classID, subjectID)
}

func (s *Store) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetAssignmentByID(ctx, s.DB, id)
}

func (s *Store) CreateAssignment(ctx context.Context, a models.Assignment) (models.Assignment, float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateAssignment(ctx, s.DB, a)
}

func (s *Store) UpdateAssignment(ctx context.Context, a models.Assignment) (float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpdateAssignment(ctx, s.DB, a)
}

func (s *Store) DeleteAssignment(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteAssignment(ctx, s.DB, id)
}

func (s *Store) ListGrades(ctx context.Context, studentIDs, assignmentIDs []int64) ([]models.Grade, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListGrades(ctx, s.DB, studentIDs, assignmentIDs)
}

func (s *Store) UpsertGrade(ctx context.Context, g models.Grade) (models.Grade, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpsertGrade(ctx, s.DB, g)
}

func (s *Store) UpsertGrades(ctx context.Context, grades []models.Grade) ([]models.Grade, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return UpsertGrades(ctx, s.DB, grades)
}

func (s *Store) DeleteGrade(ctx context.Context, studentID, assignmentID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteGrade(ctx, s.DB, studentID, assignmentID)
}

func (s *Store) DeleteGrades(ctx context.Context, assignmentID int64, studentIDs []int64) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteGrades(ctx, s.DB, assignmentID, studentIDs)
}

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetStats(ctx, s.DB)
}

func (s *Store) WeightTotals(ctx context.Context) ([]models.WeightTotal, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return ListWeightTotals(ctx, s.DB)
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateUser(ctx, s.DB, email, passwordHash)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetUserByEmail(ctx, s.DB, email)
}

func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return CreateSession(ctx, s.DB, sess)
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return GetSession(ctx, s.DB, token)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteSession(ctx, s.DB, token)
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return DeleteExpiredSessions(ctx, s.DB, now)
}
