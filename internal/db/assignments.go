package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

const assignmentColumns = `id, class_id, subject_id, category_id, title, max_points, weight, due_at, created_at`

func scanAssignment(row interface{ Scan(...any) error }) (models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.ClassID, &a.SubjectID, &a.CategoryID, &a.Title, &a.MaxPoints, &a.Weight, &a.DueAt, &a.CreatedAt)
	return a, err
}

func ListAssignments(ctx context.Context, database *sql.DB, classID, subjectID int64) ([]models.Assignment, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE class_id = $1 AND subject_id = $2
		ORDER BY created_at, id
	`, classID, subjectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func GetAssignmentByID(ctx context.Context, database *sql.DB, id int64) (*models.Assignment, error) {
	a, err := scanAssignment(database.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateAssignment: класс и предмет берутся из категории. Сумма весов работ
// категории после вставки не должна превышать 100%.
func CreateAssignment(ctx context.Context, database *sql.DB, a models.Assignment) (models.Assignment, float64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return models.Assignment{}, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	cat, total, err := lockAssignmentTotal(ctx, tx, a.CategoryID, 0)
	if err != nil {
		return models.Assignment{}, 0, err
	}
	if !grading.Fits(total, a.Weight) {
		return models.Assignment{}, total, &WeightExceededError{Total: total, Adding: a.Weight}
	}
	a.ClassID, a.SubjectID = cat.ClassID, cat.SubjectID

	err = tx.QueryRowContext(ctx, `
		INSERT INTO assignments (class_id, subject_id, category_id, title, max_points, weight, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, a.ClassID, a.SubjectID, a.CategoryID, a.Title, a.MaxPoints, a.Weight, a.DueAt).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return models.Assignment{}, 0, mapErr(err)
	}
	if err := tx.Commit(); err != nil {
		return models.Assignment{}, 0, err
	}
	return a, total + a.Weight, nil
}

// UpdateAssignment сохраняет все поля. Категорию можно сменить только в пределах
// того же класса и предмета (ErrCategoryMove), иначе оценки учеников остались бы
// без работы. max_points нельзя опустить ниже выставленных оценок.
func UpdateAssignment(ctx context.Context, database *sql.DB, a models.Assignment) (float64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	cat, others, err := lockAssignmentTotal(ctx, tx, a.CategoryID, a.ID)
	if err != nil {
		return 0, err
	}
	if !grading.Fits(others, a.Weight) {
		return others, &WeightExceededError{Total: others, Adding: a.Weight}
	}

	var classID, subjectID int64
	err = tx.QueryRowContext(ctx,
		`SELECT class_id, subject_id FROM assignments WHERE id = $1 FOR UPDATE`, a.ID,
	).Scan(&classID, &subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if classID != cat.ClassID || subjectID != cat.SubjectID {
		return 0, ErrCategoryMove
	}
	if a.MaxPoints != nil {
		var over int
		err = tx.QueryRowContext(ctx,
			`SELECT count(*) FROM grades WHERE assignment_id = $1 AND points_earned > $2`, a.ID, *a.MaxPoints,
		).Scan(&over)
		if err != nil {
			return 0, err
		}
		if over > 0 {
			return 0, &GradesOverMaxError{Count: over, Max: *a.MaxPoints}
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments
		SET category_id = $1, title = $2, max_points = $3, weight = $4, due_at = $5
		WHERE id = $6
	`, a.CategoryID, a.Title, a.MaxPoints, a.Weight, a.DueAt, a.ID)
	if err != nil {
		return 0, mapErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return others + a.Weight, nil
}

// DeleteAssignment удаляет работу вместе с оценками.
func DeleteAssignment(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}

func lockAssignmentTotal(ctx context.Context, tx *sql.Tx, categoryID, exceptID int64) (models.Category, float64, error) {
	cat, err := scanCategory(tx.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, categoryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, 0, ErrNotFound
		}
		return models.Category{}, 0, err
	}
	var total float64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(weight), 0) FROM assignments WHERE category_id = $1 AND id <> $2
	`, categoryID, exceptID).Scan(&total)
	return cat, total, err
}
