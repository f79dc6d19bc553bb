package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Carsk101/acutea/internal/models"
	"github.com/lib/pq"
)

const upsertGradeSQL = `
	INSERT INTO grades (student_id, assignment_id, points_earned, grader_id, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (student_id, assignment_id) DO UPDATE
	SET points_earned = EXCLUDED.points_earned,
	    grader_id     = EXCLUDED.grader_id,
	    updated_at    = now()
	RETURNING id, updated_at
`

// ListGrades: оценки по ученикам и работам. Пустой список ID даёт пустой результат.
func ListGrades(ctx context.Context, database *sql.DB, studentIDs, assignmentIDs []int64) ([]models.Grade, error) {
	if len(studentIDs) == 0 || len(assignmentIDs) == 0 {
		return []models.Grade{}, nil
	}
	rows, err := database.QueryContext(ctx, `
		SELECT id, student_id, assignment_id, points_earned, grader_id, updated_at
		FROM grades
		WHERE student_id = ANY($1) AND assignment_id = ANY($2)
	`, pq.Array(studentIDs), pq.Array(assignmentIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Grade{}
	for rows.Next() {
		var g models.Grade
		if err := rows.Scan(&g.ID, &g.StudentID, &g.AssignmentID, &g.PointsEarned, &g.GraderID, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func UpsertGrade(ctx context.Context, database *sql.DB, g models.Grade) (models.Grade, error) {
	err := database.QueryRowContext(ctx, upsertGradeSQL,
		g.StudentID, g.AssignmentID, g.PointsEarned, g.GraderID,
	).Scan(&g.ID, &g.UpdatedAt)
	if err != nil {
		return models.Grade{}, mapErr(err)
	}
	return g, nil
}

// UpsertGrades сохраняет пачку оценок в одной транзакции: либо все, либо ни одной.
func UpsertGrades(ctx context.Context, database *sql.DB, grades []models.Grade) ([]models.Grade, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertGradeSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	out := make([]models.Grade, 0, len(grades))
	for _, g := range grades {
		if err := stmt.QueryRowContext(ctx, g.StudentID, g.AssignmentID, g.PointsEarned, g.GraderID).Scan(&g.ID, &g.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, g)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteGrade снимает оценку: работа снова "не оценена". Отсутствие строки не ошибка.
func DeleteGrade(ctx context.Context, database *sql.DB, studentID, assignmentID int64) error {
	_, err := database.ExecContext(ctx,
		`DELETE FROM grades WHERE student_id = $1 AND assignment_id = $2`,
		studentID, assignmentID,
	)
	return err
}

func DeleteGrades(ctx context.Context, database *sql.DB, assignmentID int64, studentIDs []int64) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	res, err := database.ExecContext(ctx,
		`DELETE FROM grades WHERE assignment_id = $1 AND student_id = ANY($2)`,
		assignmentID, pq.Array(studentIDs),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func GetGrade(ctx context.Context, database *sql.DB, studentID, assignmentID int64) (*models.Grade, error) {
	var g models.Grade
	err := database.QueryRowContext(ctx, `
		SELECT id, student_id, assignment_id, points_earned, grader_id, updated_at
		FROM grades WHERE student_id = $1 AND assignment_id = $2
	`, studentID, assignmentID).Scan(&g.ID, &g.StudentID, &g.AssignmentID, &g.PointsEarned, &g.GraderID, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}
