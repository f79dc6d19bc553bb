package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Carsk101/acutea/internal/models"
)

// ListStudentsByClass: ученики класса по фамилии.
func ListStudentsByClass(ctx context.Context, database *sql.DB, classID int64) ([]models.Student, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT id, class_id, first_name, last_name, student_identifier, created_at
		FROM students
		WHERE class_id = $1
		ORDER BY last_name, first_name, id
	`, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.ClassID, &s.FirstName, &s.LastName, &s.Identifier, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func CreateStudent(ctx context.Context, database *sql.DB, s models.Student) (models.Student, error) {
	err := database.QueryRowContext(ctx, `
		INSERT INTO students (class_id, first_name, last_name, student_identifier)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, s.ClassID, s.FirstName, s.LastName, s.Identifier).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return models.Student{}, mapErr(err)
	}
	return s, nil
}

func UpdateStudent(ctx context.Context, database *sql.DB, s models.Student) error {
	res, err := database.ExecContext(ctx, `
		UPDATE students
		SET first_name = $1, last_name = $2, student_identifier = $3
		WHERE id = $4
	`, s.FirstName, s.LastName, s.Identifier, s.ID)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}

func DeleteStudent(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}

func GetStudentByID(ctx context.Context, database *sql.DB, id int64) (*models.Student, error) {
	var s models.Student
	err := database.QueryRowContext(ctx, `
		SELECT id, class_id, first_name, last_name, student_identifier, created_at
		FROM students WHERE id = $1
	`, id).Scan(&s.ID, &s.ClassID, &s.FirstName, &s.LastName, &s.Identifier, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
