package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Carsk101/acutea/internal/models"
)

func ListSubjects(ctx context.Context, database *sql.DB) ([]models.Subject, error) {
	rows, err := database.QueryContext(ctx, `SELECT id, name, created_at FROM subjects ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func GetSubjectByID(ctx context.Context, database *sql.DB, id int64) (*models.Subject, error) {
	var s models.Subject
	err := database.QueryRowContext(ctx, `SELECT id, name, created_at FROM subjects WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func CreateSubject(ctx context.Context, database *sql.DB, s models.Subject) (models.Subject, error) {
	err := database.QueryRowContext(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id, created_at`, s.Name,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return models.Subject{}, mapErr(err)
	}
	return s, nil
}

func UpdateSubject(ctx context.Context, database *sql.DB, s models.Subject) error {
	res, err := database.ExecContext(ctx, `UPDATE subjects SET name = $1 WHERE id = $2`, s.Name, s.ID)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}

func DeleteSubject(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}
