package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Carsk101/acutea/internal/models"
)

func ListClasses(ctx context.Context, database *sql.DB) ([]models.Class, error) {
	rows, err := database.QueryContext(ctx, `SELECT id, name, term, created_at FROM classes ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Class{}
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Term, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func GetClassByID(ctx context.Context, database *sql.DB, id int64) (*models.Class, error) {
	row := database.QueryRowContext(ctx, `SELECT id, name, term, created_at FROM classes WHERE id = $1`, id)
	var c models.Class
	if err := row.Scan(&c.ID, &c.Name, &c.Term, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func CreateClass(ctx context.Context, database *sql.DB, c models.Class) (models.Class, error) {
	err := database.QueryRowContext(ctx,
		`INSERT INTO classes (name, term) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.Term,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return models.Class{}, mapErr(err)
	}
	return c, nil
}

func UpdateClass(ctx context.Context, database *sql.DB, c models.Class) error {
	res, err := database.ExecContext(ctx,
		`UPDATE classes SET name = $1, term = $2 WHERE id = $3`,
		c.Name, c.Term, c.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}

// DeleteClass удаляет класс вместе с учениками, категориями, работами и оценками (каскад).
func DeleteClass(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return affected(res)
}
