package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

const categoryColumns = `id, class_id, subject_id, name, type, weight, created_at`

func scanCategory(row interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.ClassID, &c.SubjectID, &c.Name, &c.Type, &c.Weight, &c.CreatedAt)
	return c, err
}

// ListCategories: категории предмета в классе, сначала самые "тяжёлые".
func ListCategories(ctx context.Context, database *sql.DB, classID, subjectID int64) ([]models.Category, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE class_id = $1 AND subject_id = $2
		ORDER BY weight DESC, id
	`, classID, subjectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func GetCategoryByID(ctx context.Context, database *sql.DB, id int64) (*models.Category, error) {
	c, err := scanCategory(database.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateCategory вставляет категорию, если сумма весов предмета не превысит 100%.
// Возвращает сумму весов после вставки.
func CreateCategory(ctx context.Context, database *sql.DB, c models.Category) (models.Category, float64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return models.Category{}, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	total, err := lockCategoryTotal(ctx, tx, c.ClassID, c.SubjectID, 0)
	if err != nil {
		return models.Category{}, 0, err
	}
	if !grading.Fits(total, c.Weight) {
		return models.Category{}, total, &WeightExceededError{Total: total, Adding: c.Weight}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO categories (class_id, subject_id, name, type, weight)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, c.ClassID, c.SubjectID, c.Name, c.Type, c.Weight).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return models.Category{}, 0, mapErr(err)
	}
	if err := tx.Commit(); err != nil {
		return models.Category{}, 0, err
	}
	return c, total + c.Weight, nil
}

// UpdateCategory меняет имя, тип и вес. Возвращает сумму весов после изменения.
func UpdateCategory(ctx context.Context, database *sql.DB, c models.Category) (float64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var classID, subjectID int64
	err = tx.QueryRowContext(ctx, `SELECT class_id, subject_id FROM categories WHERE id = $1`, c.ID).Scan(&classID, &subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	others, err := lockCategoryTotal(ctx, tx, classID, subjectID, c.ID)
	if err != nil {
		return 0, err
	}
	if !grading.Fits(others, c.Weight) {
		return others, &WeightExceededError{Total: others, Adding: c.Weight}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE categories SET name = $1, type = $2, weight = $3 WHERE id = $4`,
		c.Name, c.Type, c.Weight, c.ID,
	); err != nil {
		return 0, mapErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return others + c.Weight, nil
}

// DeleteCategory удаляет категорию без работ.
func DeleteCategory(ctx context.Context, database *sql.DB, id int64) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM assignments WHERE category_id = $1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return &CategoryInUseError{Assignments: n}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if err := affected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ListWeightTotals: суммы весов категорий по каждой паре класс+предмет.
func ListWeightTotals(ctx context.Context, database *sql.DB) ([]models.WeightTotal, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT c.class_id, cl.name, c.subject_id, s.name, SUM(c.weight), count(*)
		FROM categories c
		JOIN classes cl ON cl.id = c.class_id
		JOIN subjects s ON s.id = c.subject_id
		GROUP BY c.class_id, cl.name, c.subject_id, s.name
		ORDER BY cl.name, s.name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.WeightTotal
	for rows.Next() {
		var w models.WeightTotal
		if err := rows.Scan(&w.ClassID, &w.ClassName, &w.SubjectID, &w.SubjectName, &w.Total, &w.Count); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// lockCategoryTotal блокирует строку класса (сериализует правки весов внутри класса)
// и считает сумму весов категорий предмета без exceptID.
func lockCategoryTotal(ctx context.Context, tx *sql.Tx, classID, subjectID, exceptID int64) (float64, error) {
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM classes WHERE id = $1 FOR UPDATE`, classID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	var total float64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(weight), 0)
		FROM categories
		WHERE class_id = $1 AND subject_id = $2 AND id <> $3
	`, classID, subjectID, exceptID).Scan(&total)
	return total, err
}
