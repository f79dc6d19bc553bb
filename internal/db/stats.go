package db

import (
	"context"
	"database/sql"

	"github.com/Carsk101/acutea/internal/models"
)

// GetStats: сводка для главной страницы. Средняя оценка считается только по
// положительным баллам, как на старой панели.
func GetStats(ctx context.Context, database *sql.DB) (models.Stats, error) {
	var st models.Stats
	err := database.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM classes),
			(SELECT count(*) FROM students),
			(SELECT count(*) FROM assignments),
			(SELECT count(*) FROM categories),
			(SELECT COALESCE(AVG(points_earned), 0) FROM grades WHERE points_earned > 0),
			(SELECT count(DISTINCT assignment_id) FROM grades)
	`).Scan(&st.Classes, &st.Students, &st.Assignments, &st.Categories, &st.AvgGrade, &st.GradedAssignments)
	return st, err
}
