package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("запись не найдена")
	ErrConflict   = errors.New("запись уже существует")
	ErrReferenced = errors.New("нарушена ссылочная целостность")
	ErrCheck      = errors.New("значение вне допустимого диапазона")
	// ErrCategoryMove: работу переносят в категорию другого класса или предмета.
	ErrCategoryMove = errors.New("категория относится к другому классу или предмету")
)

// CategoryInUseError: у категории есть работы, удалять нельзя.
type CategoryInUseError struct {
	Assignments int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("в категории %d работ(ы), удаление невозможно", e.Assignments)
}

// WeightExceededError: сумма весов превысила бы 100%.
type WeightExceededError struct {
	Total  float64
	Adding float64
}

func (e *WeightExceededError) Error() string {
	return fmt.Sprintf("сумма весов не может превышать 100%% (сейчас: %.1f%%, добавляется: %.1f%%)", e.Total, e.Adding)
}

// GradesOverMaxError: новый max_points меньше уже выставленных оценок.
type GradesOverMaxError struct {
	Count int
	Max   float64
}

func (e *GradesOverMaxError) Error() string {
	return fmt.Sprintf("%d оценок(и) больше нового максимума %g", e.Count, e.Max)
}

// mapErr переводит ошибки Postgres в ошибки пакета. Понимает и pgx, и lib/pq.
func mapErr(err error) error {
	var code, constraint string
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code, constraint = pgErr.Code, pgErr.ConstraintName
	case errors.As(err, &pqErr):
		code, constraint = string(pqErr.Code), pqErr.Constraint
	default:
		return err
	}
	switch code {
	case "23505":
		return fmt.Errorf("%w: %s", ErrConflict, constraint)
	case "23503":
		return fmt.Errorf("%w: %s", ErrReferenced, constraint)
	case "23514":
		return fmt.Errorf("%w: %s", ErrCheck, constraint)
	}
	return err
}

func affected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
