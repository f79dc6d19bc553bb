package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Carsk101/acutea/internal/models"
)

func CreateUser(ctx context.Context, database *sql.DB, email, passwordHash string) (models.User, error) {
	u := models.User{Email: email, PasswordHash: passwordHash}
	err := database.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, database *sql.DB, email string) (*models.User, error) {
	var u models.User
	err := database.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func CreateSession(ctx context.Context, database *sql.DB, s models.Session) error {
	_, err := database.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.Token, s.UserID, s.CreatedAt, s.ExpiresAt,
	)
	return mapErr(err)
}

func GetSession(ctx context.Context, database *sql.DB, token string) (*models.Session, error) {
	var s models.Session
	err := database.QueryRowContext(ctx, `
		SELECT s.token, s.user_id, u.email, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.Email, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func DeleteSession(ctx context.Context, database *sql.DB, token string) error {
	_, err := database.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpiredSessions удаляет сессии, истёкшие к моменту now. Возвращает число удалённых.
func DeleteExpiredSessions(ctx context.Context, database *sql.DB, now time.Time) (int64, error) {
	res, err := database.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
