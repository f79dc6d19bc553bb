package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type SessionCleaner interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

func SessionGCJob(src SessionCleaner, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := src.DeleteExpiredSessions(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 && log != nil {
			log.Info("удалены истёкшие сессии", zap.Int64("count", n))
		}
		return nil
	}
}
