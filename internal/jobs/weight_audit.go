package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
	"github.com/Carsk101/acutea/internal/notify"
)

type WeightTotaler interface {
	WeightTotals(ctx context.Context) ([]models.WeightTotal, error)
}

// WeightAudit ищет пары класс+предмет, где веса категорий в сумме не 100%,
// и сообщает о каждой в sink (лог и телеграм подключаются через него).
// Возвращает число найденных пар.
func WeightAudit(ctx context.Context, src WeightTotaler, sink notify.Sink, log *zap.Logger) (int, error) {
	totals, err := src.WeightTotals(ctx)
	if err != nil {
		return 0, err
	}
	bad := 0
	for _, wt := range totals {
		st := grading.CheckWeights(wt.Total)
		if st.Complete {
			continue
		}
		bad++
		if sink != nil {
			sink.Notify(ctx, notify.Notice{
				Level:   notify.Error,
				Message: fmt.Sprintf("%s / %s: сумма весов категорий %s", wt.ClassName, wt.SubjectName, st),
			})
		}
	}
	if bad > 0 && log != nil {
		log.Info("аудит весов завершён", zap.Int("incomplete", bad), zap.Int("checked", len(totals)))
	}
	return bad, nil
}

func WeightAuditJob(src WeightTotaler, sink notify.Sink, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		_, err := WeightAudit(ctx, src, sink, log)
		return err
	}
}
