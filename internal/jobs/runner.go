package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/ctxutil"
	"github.com/Carsk101/acutea/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func New(ctx context.Context, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{ctx: ctx, log: log}
}

// Every запускает fn раз в interval до отмены контекста раннера.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	if interval <= 0 {
		r.log.Info("задача отключена", zap.String("job", name))
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				_ = r.Run(name, fn)
			}
		}
	}()
}

// Run выполняет задачу один раз с метриками, логом и перехватом паники.
func (r *Runner) Run(name string, fn Job) (err error) {
	start := time.Now()
	ctx := ctxutil.WithOp(r.ctx, "job."+name)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in job %s: %v", name, p)
		}
		if err != nil {
			jobErrors.WithLabelValues(name).Inc()
			observability.CaptureErrCtx(ctx, err)
			r.log.Warn("задача завершилась с ошибкой", zap.String("job", name), zap.Error(err))
		}
		jobRuns.WithLabelValues(name).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()
	return fn(ctx)
}
