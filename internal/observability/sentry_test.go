package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Carsk101/acutea/internal/ctxutil"
)

type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *captureTransport) Flush(time.Duration) bool      { return true }
func (t *captureTransport) Configure(sentry.ClientOptions) {}
func (t *captureTransport) SendEvent(e *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

func TestCaptureErrCtx_Tags(t *testing.T) {
	tr := &captureTransport{}
	if err := sentry.Init(sentry.ClientOptions{Transport: tr}); err != nil {
		t.Fatal(err)
	}

	ctx := ctxutil.WithOp(context.Background(), "PUT /api/grades")
	ctx = ctxutil.WithRequestID(ctx, "host/abc-000001")
	ctx = ctxutil.WithUserID(ctx, 7)
	CaptureErrCtx(ctx, errors.New("boom"))
	CaptureErrCtx(ctx, nil)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.events) != 1 {
		t.Fatalf("ожидали одно событие, получили %d", len(tr.events))
	}
	e := tr.events[0]
	if e.Tags["op"] != "PUT /api/grades" || e.Tags["request_id"] != "host/abc-000001" || e.User.ID != "7" {
		t.Fatalf("теги события: %v, пользователь %+v", e.Tags, e.User)
	}
}

func TestInitSentry_EmptyDSN(t *testing.T) {
	flush, err := InitSentry("", "dev", "test")
	if err != nil || flush == nil {
		t.Fatalf("пустой DSN должен отключать Sentry без ошибки: %v", err)
	}
	flush()
}
