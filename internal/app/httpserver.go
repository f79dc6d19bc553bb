package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type HTTPServer struct {
	srv  *http.Server
	addr net.Addr
	done chan struct{}
}

// StartHTTP слушает addr и обслуживает запросы в фоне; при отмене ctx сервер
// гасится, после чего закрывается Done().
func StartHTTP(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	h := &HTTPServer{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr(),
		done: make(chan struct{}),
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		log.Info("http: слушаем", zap.String("addr", h.addr.String()))
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http: сервер остановился", zap.Error(err))
		}
	}()

	go func() {
		defer close(h.done)
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.srv.Shutdown(shCtx); err != nil {
			log.Warn("http: остановка по таймауту", zap.Error(err))
		}
		<-served
	}()

	return h, nil
}

// Addr: фактический адрес (с портом, если слушали :0).
func (h *HTTPServer) Addr() string { return h.addr.String() }

// Done закрывается, когда сервер остановлен и активные запросы завершены.
func (h *HTTPServer) Done() <-chan struct{} { return h.done }
