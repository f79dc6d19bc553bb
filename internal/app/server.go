// Package app содержит HTTP API журнала.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/auth"
	"github.com/Carsk101/acutea/internal/ctxutil"
	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/gradebook"
	"github.com/Carsk101/acutea/internal/metrics"
	"github.com/Carsk101/acutea/internal/notify"
	"github.com/Carsk101/acutea/internal/observability"
	"github.com/Carsk101/acutea/internal/screens"
)

// Store: всё, что API читает и пишет напрямую.
type Store interface {
	gradebook.Repository
	Ping(ctx context.Context) error
}

type Server struct {
	store Store
	auth  *auth.Provider
	book  *gradebook.Service
	sink  notify.Sink
	log   *zap.Logger
	loc   *time.Location
}

type Option func(*Server)

// WithLocation: часовой пояс школы для выгрузок.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) { s.loc = loc }
}

// NewServer: sink получает копию всех уведомлений (лог, телеграм), помимо ответа клиенту.
func NewServer(store Store, authp *auth.Provider, book *gradebook.Service, sink notify.Sink, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = notify.Nop{}
	}
	s := &Server{store: store, auth: authp, book: book, sink: sink, log: log, loc: time.UTC}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signout", s.handleSignOut)
		r.Get("/auth/session", s.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/classes", s.handleListClasses)
			r.Post("/classes", s.handleCreateClass)
			r.Get("/classes/{id}", s.handleGetClass)
			r.Put("/classes/{id}", s.handleUpdateClass)
			r.Delete("/classes/{id}", s.handleDeleteClass)
			r.Get("/classes/{id}/students", s.handleListStudents)

			r.Get("/subjects", s.handleListSubjects)
			r.Post("/subjects", s.handleCreateSubject)
			r.Put("/subjects/{id}", s.handleUpdateSubject)
			r.Delete("/subjects/{id}", s.handleDeleteSubject)

			r.Post("/students", s.handleCreateStudent)
			r.Put("/students/{id}", s.handleUpdateStudent)
			r.Delete("/students/{id}", s.handleDeleteStudent)

			r.Get("/categories", s.handleListCategories)
			r.Get("/categories/status", s.handleCategoriesStatus)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{id}", s.handleUpdateCategory)
			r.Put("/categories/{id}/weight", s.handleUpdateCategoryWeight)
			r.Delete("/categories/{id}", s.handleDeleteCategory)

			r.Get("/assignments", s.handleListAssignments)
			r.Post("/assignments", s.handleCreateAssignment)
			r.Put("/assignments/{id}", s.handleUpdateAssignment)
			r.Put("/assignments/{id}/weight", s.handleUpdateAssignmentWeight)
			r.Delete("/assignments/{id}", s.handleDeleteAssignment)

			r.Put("/grades", s.handleSaveGrade)
			r.Put("/grades/fill", s.handleFillGrades)

			r.Get("/grading", s.handleGrading)
			r.Get("/student-grades", s.handleStudentGrades)
			r.Get("/student-grades/export", s.handleExport)
			r.Get("/dashboard", s.handleDashboard)
		})
	})
	return r
}

// ---- middleware

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// observe пишет метрики и лог запроса; маршрут берётся из шаблона chi, а не из URL.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = ctxutil.WithRequestID(ctx, id)
		}
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		route := "unknown"
		if rc := chi.RouteContext(ctx); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		d := time.Since(start)
		metrics.ObserveRequest(route, sw.code, d)
		s.log.Debug("http",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("code", sw.code),
			zap.Duration("took", d),
			zap.String("request_id", middleware.GetReqID(ctx)),
		)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		sess, err := s.auth.Current(r.Context(), token)
		if err != nil {
			s.fail(w, r, err, nil)
			return
		}
		ctx := ctxutil.WithUserID(r.Context(), sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ---- responses

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error   string          `json:"error"`
	Field   string          `json:"field,omitempty"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, body)
}

type writeResult struct {
	Data    any             `json:"data"`
	Notices []notify.Notice `json:"notices"`
}

// request собирает уведомления одного запроса для ответа клиенту и общего получателя.
type request struct {
	notices *notify.Collector
	sink    notify.Sink
}

func (s *Server) newRequest() request {
	c := &notify.Collector{}
	return request{notices: c, sink: notify.Multi{c, s.sink}}
}

func (rq request) ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, writeResult{Data: data, Notices: rq.notices.Notices()})
}

func statusOf(err error) int {
	var ve *gradebook.ValidationError
	var inUse *db.CategoryInUseError
	var exceeded *db.WeightExceededError
	var over *db.GradesOverMaxError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, gradebook.ErrInvalid),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, db.ErrCheck),
		errors.Is(err, db.ErrCategoryMove),
		errors.Is(err, screens.ErrNoClass),
		errors.Is(err, screens.ErrNoSubject),
		errors.Is(err, screens.ErrNoCategory),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &inUse), errors.As(err, &exceeded), errors.As(err, &over),
		errors.Is(err, db.ErrConflict), errors.Is(err, db.ErrReferenced),
		errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail отвечает ошибкой. Неожиданные ошибки уходят в Sentry и метрики, клиент видит общий текст.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, rq *request) {
	code := statusOf(err)
	body := errorBody{Error: err.Error()}
	var ve *gradebook.ValidationError
	if errors.As(err, &ve) {
		body.Error, body.Field = ve.Message, ve.Field
	}
	if code == http.StatusInternalServerError {
		metrics.HandlerErrors.Inc()
		ctx := ctxutil.WithOp(r.Context(), r.Method+" "+r.URL.Path)
		observability.CaptureErrCtx(ctx, err)
		s.log.Error("http: ошибка обработчика", zap.String("path", r.URL.Path), zap.Error(err))
		body.Error = "внутренняя ошибка сервера"
	}
	if rq != nil {
		body.Notices = rq.notices.Notices()
	}
	writeError(w, code, body)
}

// ---- request parsing

var errBadRequest = errors.New("некорректный запрос")

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id должен быть положительным числом", errBadRequest)
	}
	return id, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s должен быть положительным числом", errBadRequest, name)
	}
	return id, nil
}

// classSubject: обязательные class_id и subject_id из query.
func classSubject(r *http.Request) (int64, int64, error) {
	classID, err := queryID(r, "class_id")
	if err != nil {
		return 0, 0, err
	}
	subjectID, err := queryID(r, "subject_id")
	if err != nil {
		return 0, 0, err
	}
	return classID, subjectID, nil
}

// ---- health

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}
