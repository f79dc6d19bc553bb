package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Carsk101/acutea/internal/auth"
	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/gradebook"
	"github.com/Carsk101/acutea/internal/notify"
	"github.com/Carsk101/acutea/internal/testutil/memstore"
)

type apiEnv struct {
	t     *testing.T
	srv   *httptest.Server
	store *memstore.Store
	ops   *notify.Collector
	token string
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	st := memstore.New()
	ops := &notify.Collector{}
	ap := auth.NewProvider(st, nil, auth.WithBcryptCost(bcrypt.MinCost))
	s := NewServer(st, ap, gradebook.NewService(st, nil), ops, nil)
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return &apiEnv{t: t, srv: srv, store: st, ops: ops}
}

func (e *apiEnv) do(method, path string, body any) (*http.Response, []byte) {
	e.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		e.t.Fatal(err)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

// call ожидает код want и разбирает ответ в out (если не nil).
func (e *apiEnv) call(method, path string, body any, want int, out any) []byte {
	e.t.Helper()
	resp, raw := e.do(method, path, body)
	if resp.StatusCode != want {
		e.t.Fatalf("%s %s: код %d, ожидали %d; тело: %s", method, path, resp.StatusCode, want, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			e.t.Fatalf("%s %s: разбор ответа: %v; тело: %s", method, path, err, raw)
		}
	}
	return raw
}

func (e *apiEnv) signUp() {
	e.t.Helper()
	var s sessionResponse
	e.call("POST", "/api/auth/signup", map[string]string{"email": "teacher@example.com", "password": "secret1"}, http.StatusCreated, &s)
	if s.Token == "" {
		e.t.Fatal("пустой токен")
	}
	e.token = s.Token
}

type idResult struct {
	Data struct {
		ID int64 `json:"id"`
	} `json:"data"`
	Notices []notify.Notice `json:"notices"`
}

type categoryResult struct {
	Data struct {
		Category struct {
			ID int64 `json:"id"`
		} `json:"category"`
	} `json:"data"`
	Notices []notify.Notice `json:"notices"`
}

func TestAuthGate(t *testing.T) {
	e := newAPI(t)

	e.call("GET", "/api/classes", nil, http.StatusUnauthorized, nil)
	e.call("GET", "/api/auth/session", nil, http.StatusUnauthorized, nil)

	e.call("POST", "/api/auth/signup", map[string]string{"email": "bad", "password": "secret1"}, http.StatusBadRequest, nil)
	e.signUp()
	e.call("POST", "/api/auth/signup", map[string]string{"email": "teacher@example.com", "password": "secret1"}, http.StatusConflict, nil)

	var sess sessionResponse
	e.call("GET", "/api/auth/session", nil, http.StatusOK, &sess)
	if sess.Email != "teacher@example.com" {
		t.Fatalf("сессия: %+v", sess)
	}
	e.call("GET", "/api/classes", nil, http.StatusOK, nil)

	e.call("POST", "/api/auth/signout", nil, http.StatusNoContent, nil)
	e.call("GET", "/api/classes", nil, http.StatusUnauthorized, nil)

	e.token = ""
	e.call("POST", "/api/auth/signin", map[string]string{"email": "teacher@example.com", "password": "wrong!!"}, http.StatusUnauthorized, nil)
	var s2 sessionResponse
	e.call("POST", "/api/auth/signin", map[string]string{"email": "teacher@example.com", "password": "secret1"}, http.StatusOK, &s2)
	e.token = s2.Token
	e.call("GET", "/api/dashboard", nil, http.StatusOK, nil)
}

func TestGradebookFlow(t *testing.T) {
	e := newAPI(t)
	e.signUp()

	var cl, sub idResult
	e.call("POST", "/api/classes", map[string]any{"name": "7А", "term": "2024/25"}, http.StatusCreated, &cl)
	if len(cl.Notices) != 1 || cl.Notices[0].Message != "Class added" {
		t.Fatalf("уведомления класса: %+v", cl.Notices)
	}
	e.call("POST", "/api/subjects", map[string]any{"name": "Алгебра"}, http.StatusCreated, &sub)

	var ann, bob idResult
	e.call("POST", "/api/students", map[string]any{"class_id": cl.Data.ID, "first_name": "Анна", "last_name": "Антонова"}, http.StatusCreated, &ann)
	e.call("POST", "/api/students", map[string]any{"class_id": cl.Data.ID, "first_name": "Борис", "last_name": "Борисов"}, http.StatusCreated, &bob)

	var exams, quizzes categoryResult
	e.call("POST", "/api/categories", map[string]any{"class_id": cl.Data.ID, "subject_id": sub.Data.ID, "name": "Экзамены", "type": "Exams", "weight": 60}, http.StatusCreated, &exams)
	if len(exams.Notices) != 1 || exams.Notices[0].Level != notify.Info {
		t.Fatalf("уведомления категории: %+v", exams.Notices)
	}
	e.call("POST", "/api/categories", map[string]any{"class_id": cl.Data.ID, "subject_id": sub.Data.ID, "name": "Тесты", "type": "Quizzes", "weight": 40}, http.StatusCreated, &quizzes)
	if len(quizzes.Notices) != 1 || quizzes.Notices[0].Message != "Perfect! Categories now total exactly 100%" {
		t.Fatalf("уведомления категории: %+v", quizzes.Notices)
	}

	t.Run("weight_exceeded_is_conflict", func(t *testing.T) {
		e.call("POST", "/api/categories", map[string]any{"class_id": cl.Data.ID, "subject_id": sub.Data.ID, "name": "Лишняя", "weight": 5}, http.StatusConflict, nil)
	})

	t.Run("validation_error_has_field", func(t *testing.T) {
		var body errorBody
		e.call("POST", "/api/categories", map[string]any{"class_id": cl.Data.ID, "subject_id": sub.Data.ID, "name": "X", "weight": 0}, http.StatusBadRequest, &body)
		if body.Field != "weight" || body.Error != "Weight must be > 0" {
			t.Fatalf("ошибка: %+v", body)
		}
	})

	var exam, quiz idResult
	e.call("POST", "/api/assignments", map[string]any{"category_id": exams.Data.Category.ID, "title": "Экзамен", "max_points": 100, "weight": 100}, http.StatusCreated, &exam)
	e.call("POST", "/api/assignments", map[string]any{"category_id": quizzes.Data.Category.ID, "title": "Тест", "weight": 100}, http.StatusCreated, &quiz)

	e.call("PUT", "/api/grades", map[string]any{"student_id": ann.Data.ID, "assignment_id": exam.Data.ID, "points_earned": 85}, http.StatusOK, nil)
	e.call("PUT", "/api/grades", map[string]any{"student_id": ann.Data.ID, "assignment_id": quiz.Data.ID, "points_earned": 70}, http.StatusOK, nil)
	e.call("PUT", "/api/grades", map[string]any{"student_id": ann.Data.ID, "assignment_id": exam.Data.ID, "points_earned": 101}, http.StatusBadRequest, nil)
	e.call("PUT", "/api/grades", map[string]any{"student_id": ann.Data.ID, "assignment_id": 9999, "points_earned": 1}, http.StatusNotFound, nil)

	t.Run("assignment_stays_in_its_class", func(t *testing.T) {
		var other idResult
		var foreign categoryResult
		e.call("POST", "/api/classes", map[string]any{"name": "8Б"}, http.StatusCreated, &other)
		e.call("POST", "/api/categories", map[string]any{"class_id": other.Data.ID, "subject_id": sub.Data.ID, "name": "Экзамены", "type": "Exams", "weight": 100}, http.StatusCreated, &foreign)
		var body errorBody
		e.call("PUT", fmt.Sprintf("/api/assignments/%d", exam.Data.ID), map[string]any{"category_id": foreign.Data.Category.ID, "title": "Экзамен", "max_points": 100, "weight": 100}, http.StatusBadRequest, &body)
		if body.Field != "category_id" {
			t.Fatalf("ошибка: %+v", body)
		}
		e.call("PUT", fmt.Sprintf("/api/assignments/%d", exam.Data.ID), map[string]any{"category_id": exams.Data.Category.ID, "title": "Экзамен", "max_points": 50, "weight": 100}, http.StatusBadRequest, &body)
		if body.Field != "max_points" {
			t.Fatalf("ошибка: %+v", body)
		}
	})

	var report struct {
		Report struct {
			Rows []struct {
				Overall *float64 `json:"overall"`
				Letter  string   `json:"letter"`
			} `json:"rows"`
		} `json:"report"`
	}
	q := fmt.Sprintf("?class_id=%d&subject_id=%d", cl.Data.ID, sub.Data.ID)
	e.call("GET", "/api/student-grades"+q, nil, http.StatusOK, &report)
	rows := report.Report.Rows
	if len(rows) != 2 || rows[0].Overall == nil || *rows[0].Overall != 79 || rows[0].Letter != "B" {
		t.Fatalf("итоги Анны: %+v", rows)
	}
	if rows[1].Overall != nil || rows[1].Letter != "-" {
		t.Fatalf("у Бориса не должно быть итога: %+v", rows[1])
	}

	var grid struct {
		Category struct {
			ID int64 `json:"id"`
		} `json:"category"`
		Rows []struct {
			Cells []struct {
				Points *float64 `json:"points"`
			} `json:"cells"`
		} `json:"rows"`
	}
	e.call("GET", "/api/grading"+q+fmt.Sprintf("&category_id=%d", quizzes.Data.Category.ID), nil, http.StatusOK, &grid)
	if grid.Category.ID != quizzes.Data.Category.ID || len(grid.Rows) != 2 || *grid.Rows[0].Cells[0].Points != 70 || grid.Rows[1].Cells[0].Points != nil {
		t.Fatalf("таблица оценок: %+v", grid)
	}
	e.call("GET", "/api/grading"+q+"&category_id=424242", nil, http.StatusBadRequest, nil)
	e.call("GET", "/api/grading?class_id=abc", nil, http.StatusBadRequest, nil)

	t.Run("fill_and_clear", func(t *testing.T) {
		var res struct {
			Data struct {
				Updated int `json:"updated"`
			} `json:"data"`
		}
		e.call("PUT", "/api/grades/fill", map[string]any{"class_id": cl.Data.ID, "assignment_id": quiz.Data.ID, "points_earned": 50}, http.StatusOK, &res)
		if res.Data.Updated != 2 {
			t.Fatalf("заполнено: %d", res.Data.Updated)
		}
		e.call("PUT", "/api/grades", map[string]any{"student_id": bob.Data.ID, "assignment_id": quiz.Data.ID, "points_earned": nil}, http.StatusOK, nil)
		grades, _ := e.store.ListGrades(context.Background(), []int64{bob.Data.ID}, []int64{quiz.Data.ID})
		if len(grades) != 0 {
			t.Fatalf("оценка Бориса должна быть снята")
		}
	})

	t.Run("category_status", func(t *testing.T) {
		var v struct {
			Weights struct {
				Complete bool `json:"complete"`
			} `json:"weights"`
		}
		e.call("GET", "/api/categories/status"+q, nil, http.StatusOK, &v)
		if !v.Weights.Complete {
			t.Fatalf("веса должны быть полными")
		}
	})

	t.Run("export", func(t *testing.T) {
		resp, raw := e.do("GET", "/api/student-grades/export"+q, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("код %d: %s", resp.StatusCode, raw)
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
			t.Fatalf("Content-Type: %s", resp.Header.Get("Content-Type"))
		}
		if !strings.Contains(resp.Header.Get("Content-Disposition"), "Gradebook") || len(raw) == 0 {
			t.Fatalf("Content-Disposition: %s", resp.Header.Get("Content-Disposition"))
		}
	})

	t.Run("category_in_use", func(t *testing.T) {
		var body errorBody
		e.call("DELETE", fmt.Sprintf("/api/categories/%d", exams.Data.Category.ID), nil, http.StatusConflict, &body)
		if body.Error == "" {
			t.Fatal("ожидали текст ошибки")
		}
	})

	t.Run("update_weight", func(t *testing.T) {
		var res struct {
			Data struct {
				Weights struct {
					Total float64 `json:"total"`
				} `json:"weights"`
			} `json:"data"`
			Notices []notify.Notice `json:"notices"`
		}
		e.call("PUT", fmt.Sprintf("/api/categories/%d/weight", quizzes.Data.Category.ID), map[string]any{"weight": 30}, http.StatusOK, &res)
		if res.Data.Weights.Total != 90 || len(res.Notices) != 1 {
			t.Fatalf("ответ: %+v", res)
		}
		e.call("PUT", fmt.Sprintf("/api/categories/%d/weight", quizzes.Data.Category.ID), map[string]any{}, http.StatusBadRequest, nil)
	})

	if got := e.ops.Notices(); len(got) == 0 {
		t.Fatal("общий получатель должен видеть уведомления")
	}
}

func TestStoreFailureIs500(t *testing.T) {
	e := newAPI(t)
	e.signUp()

	e.call("GET", "/healthz", nil, http.StatusOK, nil)

	e.store.Fail = errors.New("db down")
	// сессию проверить уже нельзя: тоже 500, а не 401
	var body errorBody
	e.call("GET", "/api/classes", nil, http.StatusInternalServerError, &body)
	if strings.Contains(body.Error, "db down") {
		t.Fatalf("внутренние детали не должны уходить клиенту: %q", body.Error)
	}
	e.call("GET", "/healthz", nil, http.StatusServiceUnavailable, nil)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&gradebook.ValidationError{Field: "name", Message: "x"}, http.StatusBadRequest},
		{auth.ErrNoSession, http.StatusUnauthorized},
		{fmt.Errorf("wrap: %w", auth.ErrEmailTaken), http.StatusConflict},
		{fmt.Errorf("wrap: %w", db.ErrCategoryMove), http.StatusBadRequest},
		{&db.GradesOverMaxError{Count: 2, Max: 50}, http.StatusConflict},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusOf(tc.err); got != tc.want {
			t.Fatalf("statusOf(%v) = %d, ожидали %d", tc.err, got, tc.want)
		}
	}
}
