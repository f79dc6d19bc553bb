package app

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Carsk101/acutea/internal/export"
	"github.com/Carsk101/acutea/internal/gradebook"
	"github.com/Carsk101/acutea/internal/screens"
)

type gradeInput struct {
	StudentID    int64    `json:"student_id"`
	AssignmentID int64    `json:"assignment_id"`
	PointsEarned *float64 `json:"points_earned"`
}

type fillInput struct {
	ClassID      int64    `json:"class_id"`
	AssignmentID int64    `json:"assignment_id"`
	PointsEarned *float64 `json:"points_earned"`
}

// handleSaveGrade: points_earned = null снимает оценку.
func (s *Server) handleSaveGrade(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in gradeInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if in.StudentID <= 0 || in.AssignmentID <= 0 {
		s.fail(w, r, &gradebook.ValidationError{Field: "student_id", Message: "student_id and assignment_id are required"}, &rq)
		return
	}
	g, err := s.book.SaveGrade(r.Context(), rq.sink, in.StudentID, in.AssignmentID, in.PointsEarned)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, g)
}

func (s *Server) handleFillGrades(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in fillInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if in.ClassID <= 0 || in.AssignmentID <= 0 {
		s.fail(w, r, &gradebook.ValidationError{Field: "class_id", Message: "class_id and assignment_id are required"}, &rq)
		return
	}
	n, err := s.book.FillGrades(r.Context(), rq.sink, in.ClassID, in.AssignmentID, in.PointsEarned)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, map[string]int{"updated": n})
}

func (s *Server) handleGrading(w http.ResponseWriter, r *http.Request) {
	classID, subjectID, err := classSubject(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	sc := screens.NewGradingScreen(s.store)
	if err := sc.SelectClass(r.Context(), classID); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if err := sc.SelectSubject(r.Context(), subjectID); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if r.URL.Query().Get("category_id") != "" {
		catID, err := queryID(r, "category_id")
		if err != nil {
			s.fail(w, r, err, nil)
			return
		}
		if err := sc.SelectCategory(catID); err != nil {
			s.fail(w, r, err, nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, sc.View())
}

func (s *Server) loadStudentGrades(r *http.Request) (*screens.StudentGradesScreen, error) {
	classID, subjectID, err := classSubject(r)
	if err != nil {
		return nil, err
	}
	sc := screens.NewStudentGradesScreen(s.store)
	if err := sc.SelectClass(r.Context(), classID); err != nil {
		return nil, err
	}
	if err := sc.SelectSubject(r.Context(), subjectID); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Server) handleStudentGrades(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadStudentGrades(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sc.View())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loadStudentGrades(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	v := sc.View()
	raw, err := export.WriteGradebook(export.GradebookData{
		Class:       *v.Class,
		Subject:     *v.Subject,
		Categories:  v.Categories,
		Assignments: v.Assignments,
		Report:      v.Report,
		Scores:      sc.Scores(),
		Location:    s.loc,
	})
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	name := export.BuildGradebookFilename(v.Class.Name, v.Subject.Name)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleCategoriesStatus(w http.ResponseWriter, r *http.Request) {
	classID, subjectID, err := classSubject(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	sc := screens.NewCategoriesScreen(s.store)
	if err := sc.Load(r.Context(), classID, subjectID); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sc.View())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sc := screens.NewDashboardScreen(s.store)
	if err := sc.Load(r.Context()); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sc.View())
}
