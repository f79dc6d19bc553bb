package app

import (
	"net/http"

	"github.com/Carsk101/acutea/internal/gradebook"
)

type weightInput struct {
	Weight *float64 `json:"weight"`
}

// ---- classes

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	out, err := s.book.ListClasses(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	c, err := s.book.GetClass(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in gradebook.ClassInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	c, err := s.book.CreateClass(r.Context(), rq.sink, in)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in gradebook.ClassInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.UpdateClass(r.Context(), rq.sink, id, in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.DeleteClass(r.Context(), rq.sink, id); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

// ---- subjects

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	out, err := s.book.ListSubjects(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in gradebook.SubjectInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	sub, err := s.book.CreateSubject(r.Context(), rq.sink, in)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusCreated, sub)
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in gradebook.SubjectInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.UpdateSubject(r.Context(), rq.sink, id, in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.DeleteSubject(r.Context(), rq.sink, id); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

// ---- students

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	out, err := s.book.ListStudents(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in gradebook.StudentInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	st, err := s.book.CreateStudent(r.Context(), rq.sink, in)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in gradebook.StudentInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.UpdateStudent(r.Context(), rq.sink, id, in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.DeleteStudent(r.Context(), rq.sink, id); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

// ---- categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	classID, subjectID, err := classSubject(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	cats, _, err := s.book.ListCategories(r.Context(), classID, subjectID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in gradebook.CategoryInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	c, st, err := s.book.CreateCategory(r.Context(), rq.sink, in)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusCreated, map[string]any{"category": c, "weights": st})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in gradebook.CategoryInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	st, err := s.book.UpdateCategory(r.Context(), rq.sink, id, in)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, map[string]any{"weights": st})
}

func (s *Server) handleUpdateCategoryWeight(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in weightInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if in.Weight == nil {
		s.fail(w, r, &gradebook.ValidationError{Field: "weight", Message: "this field is required"}, &rq)
		return
	}
	st, err := s.book.UpdateCategoryWeight(r.Context(), rq.sink, id, *in.Weight)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, map[string]any{"weights": st})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.DeleteCategory(r.Context(), rq.sink, id); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

// ---- assignments

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	classID, subjectID, err := classSubject(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	out, err := s.book.ListAssignments(r.Context(), classID, subjectID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	var in gradebook.AssignmentInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	a, err := s.book.CreateAssignment(r.Context(), rq.sink, in)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in gradebook.AssignmentInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.UpdateAssignment(r.Context(), rq.sink, id, in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateAssignmentWeight(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	var in weightInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if in.Weight == nil {
		s.fail(w, r, &gradebook.ValidationError{Field: "weight", Message: "this field is required"}, &rq)
		return
	}
	if err := s.book.UpdateAssignmentWeight(r.Context(), rq.sink, id, *in.Weight); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	rq := s.newRequest()
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	if err := s.book.DeleteAssignment(r.Context(), rq.sink, id); err != nil {
		s.fail(w, r, err, &rq)
		return
	}
	rq.ok(w, http.StatusOK, nil)
}
