// Package memstore: хранилище журнала в памяти для юнит-тестов.
// Повторяет ограничения и ошибки пакета db.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/grading"
	"github.com/Carsk101/acutea/internal/models"
)

type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	classes     map[int64]models.Class
	subjects    map[int64]models.Subject
	students    map[int64]models.Student
	categories  map[int64]models.Category
	assignments map[int64]models.Assignment
	grades      map[grading.Key]models.Grade
	users       map[int64]models.User
	sessions    map[string]models.Session

	// Fail, если задан, возвращается любым методом. Для проверки обработки ошибок.
	Fail error
}

func New() *Store {
	return &Store{
		now:         time.Now,
		classes:     map[int64]models.Class{},
		subjects:    map[int64]models.Subject{},
		students:    map[int64]models.Student{},
		categories:  map[int64]models.Category{},
		assignments: map[int64]models.Assignment{},
		grades:      map[grading.Key]models.Grade{},
		users:       map[int64]models.User{},
		sessions:    map[string]models.Session{},
	}
}

func (s *Store) id() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Ping(ctx context.Context) error { return s.Fail }

// ---- classes

func (s *Store) ListClasses(ctx context.Context) ([]models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	c, ok := s.classes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateClass(ctx context.Context, c models.Class) (models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.Class{}, s.Fail
	}
	c.ID, c.CreatedAt = s.id(), s.now()
	s.classes[c.ID] = c
	return c, nil
}

func (s *Store) UpdateClass(ctx context.Context, c models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	old, ok := s.classes[c.ID]
	if !ok {
		return db.ErrNotFound
	}
	old.Name, old.Term = c.Name, c.Term
	s.classes[c.ID] = old
	return nil
}

func (s *Store) DeleteClass(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.classes[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.classes, id)
	for sid, st := range s.students {
		if st.ClassID == id {
			s.deleteStudent(sid)
		}
	}
	for aid, a := range s.assignments {
		if a.ClassID == id {
			s.deleteAssignment(aid)
		}
	}
	for cid, c := range s.categories {
		if c.ClassID == id {
			delete(s.categories, cid)
		}
	}
	return nil
}

// ---- subjects

func (s *Store) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]models.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	sub, ok := s.subjects[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &sub, nil
}

func (s *Store) CreateSubject(ctx context.Context, sub models.Subject) (models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.Subject{}, s.Fail
	}
	sub.ID, sub.CreatedAt = s.id(), s.now()
	s.subjects[sub.ID] = sub
	return sub, nil
}

func (s *Store) UpdateSubject(ctx context.Context, sub models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	old, ok := s.subjects[sub.ID]
	if !ok {
		return db.ErrNotFound
	}
	old.Name = sub.Name
	s.subjects[sub.ID] = old
	return nil
}

func (s *Store) DeleteSubject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.subjects[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.subjects, id)
	for aid, a := range s.assignments {
		if a.SubjectID == id {
			s.deleteAssignment(aid)
		}
	}
	for cid, c := range s.categories {
		if c.SubjectID == id {
			delete(s.categories, cid)
		}
	}
	return nil
}

// ---- students

func (s *Store) ListStudents(ctx context.Context, classID int64) ([]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := []models.Student{}
	for _, st := range s.students {
		if st.ClassID == classID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	st, ok := s.students[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &st, nil
}

func (s *Store) CreateStudent(ctx context.Context, st models.Student) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.Student{}, s.Fail
	}
	if _, ok := s.classes[st.ClassID]; !ok {
		return models.Student{}, fmt.Errorf("%w: students_class_id_fkey", db.ErrReferenced)
	}
	st.ID, st.CreatedAt = s.id(), s.now()
	s.students[st.ID] = st
	return st, nil
}

func (s *Store) UpdateStudent(ctx context.Context, st models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	old, ok := s.students[st.ID]
	if !ok {
		return db.ErrNotFound
	}
	old.FirstName, old.LastName, old.Identifier = st.FirstName, st.LastName, st.Identifier
	s.students[st.ID] = old
	return nil
}

func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.students[id]; !ok {
		return db.ErrNotFound
	}
	s.deleteStudent(id)
	return nil
}

func (s *Store) deleteStudent(id int64) {
	delete(s.students, id)
	for k := range s.grades {
		if k.StudentID == id {
			delete(s.grades, k)
		}
	}
}

// ---- categories

func (s *Store) ListCategories(ctx context.Context, classID, subjectID int64) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := []models.Category{}
	for _, c := range s.categories {
		if c.ClassID == classID && c.SubjectID == subjectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	c, ok := s.categories[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (s *Store) categoryTotal(classID, subjectID, exceptID int64) float64 {
	var total float64
	for _, c := range s.categories {
		if c.ClassID == classID && c.SubjectID == subjectID && c.ID != exceptID {
			total += c.Weight
		}
	}
	return total
}

func (s *Store) CreateCategory(ctx context.Context, c models.Category) (models.Category, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.Category{}, 0, s.Fail
	}
	if _, ok := s.classes[c.ClassID]; !ok {
		return models.Category{}, 0, db.ErrNotFound
	}
	if _, ok := s.subjects[c.SubjectID]; !ok {
		return models.Category{}, 0, fmt.Errorf("%w: categories_subject_id_fkey", db.ErrReferenced)
	}
	total := s.categoryTotal(c.ClassID, c.SubjectID, 0)
	if !grading.Fits(total, c.Weight) {
		return models.Category{}, total, &db.WeightExceededError{Total: total, Adding: c.Weight}
	}
	c.ID, c.CreatedAt = s.id(), s.now()
	s.categories[c.ID] = c
	return c, total + c.Weight, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c models.Category) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	old, ok := s.categories[c.ID]
	if !ok {
		return 0, db.ErrNotFound
	}
	others := s.categoryTotal(old.ClassID, old.SubjectID, c.ID)
	if !grading.Fits(others, c.Weight) {
		return others, &db.WeightExceededError{Total: others, Adding: c.Weight}
	}
	old.Name, old.Type, old.Weight = c.Name, c.Type, c.Weight
	s.categories[c.ID] = old
	return others + c.Weight, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	n := 0
	for _, a := range s.assignments {
		if a.CategoryID == id {
			n++
		}
	}
	if n > 0 {
		return &db.CategoryInUseError{Assignments: n}
	}
	if _, ok := s.categories[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// ---- assignments

func (s *Store) ListAssignments(ctx context.Context, classID, subjectID int64) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := []models.Assignment{}
	for _, a := range s.assignments {
		if a.ClassID == classID && a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	a, ok := s.assignments[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (s *Store) assignmentTotal(categoryID, exceptID int64) float64 {
	var total float64
	for _, a := range s.assignments {
		if a.CategoryID == categoryID && a.ID != exceptID {
			total += a.Weight
		}
	}
	return total
}

func (s *Store) CreateAssignment(ctx context.Context, a models.Assignment) (models.Assignment, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.Assignment{}, 0, s.Fail
	}
	cat, ok := s.categories[a.CategoryID]
	if !ok {
		return models.Assignment{}, 0, db.ErrNotFound
	}
	total := s.assignmentTotal(a.CategoryID, 0)
	if !grading.Fits(total, a.Weight) {
		return models.Assignment{}, total, &db.WeightExceededError{Total: total, Adding: a.Weight}
	}
	a.ClassID, a.SubjectID = cat.ClassID, cat.SubjectID
	a.ID, a.CreatedAt = s.id(), s.now()
	s.assignments[a.ID] = a
	return a, total + a.Weight, nil
}

func (s *Store) UpdateAssignment(ctx context.Context, a models.Assignment) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	cat, ok := s.categories[a.CategoryID]
	if !ok {
		return 0, db.ErrNotFound
	}
	old, ok := s.assignments[a.ID]
	if !ok {
		return 0, db.ErrNotFound
	}
	others := s.assignmentTotal(a.CategoryID, a.ID)
	if !grading.Fits(others, a.Weight) {
		return others, &db.WeightExceededError{Total: others, Adding: a.Weight}
	}
	if old.ClassID != cat.ClassID || old.SubjectID != cat.SubjectID {
		return 0, db.ErrCategoryMove
	}
	if a.MaxPoints != nil {
		over := 0
		for k, g := range s.grades {
			if k.AssignmentID == a.ID && g.PointsEarned > *a.MaxPoints {
				over++
			}
		}
		if over > 0 {
			return 0, &db.GradesOverMaxError{Count: over, Max: *a.MaxPoints}
		}
	}
	a.ClassID, a.SubjectID, a.CreatedAt = cat.ClassID, cat.SubjectID, old.CreatedAt
	s.assignments[a.ID] = a
	return others + a.Weight, nil
}

func (s *Store) DeleteAssignment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.assignments[id]; !ok {
		return db.ErrNotFound
	}
	s.deleteAssignment(id)
	return nil
}

func (s *Store) deleteAssignment(id int64) {
	delete(s.assignments, id)
	for k := range s.grades {
		if k.AssignmentID == id {
			delete(s.grades, k)
		}
	}
}

// ---- grades

func (s *Store) ListGrades(ctx context.Context, studentIDs, assignmentIDs []int64) ([]models.Grade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := []models.Grade{}
	for _, sid := range studentIDs {
		for _, aid := range assignmentIDs {
			if g, ok := s.grades[grading.Key{StudentID: sid, AssignmentID: aid}]; ok {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (s *Store) upsert(g models.Grade) (models.Grade, error) {
	if g.PointsEarned < 0 {
		return models.Grade{}, fmt.Errorf("%w: grades_points_earned_check", db.ErrCheck)
	}
	if _, ok := s.students[g.StudentID]; !ok {
		return models.Grade{}, fmt.Errorf("%w: grades_student_id_fkey", db.ErrReferenced)
	}
	if _, ok := s.assignments[g.AssignmentID]; !ok {
		return models.Grade{}, fmt.Errorf("%w: grades_assignment_id_fkey", db.ErrReferenced)
	}
	k := grading.Key{StudentID: g.StudentID, AssignmentID: g.AssignmentID}
	if old, ok := s.grades[k]; ok {
		g.ID = old.ID
	} else {
		g.ID = s.id()
	}
	g.UpdatedAt = s.now()
	s.grades[k] = g
	return g, nil
}

func (s *Store) UpsertGrade(ctx context.Context, g models.Grade) (models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.Grade{}, s.Fail
	}
	return s.upsert(g)
}

func (s *Store) UpsertGrades(ctx context.Context, grades []models.Grade) ([]models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	backup := make(map[grading.Key]models.Grade, len(s.grades))
	for k, v := range s.grades {
		backup[k] = v
	}
	out := make([]models.Grade, 0, len(grades))
	for _, g := range grades {
		saved, err := s.upsert(g)
		if err != nil {
			s.grades = backup
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (s *Store) DeleteGrade(ctx context.Context, studentID, assignmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	delete(s.grades, grading.Key{StudentID: studentID, AssignmentID: assignmentID})
	return nil
}

func (s *Store) DeleteGrades(ctx context.Context, assignmentID int64, studentIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for _, sid := range studentIDs {
		k := grading.Key{StudentID: sid, AssignmentID: assignmentID}
		if _, ok := s.grades[k]; ok {
			delete(s.grades, k)
			n++
		}
	}
	return n, nil
}

// ---- dashboard and audit

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return models.Stats{}, s.Fail
	}
	st := models.Stats{
		Classes:     len(s.classes),
		Students:    len(s.students),
		Assignments: len(s.assignments),
		Categories:  len(s.categories),
	}
	var sum float64
	var n int
	graded := map[int64]struct{}{}
	for _, g := range s.grades {
		graded[g.AssignmentID] = struct{}{}
		if g.PointsEarned > 0 {
			sum += g.PointsEarned
			n++
		}
	}
	if n > 0 {
		st.AvgGrade = sum / float64(n)
	}
	st.GradedAssignments = len(graded)
	return st, nil
}

func (s *Store) WeightTotals(ctx context.Context) ([]models.WeightTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	type pair struct{ class, subject int64 }
	byPair := map[pair]*models.WeightTotal{}
	for _, c := range s.categories {
		p := pair{c.ClassID, c.SubjectID}
		wt, ok := byPair[p]
		if !ok {
			wt = &models.WeightTotal{
				ClassID: c.ClassID, ClassName: s.classes[c.ClassID].Name,
				SubjectID: c.SubjectID, SubjectName: s.subjects[c.SubjectID].Name,
			}
			byPair[p] = wt
		}
		wt.Total += c.Weight
		wt.Count++
	}
	out := make([]models.WeightTotal, 0, len(byPair))
	for _, wt := range byPair {
		out = append(out, *wt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassName != out[j].ClassName {
			return out[i].ClassName < out[j].ClassName
		}
		return out[i].SubjectName < out[j].SubjectName
	})
	return out, nil
}

// ---- users and sessions

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return models.User{}, s.Fail
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, fmt.Errorf("%w: users_email_key", db.ErrConflict)
		}
	}
	u := models.User{ID: s.id(), Email: email, PasswordHash: passwordHash, CreatedAt: s.now()}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.users[sess.UserID]; !ok {
		return fmt.Errorf("%w: sessions_user_id_fkey", db.ErrReferenced)
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	sess, ok := s.sessions[token]
	if !ok {
		return nil, db.ErrNotFound
	}
	sess.Email = s.users[sess.UserID].Email
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for tok, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(s.sessions, tok)
			n++
		}
	}
	return n, nil
}

// SessionCount: для проверок в тестах.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
