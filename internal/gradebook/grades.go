package gradebook

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/ctxutil"
	"github.com/Carsk101/acutea/internal/metrics"
	"github.com/Carsk101/acutea/internal/models"
	"github.com/Carsk101/acutea/internal/notify"
)

// checkPoints: nil допустим (снять оценку), иначе конечное число от 0 до max_points.
func checkPoints(a *models.Assignment, points *float64) error {
	if points == nil {
		return nil
	}
	p := *points
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return invalid("points_earned", "Invalid grade value")
	}
	if a.MaxPoints != nil && p > *a.MaxPoints {
		return invalid("points_earned", "Points cannot exceed max points (%g)", *a.MaxPoints)
	}
	return nil
}

func grader(ctx context.Context) *int64 {
	if uid, ok := ctxutil.UserID(ctx); ok {
		return &uid
	}
	return nil
}

// SaveGrade записывает оценку ученика за работу. points == nil снимает оценку:
// работа снова "не оценена" и не входит в средние. Возвращает nil в этом случае.
func (s *Service) SaveGrade(ctx context.Context, sink notify.Sink, studentID, assignmentID int64, points *float64) (*models.Grade, error) {
	a, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if st.ClassID != a.ClassID {
		return nil, invalid("student_id", "student is not in the assignment's class")
	}
	if err := checkPoints(a, points); err != nil {
		return nil, err
	}

	if points == nil {
		if err := s.repo.DeleteGrade(ctx, studentID, assignmentID); err != nil {
			return nil, err
		}
		metrics.GradeWrites.WithLabelValues("clear").Inc()
		say(ctx, sink, notify.Info, "Grade cleared")
		return nil, nil
	}

	g, err := s.repo.UpsertGrade(ctx, models.Grade{
		StudentID:    studentID,
		AssignmentID: assignmentID,
		PointsEarned: *points,
		GraderID:     grader(ctx),
	})
	if err != nil {
		return nil, err
	}
	metrics.GradeWrites.WithLabelValues("save").Inc()
	say(ctx, sink, notify.Info, "Saved")
	return &g, nil
}

// FillGrades ставит одно значение (или снимает оценку при nil) всем ученикам класса
// за работу. Возвращает число затронутых учеников.
func (s *Service) FillGrades(ctx context.Context, sink notify.Sink, classID, assignmentID int64, points *float64) (int, error) {
	a, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	if a.ClassID != classID {
		return 0, invalid("class_id", "assignment does not belong to this class")
	}
	if err := checkPoints(a, points); err != nil {
		return 0, err
	}
	students, err := s.repo.ListStudents(ctx, classID)
	if err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, nil
	}

	if points == nil {
		ids := make([]int64, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}
		n, err := s.repo.DeleteGrades(ctx, assignmentID, ids)
		if err != nil {
			return 0, err
		}
		metrics.GradeWrites.WithLabelValues("clear").Add(float64(n))
		say(ctx, sink, notify.Info, "Grades cleared")
		return int(n), nil
	}

	gid := grader(ctx)
	batch := make([]models.Grade, 0, len(students))
	for _, st := range students {
		batch = append(batch, models.Grade{
			StudentID:    st.ID,
			AssignmentID: assignmentID,
			PointsEarned: *points,
			GraderID:     gid,
		})
	}
	saved, err := s.repo.UpsertGrades(ctx, batch)
	if err != nil {
		s.log.Warn("не удалось сохранить оценки классу", zap.Int64("class_id", classID), zap.Int64("assignment_id", assignmentID), zap.Error(err))
		say(ctx, sink, notify.Error, "Failed to save some grades")
		return 0, err
	}
	metrics.GradeWrites.WithLabelValues("fill").Add(float64(len(saved)))
	say(ctx, sink, notify.Success, "All grades saved")
	return len(saved), nil
}
