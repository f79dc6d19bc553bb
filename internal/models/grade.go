package models

import "time"

// Grade: оценка ученика за работу. Отсутствие строки означает "не оценено",
// это не то же самое, что 0.
type Grade struct {
	ID           int64     `db:"id" json:"id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	AssignmentID int64     `db:"assignment_id" json:"assignment_id"`
	PointsEarned float64   `db:"points_earned" json:"points_earned"`
	GraderID     *int64    `db:"grader_id" json:"grader_id"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Stats struct {
	Classes           int     `json:"classes"`
	Students          int     `json:"students"`
	Assignments       int     `json:"assignments"`
	Categories        int     `json:"categories"`
	AvgGrade          float64 `json:"avg_grade"`
	GradedAssignments int     `json:"graded_assignments"`
}

// WeightTotal: сумма весов категорий предмета в классе.
type WeightTotal struct {
	ClassID     int64   `db:"class_id"`
	ClassName   string  `db:"class_name"`
	SubjectID   int64   `db:"subject_id"`
	SubjectName string  `db:"subject_name"`
	Total       float64 `db:"total"`
	Count       int     `db:"count"`
}
