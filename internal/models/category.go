package models

import "time"

type CategoryType string

const (
	CategoryExams         CategoryType = "Exams"
	CategoryQuizzes       CategoryType = "Quizzes"
	CategoryAssignments   CategoryType = "Assignments"
	CategoryParticipation CategoryType = "Participation"
	CategoryProjects      CategoryType = "Projects"
	CategoryOther         CategoryType = "Other"
)

// Category: оценочная категория предмета в классе. Weight задан в процентах (0–100).
type Category struct {
	ID        int64        `db:"id" json:"id"`
	ClassID   int64        `db:"class_id" json:"class_id"`
	SubjectID int64        `db:"subject_id" json:"subject_id"`
	Name      string       `db:"name" json:"name"`
	Type      CategoryType `db:"type" json:"type"`
	Weight    float64      `db:"weight" json:"weight"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Assignment: работа внутри категории. Weight задаёт вес внутри категории (0–100).
type Assignment struct {
	ID         int64      `db:"id" json:"id"`
	ClassID    int64      `db:"class_id" json:"class_id"`
	SubjectID  int64      `db:"subject_id" json:"subject_id"`
	CategoryID int64      `db:"category_id" json:"category_id"`
	Title      string     `db:"title" json:"title"`
	MaxPoints  *float64   `db:"max_points" json:"max_points"`
	Weight     float64    `db:"weight" json:"weight"`
	DueAt      *time.Time `db:"due_at" json:"due_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
