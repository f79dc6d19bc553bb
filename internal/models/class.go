package models

import "time"

type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Term      *string   `db:"term" json:"term"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Subject struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Student struct {
	ID         int64     `db:"id" json:"id"`
	ClassID    int64     `db:"class_id" json:"class_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Identifier string    `db:"student_identifier" json:"student_identifier"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FullName: "Фамилия Имя", как в списках журнала.
func (s Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.LastName + " " + s.FirstName
}

// DefaultIdentifier: идентификатор по умолчанию "Фамилия, Имя".
func DefaultIdentifier(first, last string) string {
	return last + ", " + first
}
