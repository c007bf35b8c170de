package models

import "time"

// Assignment binds one test to one class, owned by the teacher of that class.
type Assignment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ClassID         uint       `gorm:"not null;index" json:"class_id"`
	TestID          uint       `gorm:"not null" json:"test_id"`
	TeacherID       uint       `gorm:"not null" json:"teacher_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	DueDate         *time.Time `json:"due_date"`
	AttemptsAllowed *int       `json:"attempts_allowed"`
	MaxScore        float64    `gorm:"not null;default:100" json:"max_score"`
	Archived        bool       `gorm:"not null;default:false" json:"archived"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsPastDue returns true when the assignment has a deadline and it has already
// passed at the reference instant. Assignments without a due date never expire.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}

// HasAttemptLimit reports whether the assignment caps the number of attempts.
// A nil limit means unlimited; zero is rejected at creation time.
func (a Assignment) HasAttemptLimit() bool {
	return a.AttemptsAllowed != nil
}
