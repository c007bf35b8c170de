package models

import "time"

// TestResult is one historical start-to-submit cycle against a standard test
// assignment. Result rows outlive progress resets and are removed only by the
// cascading deletion of their parent assignment.
type TestResult struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	Score        float64   `gorm:"not null" json:"score"`
	Total        float64   `gorm:"not null" json:"total"`
	CreatedAt    time.Time `json:"created_at"`
}

// GameResult is one game-based practice run referencing an assignment.
// The scoring mechanics live in the game subsystem; this model exists so the
// assignment cascade can remove dependent rows atomically.
type GameResult struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	Score        float64   `gorm:"not null" json:"score"`
	BestStreak   int       `gorm:"not null;default:0" json:"best_streak"`
	CreatedAt    time.Time `json:"created_at"`
}
