package models

import "time"

// Class is the roster subsystem's view of a class: an owning teacher plus a
// member set. Only the fields this service consumes are mapped.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	Archived  bool      `gorm:"not null;default:false" json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClassMember links a student to a class.
type ClassMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_class_member" json:"class_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_class_member" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
