package dto

import (
	"time"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
// DueDate is optional RFC3339; absent means no deadline. AttemptsAllowed must
// be a positive integer when present; zero is rejected rather than silently
// interpreted as unlimited.
type AssignmentCreateRequest struct {
	ClassID         uint     `json:"class_id" validate:"required"`
	TestID          uint     `json:"test_id" validate:"required"`
	Title           string   `json:"title" validate:"required,min=3"`
	DueDate         *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AttemptsAllowed *int     `json:"attempts_allowed" validate:"omitempty,gt=0"`
	MaxScore        *float64 `json:"max_score" validate:"omitempty,gt=0"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID              uint       `json:"id"`
	ClassID         uint       `json:"class_id"`
	TestID          uint       `json:"test_id"`
	TeacherID       uint       `json:"teacher_id"`
	Title           string     `json:"title"`
	DueDate         *time.Time `json:"due_date"`
	AttemptsAllowed *int       `json:"attempts_allowed"`
	MaxScore        float64    `json:"max_score"`
	Archived        bool       `json:"archived"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:              model.ID,
		ClassID:         model.ClassID,
		TestID:          model.TestID,
		TeacherID:       model.TeacherID,
		Title:           model.Title,
		DueDate:         model.DueDate,
		AttemptsAllowed: model.AttemptsAllowed,
		MaxScore:        model.MaxScore,
		Archived:        model.Archived,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
