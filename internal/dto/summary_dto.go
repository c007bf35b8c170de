package dto

// SummaryCounts is the rollup shape shared by assignment and class summaries.
// Submitted counts stored statuses submitted, graded and excused: handled
// students count regardless of overdue timing. Overdue counts effective
// statuses. AverageScore is nil when no graded record carries a score.
type SummaryCounts struct {
	Total        int      `json:"total"`
	Submitted    int      `json:"submitted"`
	Overdue      int      `json:"overdue"`
	Graded       int      `json:"graded"`
	AverageScore *float64 `json:"average_score"`
}

// AssignmentSummaryResponse is the rollup for one assignment.
type AssignmentSummaryResponse struct {
	AssignmentID uint `json:"assignment_id"`
	SummaryCounts
}

// ClassSummaryResponse aggregates every active assignment of one class,
// optionally narrowed to a single student.
type ClassSummaryResponse struct {
	ClassID     uint                        `json:"class_id"`
	StudentID   *uint                       `json:"student_id,omitempty"`
	Assignments []AssignmentSummaryResponse `json:"assignments"`
	Totals      SummaryCounts               `json:"totals"`
}
