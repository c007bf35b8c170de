package service

// Actor roles recognized by the transition and aggregation services.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	// RoleSystem identifies the test-taking subsystem recording submissions
	// on a student's behalf.
	RoleSystem = "system"
)

// Actor is the explicit identity behind every service call. Handlers build it
// from the verified token; services never reach into ambient request state.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor authenticated as a teacher.
func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }

// IsStudent reports whether the actor authenticated as a student.
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// IsSystem reports whether the actor is a trusted internal subsystem.
func (a Actor) IsSystem() bool { return a.Role == RoleSystem }
