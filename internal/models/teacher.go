package models

// ApprovalStatus tracks the teacher onboarding decision.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Teacher is a platform teacher account as the backend reports it.
type Teacher struct {
	ID          string         `json:"id"`
	FullName    string         `json:"fullName"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	Status      ApprovalStatus `json:"status"`
	IsActive    bool           `json:"isActive"`
	Assignments []Assignment   `json:"assignments,omitempty"`
}

// Assignment binds a teacher to one grade (plus a stream for 12-13) and a
// set of subject or stream-subject ids.
type Assignment struct {
	ID         string   `json:"id"`
	TeacherID  string   `json:"teacherId"`
	GradeID    string   `json:"gradeId"`
	StreamID   string   `json:"streamId,omitempty"`
	SubjectIDs []string `json:"subjectIds"`
}

// TeacherFilter captures the Permission screen's list filters.
type TeacherFilter struct {
	Status   ApprovalStatus
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
