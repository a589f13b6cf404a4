package models

// Student is a platform learner account.
type Student struct {
	ID       string   `json:"id"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	District string   `json:"district,omitempty"`
	Town     string   `json:"town,omitempty"`
	Address  string   `json:"address,omitempty"`
	Level    string   `json:"level,omitempty"`
	Grade    int      `json:"grade,omitempty"`
	IsActive bool     `json:"isActive"`
	Classes  []string `json:"classes,omitempty"`
}

// StudentFilter is the roster screen's search state. It survives navigation
// (persisted per admin user) and resets to page 1 on a new search submission.
type StudentFilter struct {
	Status   string `json:"status,omitempty"`
	Email    string `json:"email,omitempty"`
	District string `json:"district,omitempty"`
	Level    string `json:"level,omitempty"`
	Grade    string `json:"grade,omitempty"`
	Class    string `json:"class,omitempty"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

// EnrollmentState tracks a request's admin decision.
type EnrollmentState string

const (
	EnrollmentPending  EnrollmentState = "pending"
	EnrollmentApproved EnrollmentState = "approved"
	EnrollmentRejected EnrollmentState = "rejected"
)

// EnrollmentRequest is a student's request to join a class.
type EnrollmentRequest struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"studentId"`
	StudentName string          `json:"studentName"`
	ClassID     string          `json:"classId"`
	ClassName   string          `json:"className"`
	State       EnrollmentState `json:"state"`
}
