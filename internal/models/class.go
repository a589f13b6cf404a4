package models

import "time"

// Class is the binding unit for lessons, live sessions and enrollment.
type Class struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	GradeID    string   `json:"gradeId"`
	SubjectID  string   `json:"subjectId"`
	TeacherIDs []string `json:"teacherIds"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

// Lesson belongs to one class.
type Lesson struct {
	ID          string     `json:"id"`
	ClassID     string     `json:"classId"`
	Title       string     `json:"title"`
	VideoLink   string     `json:"videoLink,omitempty"`
	Description string     `json:"description,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// LiveSession belongs to one class and carries a single scheduled instant.
type LiveSession struct {
	ID          string     `json:"id"`
	ClassID     string     `json:"classId"`
	Title       string     `json:"title"`
	MeetingLink string     `json:"meetingLink"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}
