package models

import "time"

// ResultRow is one row of a result report as the backend returns it.
type ResultRow struct {
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	PaperID     string  `json:"paperId"`
	PaperTitle  string  `json:"paperTitle"`
	Score       float64 `json:"score"`
	Attempt     int     `json:"attempt"`
	TakenAt     string  `json:"takenAt,omitempty"`
}

// ResultFilter selects which report rows to fetch.
type ResultFilter struct {
	StudentID string
	PaperID   string
	GradeID   string
	Page      int
	Limit     int
}

// ExportFormat selects the rendered report type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// Valid reports whether the format is one the renderer supports.
func (f ExportFormat) Valid() bool {
	return f == ExportCSV || f == ExportPDF
}

// ExportStatus tracks an export job through its lifecycle.
type ExportStatus string

const (
	ExportQueued  ExportStatus = "queued"
	ExportRunning ExportStatus = "running"
	ExportDone    ExportStatus = "done"
	ExportFailed  ExportStatus = "failed"
)

// ExportJob is the admin-visible state of one report export.
type ExportJob struct {
	ID          string       `json:"id"`
	Format      ExportFormat `json:"format"`
	Status      ExportStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// UploadResult is the payload the upload endpoint returns.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}
