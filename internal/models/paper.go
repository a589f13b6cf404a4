package models

// PaperStatus is derived, never stored: a paper is in_progress until its
// authored question count reaches the required count, complete after, and
// publish once explicitly published. Publishing is one way.
type PaperStatus string

const (
	PaperInProgress PaperStatus = "in_progress"
	PaperComplete   PaperStatus = "complete"
	PaperPublished  PaperStatus = "publish"
)

// Paper is an assessment document composed of questions.
type Paper struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Type            string `json:"type"`
	GradeID         string `json:"gradeId"`
	SubjectID       string `json:"subjectId,omitempty"`
	StreamID        string `json:"streamId,omitempty"`
	StreamSubjectID string `json:"streamSubjectId,omitempty"`
	TimeLimitMin    int    `json:"timeLimit"`
	QuestionCount   int    `json:"questionCount"`
	AnswersPerQ     int    `json:"answersPerQuestion"`
	AttemptLimit    int    `json:"attemptLimit"`
	IsPaid          bool   `json:"isPaid"`
	Price           int    `json:"price,omitempty"`
	AuthoredCount   int    `json:"authoredCount"`
	IsPublished     bool   `json:"isPublished"`
}

// Status derives the paper lifecycle state.
func (p Paper) Status() PaperStatus {
	if p.IsPublished {
		return PaperPublished
	}
	if p.QuestionCount > 0 && p.AuthoredCount >= p.QuestionCount {
		return PaperComplete
	}
	return PaperInProgress
}

// CanEditQuestions reports whether question authoring is still open.
func (p Paper) CanEditQuestions() bool {
	return !p.IsPublished
}

// Question belongs to exactly one paper. Creation allows one or two correct
// answer indexes; the edit flow only carries a single index.
type Question struct {
	ID             string   `json:"id"`
	PaperID        string   `json:"paperId"`
	Prompt         string   `json:"prompt"`
	Answers        []string `json:"answers"`
	CorrectIndexes []int    `json:"correctIndexes"`
	ExplainerVideo string   `json:"explainerVideo,omitempty"`
	ExplainerText  string   `json:"explainerText,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
}
