package models

// Grade is one taxonomy root (1-13). Grades 1-11 own Subjects directly;
// grades 12 and 13 own Streams instead, never both.
type Grade struct {
	ID     string `json:"id"`
	Number int    `json:"grade"`
}

// HasStreams reports whether this grade uses stream terminology.
func (g Grade) HasStreams() bool {
	return GradeUsesStreams(g.Number)
}

// GradeUsesStreams reports whether a grade number belongs to the stream
// range (12-13) rather than the direct subject range (1-11).
func GradeUsesStreams(number int) bool {
	return number == 12 || number == 13
}

// ValidGradeNumber reports whether the number is inside the taxonomy.
func ValidGradeNumber(number int) bool {
	return number >= 1 && number <= 13
}

// Subject belongs to exactly one grade (1-11).
type Subject struct {
	ID      string `json:"id"`
	GradeID string `json:"gradeId"`
	Name    string `json:"name"`
}

// Stream is an academic track for grades 12-13.
type Stream struct {
	ID      string `json:"id"`
	GradeID string `json:"gradeId"`
	Name    string `json:"name"`
}

// StreamSubject belongs to exactly one stream.
type StreamSubject struct {
	ID       string `json:"id"`
	StreamID string `json:"streamId"`
	Name     string `json:"name"`
}
