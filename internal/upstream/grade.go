package upstream

import (
	"context"
	"net/url"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const gradeSubjectBase = "/api/grade-subject"

// GradeClient owns the grade/subject/stream taxonomy endpoints. No other
// client mutates these records, keeping the tag graph consistent.
type GradeClient struct {
	c *Client
}

// NewGradeClient constructs a GradeClient.
func NewGradeClient(c *Client) *GradeClient {
	return &GradeClient{c: c}
}

// ListGrades fetches every grade.
func (g *GradeClient) ListGrades(ctx context.Context, token string) ([]models.Grade, error) {
	var out struct {
		Grades []models.Grade `json:"grades"`
	}
	if err := g.c.Get(ctx, gradeSubjectBase+"/grades", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Grades, nil
}

// CreateGrade registers a new grade number and returns the created record.
func (g *GradeClient) CreateGrade(ctx context.Context, token string, number int) (*models.Grade, error) {
	var out struct {
		Grade models.Grade `json:"grade"`
	}
	body := map[string]int{"grade": number}
	if err := g.c.Post(ctx, gradeSubjectBase+"/grades", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Grade, nil
}

// ListSubjects fetches the subjects attached to one grade.
func (g *GradeClient) ListSubjects(ctx context.Context, token, gradeID string) ([]models.Subject, error) {
	var out struct {
		Subjects []models.Subject `json:"subjects"`
	}
	params := url.Values{"gradeId": {gradeID}}
	if err := g.c.Get(ctx, gradeSubjectBase+"/subjects", token, params, &out); err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

// CreateSubject attaches a subject to a grade.
func (g *GradeClient) CreateSubject(ctx context.Context, token, gradeID, name string) (*models.Subject, error) {
	var out struct {
		Subject models.Subject `json:"subject"`
	}
	body := map[string]string{"gradeId": gradeID, "name": name}
	if err := g.c.Post(ctx, gradeSubjectBase+"/subjects", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Subject, nil
}

// UpdateSubject renames a subject.
func (g *GradeClient) UpdateSubject(ctx context.Context, token, id, name string) (*models.Subject, error) {
	var out struct {
		Subject models.Subject `json:"subject"`
	}
	body := map[string]string{"name": name}
	if err := g.c.Patch(ctx, gradeSubjectBase+"/subjects/"+id, token, body, &out); err != nil {
		return nil, err
	}
	return &out.Subject, nil
}

// DeleteSubject removes a subject.
func (g *GradeClient) DeleteSubject(ctx context.Context, token, id string) error {
	return g.c.Delete(ctx, gradeSubjectBase+"/subjects/"+id, token)
}

// ListStreams fetches the streams of a grade (12-13 only upstream).
func (g *GradeClient) ListStreams(ctx context.Context, token, gradeID string) ([]models.Stream, error) {
	var out struct {
		Streams []models.Stream `json:"streams"`
	}
	params := url.Values{"gradeId": {gradeID}}
	if err := g.c.Get(ctx, gradeSubjectBase+"/streams", token, params, &out); err != nil {
		return nil, err
	}
	return out.Streams, nil
}

// CreateStream attaches a stream to a grade.
func (g *GradeClient) CreateStream(ctx context.Context, token, gradeID, name string) (*models.Stream, error) {
	var out struct {
		Stream models.Stream `json:"stream"`
	}
	body := map[string]string{"gradeId": gradeID, "name": name}
	if err := g.c.Post(ctx, gradeSubjectBase+"/streams", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Stream, nil
}

// UpdateStream renames a stream.
func (g *GradeClient) UpdateStream(ctx context.Context, token, id, name string) (*models.Stream, error) {
	var out struct {
		Stream models.Stream `json:"stream"`
	}
	body := map[string]string{"name": name}
	if err := g.c.Patch(ctx, gradeSubjectBase+"/streams/"+id, token, body, &out); err != nil {
		return nil, err
	}
	return &out.Stream, nil
}

// DeleteStream removes a stream.
func (g *GradeClient) DeleteStream(ctx context.Context, token, id string) error {
	return g.c.Delete(ctx, gradeSubjectBase+"/streams/"+id, token)
}

// ListStreamSubjects fetches the subjects of one stream.
func (g *GradeClient) ListStreamSubjects(ctx context.Context, token, streamID string) ([]models.StreamSubject, error) {
	var out struct {
		StreamSubjects []models.StreamSubject `json:"streamSubjects"`
	}
	params := url.Values{"streamId": {streamID}}
	if err := g.c.Get(ctx, gradeSubjectBase+"/stream-subjects", token, params, &out); err != nil {
		return nil, err
	}
	return out.StreamSubjects, nil
}

// CreateStreamSubject attaches a subject to a stream.
func (g *GradeClient) CreateStreamSubject(ctx context.Context, token, streamID, name string) (*models.StreamSubject, error) {
	var out struct {
		StreamSubject models.StreamSubject `json:"streamSubject"`
	}
	body := map[string]string{"streamId": streamID, "name": name}
	if err := g.c.Post(ctx, gradeSubjectBase+"/stream-subjects", token, body, &out); err != nil {
		return nil, err
	}
	return &out.StreamSubject, nil
}

// UpdateStreamSubject renames a stream subject.
func (g *GradeClient) UpdateStreamSubject(ctx context.Context, token, id, name string) (*models.StreamSubject, error) {
	var out struct {
		StreamSubject models.StreamSubject `json:"streamSubject"`
	}
	body := map[string]string{"name": name}
	if err := g.c.Patch(ctx, gradeSubjectBase+"/stream-subjects/"+id, token, body, &out); err != nil {
		return nil, err
	}
	return &out.StreamSubject, nil
}

// DeleteStreamSubject removes a stream subject.
func (g *GradeClient) DeleteStreamSubject(ctx context.Context, token, id string) error {
	return g.c.Delete(ctx, gradeSubjectBase+"/stream-subjects/"+id, token)
}
