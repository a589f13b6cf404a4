package upstream

import (
	"context"
	"net/url"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const (
	paperBase    = "/api/paper"
	questionBase = "/api/question"
)

// PaperClient owns paper CRUD and publishing.
type PaperClient struct {
	c *Client
}

// NewPaperClient constructs a PaperClient.
func NewPaperClient(c *Client) *PaperClient {
	return &PaperClient{c: c}
}

// PaperPayload is the create/update body.
type PaperPayload struct {
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
}

// List fetches papers, optionally scoped to a grade.
func (p *PaperClient) List(ctx context.Context, token, gradeID string) ([]models.Paper, error) {
	params := url.Values{}
	if gradeID != "" {
		params.Set("gradeId", gradeID)
	}
	var out struct {
		Papers []models.Paper `json:"papers"`
	}
	if err := p.c.Get(ctx, paperBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Papers, nil
}

// Get fetches one paper.
func (p *PaperClient) Get(ctx context.Context, token, id string) (*models.Paper, error) {
	var out struct {
		Paper models.Paper `json:"paper"`
	}
	if err := p.c.Get(ctx, paperBase+"/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Paper, nil
}

// Create registers a paper.
func (p *PaperClient) Create(ctx context.Context, token string, payload PaperPayload) (*models.Paper, error) {
	var out struct {
		Paper models.Paper `json:"paper"`
	}
	if err := p.c.Post(ctx, paperBase, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Paper, nil
}

// Update modifies a paper.
func (p *PaperClient) Update(ctx context.Context, token, id string, payload PaperPayload) (*models.Paper, error) {
	var out struct {
		Paper models.Paper `json:"paper"`
	}
	if err := p.c.Patch(ctx, paperBase+"/"+id, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Paper, nil
}

// Publish flips the paper to its published state. One-way upstream.
func (p *PaperClient) Publish(ctx context.Context, token, id string) (*models.Paper, error) {
	var out struct {
		Paper models.Paper `json:"paper"`
	}
	if err := p.c.Patch(ctx, paperBase+"/"+id+"/publish", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Paper, nil
}

// Delete removes a paper.
func (p *PaperClient) Delete(ctx context.Context, token, id string) error {
	return p.c.Delete(ctx, paperBase+"/"+id, token)
}

// QuestionClient owns question CRUD within a paper.
type QuestionClient struct {
	c *Client
}

// NewQuestionClient constructs a QuestionClient.
func NewQuestionClient(c *Client) *QuestionClient {
	return &QuestionClient{c: c}
}

// CreateQuestionPayload allows one or two correct indexes.
type CreateQuestionPayload struct {
	PaperID        string   `json:"paperId"`
	Prompt         string   `json:"prompt"`
	Answers        []string `json:"answers"`
	CorrectIndexes []int    `json:"correctIndexes"`
	ExplainerVideo string   `json:"explainerVideo,omitempty"`
	ExplainerText  string   `json:"explainerText,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
}

// UpdateQuestionPayload carries a single correct index, as the edit flow
// does upstream.
type UpdateQuestionPayload struct {
	Prompt         string   `json:"prompt"`
	Answers        []string `json:"answers"`
	CorrectIndex   int      `json:"correctIndex"`
	ExplainerVideo string   `json:"explainerVideo,omitempty"`
	ExplainerText  string   `json:"explainerText,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
}

// ListByPaper fetches the questions of one paper.
func (q *QuestionClient) ListByPaper(ctx context.Context, token, paperID string) ([]models.Question, error) {
	params := url.Values{"paperId": {paperID}}
	var out struct {
		Questions []models.Question `json:"questions"`
	}
	if err := q.c.Get(ctx, questionBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// Create authors a question.
func (q *QuestionClient) Create(ctx context.Context, token string, payload CreateQuestionPayload) (*models.Question, error) {
	var out struct {
		Question models.Question `json:"question"`
	}
	if err := q.c.Post(ctx, questionBase, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Question, nil
}

// Update rewrites a question.
func (q *QuestionClient) Update(ctx context.Context, token, id string, payload UpdateQuestionPayload) (*models.Question, error) {
	var out struct {
		Question models.Question `json:"question"`
	}
	if err := q.c.Patch(ctx, questionBase+"/"+id, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Question, nil
}

// Delete removes a question.
func (q *QuestionClient) Delete(ctx context.Context, token, id string) error {
	return q.c.Delete(ctx, questionBase+"/"+id, token)
}
