package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const (
	resultBase      = "/api/result-report"
	adminResultBase = "/api/admin-result-report"
)

// ResultClient owns both the teacher-facing and admin result report feeds.
type ResultClient struct {
	c *Client
}

// NewResultClient constructs a ResultClient.
func NewResultClient(c *Client) *ResultClient {
	return &ResultClient{c: c}
}

func resultParams(f models.ResultFilter) url.Values {
	params := url.Values{}
	if f.StudentID != "" {
		params.Set("studentId", f.StudentID)
	}
	if f.PaperID != "" {
		params.Set("paperId", f.PaperID)
	}
	if f.GradeID != "" {
		params.Set("gradeId", f.GradeID)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return params
}

// Rows fetches teacher-scope report rows. Upstream returns them under the
// "rows" field.
func (r *ResultClient) Rows(ctx context.Context, token string, filter models.ResultFilter) ([]models.ResultRow, error) {
	var out struct {
		Rows []models.ResultRow `json:"rows"`
	}
	if err := r.c.Get(ctx, resultBase, token, resultParams(filter), &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// AdminRows fetches the admin-wide report feed.
func (r *ResultClient) AdminRows(ctx context.Context, token string, filter models.ResultFilter) ([]models.ResultRow, error) {
	var out struct {
		Rows []models.ResultRow `json:"rows"`
	}
	if err := r.c.Get(ctx, adminResultBase, token, resultParams(filter), &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}
