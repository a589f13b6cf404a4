package upstream

import (
	"context"
	"net/url"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const classBase = "/api/class"

// ClassClient owns class CRUD.
type ClassClient struct {
	c *Client
}

// NewClassClient constructs a ClassClient.
func NewClassClient(c *Client) *ClassClient {
	return &ClassClient{c: c}
}

// ClassPayload is the create/update body.
type ClassPayload struct {
	Name       string   `json:"name"`
	GradeID    string   `json:"gradeId"`
	SubjectID  string   `json:"subjectId"`
	TeacherIDs []string `json:"teacherIds"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

// List fetches classes, optionally scoped to a grade.
func (cc *ClassClient) List(ctx context.Context, token, gradeID string) ([]models.Class, error) {
	params := url.Values{}
	if gradeID != "" {
		params.Set("gradeId", gradeID)
	}
	var out struct {
		Classes []models.Class `json:"classes"`
	}
	if err := cc.c.Get(ctx, classBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

// Get fetches one class.
func (cc *ClassClient) Get(ctx context.Context, token, id string) (*models.Class, error) {
	var out struct {
		Class models.Class `json:"class"`
	}
	if err := cc.c.Get(ctx, classBase+"/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Class, nil
}

// Create registers a class.
func (cc *ClassClient) Create(ctx context.Context, token string, payload ClassPayload) (*models.Class, error) {
	var out struct {
		Class models.Class `json:"class"`
	}
	if err := cc.c.Post(ctx, classBase, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Class, nil
}

// Update modifies a class.
func (cc *ClassClient) Update(ctx context.Context, token, id string, payload ClassPayload) (*models.Class, error) {
	var out struct {
		Class models.Class `json:"class"`
	}
	if err := cc.c.Patch(ctx, classBase+"/"+id, token, payload, &out); err != nil {
		return nil, err
	}
	return &out.Class, nil
}

// Delete removes a class.
func (cc *ClassClient) Delete(ctx context.Context, token, id string) error {
	return cc.c.Delete(ctx, classBase+"/"+id, token)
}
