package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const (
	studentBase = "/api/student"
	enrollBase  = "/api/enroll"
)

// StudentClient owns the student roster and ban endpoints.
type StudentClient struct {
	c *Client
}

// NewStudentClient constructs a StudentClient.
func NewStudentClient(c *Client) *StudentClient {
	return &StudentClient{c: c}
}

// FilterParams serialises the roster filter the way upstream expects it.
func FilterParams(f models.StudentFilter) url.Values {
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Email != "" {
		params.Set("email", f.Email)
	}
	if f.District != "" {
		params.Set("district", f.District)
	}
	if f.Level != "" {
		params.Set("level", f.Level)
	}
	if f.Grade != "" {
		params.Set("grade", f.Grade)
	}
	if f.Class != "" {
		params.Set("class", f.Class)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return params
}

// List fetches students matching the filter.
func (s *StudentClient) List(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error) {
	var out struct {
		Students []models.Student `json:"students"`
	}
	if err := s.c.Get(ctx, studentBase, token, FilterParams(filter), &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

// Get fetches one student.
func (s *StudentClient) Get(ctx context.Context, token, id string) (*models.Student, error) {
	var out struct {
		Student models.Student `json:"student"`
	}
	if err := s.c.Get(ctx, studentBase+"/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Student, nil
}

// SetActive flips the ban flag.
func (s *StudentClient) SetActive(ctx context.Context, token, id string, active bool) (*models.Student, error) {
	var out struct {
		Student models.Student `json:"student"`
	}
	body := map[string]bool{"isActive": active}
	if err := s.c.Patch(ctx, studentBase+"/"+id+"/active", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Student, nil
}

// EnrollClient owns enrollment request listing and admin transitions.
type EnrollClient struct {
	c *Client
}

// NewEnrollClient constructs an EnrollClient.
func NewEnrollClient(c *Client) *EnrollClient {
	return &EnrollClient{c: c}
}

// List fetches enrollment requests in the given state.
func (e *EnrollClient) List(ctx context.Context, token string, state models.EnrollmentState) ([]models.EnrollmentRequest, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", string(state))
	}
	var out struct {
		Requests []models.EnrollmentRequest `json:"requests"`
	}
	if err := e.c.Get(ctx, enrollBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// Transition moves a request to approved or rejected.
func (e *EnrollClient) Transition(ctx context.Context, token, id string, state models.EnrollmentState) (*models.EnrollmentRequest, error) {
	var out struct {
		Request models.EnrollmentRequest `json:"request"`
	}
	body := map[string]string{"state": string(state)}
	if err := e.c.Patch(ctx, enrollBase+"/"+id, token, body, &out); err != nil {
		return nil, err
	}
	return &out.Request, nil
}
