package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
)

const teacherBase = "/api/teacher"

// TeacherClient owns teacher roster, approval and assignment endpoints.
type TeacherClient struct {
	c *Client
}

// NewTeacherClient constructs a TeacherClient.
func NewTeacherClient(c *Client) *TeacherClient {
	return &TeacherClient{c: c}
}

// List fetches teachers matching the filter.
func (t *TeacherClient) List(ctx context.Context, token string, filter models.TeacherFilter) ([]models.Teacher, error) {
	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", string(filter.Status))
	}
	if filter.Active != nil {
		params.Set("active", strconv.FormatBool(*filter.Active))
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		params.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		params.Set("limit", strconv.Itoa(filter.PageSize))
	}

	var out struct {
		Teachers []models.Teacher `json:"teachers"`
	}
	if err := t.c.Get(ctx, teacherBase, token, params, &out); err != nil {
		return nil, err
	}
	return out.Teachers, nil
}

// Get fetches one teacher.
func (t *TeacherClient) Get(ctx context.Context, token, id string) (*models.Teacher, error) {
	var out struct {
		Teacher models.Teacher `json:"teacher"`
	}
	if err := t.c.Get(ctx, teacherBase+"/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Teacher, nil
}

// SetApproval moves a teacher to approved or rejected.
func (t *TeacherClient) SetApproval(ctx context.Context, token, id string, status models.ApprovalStatus) (*models.Teacher, error) {
	var out struct {
		Teacher models.Teacher `json:"teacher"`
	}
	body := map[string]string{"status": string(status)}
	if err := t.c.Patch(ctx, teacherBase+"/"+id+"/approval", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Teacher, nil
}

// SetActive toggles the enabled flag.
func (t *TeacherClient) SetActive(ctx context.Context, token, id string, active bool) (*models.Teacher, error) {
	var out struct {
		Teacher models.Teacher `json:"teacher"`
	}
	body := map[string]bool{"isActive": active}
	if err := t.c.Patch(ctx, teacherBase+"/"+id+"/active", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Teacher, nil
}

// ListAssignments fetches a teacher's assignments.
func (t *TeacherClient) ListAssignments(ctx context.Context, token, teacherID string) ([]models.Assignment, error) {
	var out struct {
		Assignments []models.Assignment `json:"assignments"`
	}
	if err := t.c.Get(ctx, teacherBase+"/"+teacherID+"/assignments", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Assignments, nil
}

// CreateAssignment binds the teacher to a grade/stream/subject tuple.
func (t *TeacherClient) CreateAssignment(ctx context.Context, token string, a models.Assignment) (*models.Assignment, error) {
	var out struct {
		Assignment models.Assignment `json:"assignment"`
	}
	if err := t.c.Post(ctx, teacherBase+"/"+a.TeacherID+"/assignments", token, a, &out); err != nil {
		return nil, err
	}
	return &out.Assignment, nil
}

// DeleteAssignment removes one assignment.
func (t *TeacherClient) DeleteAssignment(ctx context.Context, token, teacherID, assignmentID string) error {
	return t.c.Delete(ctx, teacherBase+"/"+teacherID+"/assignments/"+assignmentID, token)
}
