package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type teacherRosterClient interface {
	List(ctx context.Context, token string, filter models.TeacherFilter) ([]models.Teacher, error)
	Get(ctx context.Context, token, id string) (*models.Teacher, error)
	SetApproval(ctx context.Context, token, id string, status models.ApprovalStatus) (*models.Teacher, error)
	SetActive(ctx context.Context, token, id string, active bool) (*models.Teacher, error)
	ListAssignments(ctx context.Context, token, teacherID string) ([]models.Assignment, error)
	CreateAssignment(ctx context.Context, token string, a models.Assignment) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, token, teacherID, assignmentID string) error
}

// AssignmentRequest is the assignment builder submission. Its stream and
// subject selections are re-validated against the currently valid choices so
// stale picks from a previous grade selection never reach the backend.
type AssignmentRequest struct {
	GradeID    string   `json:"gradeId" validate:"required"`
	StreamID   string   `json:"streamId"`
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1"`
}

// TeacherService drives the Permission and Assignment screens.
type TeacherService struct {
	store     *query.Store
	client    teacherRosterClient
	taxonomy  *TaxonomyService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(store *query.Store, client teacherRosterClient, taxonomy *TaxonomyService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{store: store, client: client, taxonomy: taxonomy, validator: validate, logger: logger}
}

func (s *TeacherService) listKey(sess *models.Session, filter models.TeacherFilter) query.Key {
	params := paramValues(
		"status", string(filter.Status),
		"search", filter.Search,
	)
	if filter.Active != nil {
		if *filter.Active {
			params.Set("active", "true")
		} else {
			params.Set("active", "false")
		}
	}
	return query.Key{Principal: sess.UserID, Endpoint: "/api/teacher", Params: params}
}

func (s *TeacherService) listFetch(sess *models.Session, filter models.TeacherFilter) query.FetchFunc {
	return func(ctx context.Context) (interface{}, []query.Tag, error) {
		teachers, err := s.client.List(ctx, sess.Token, filter)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(teachers))
		for i, t := range teachers {
			ids[i] = t.ID
		}
		return teachers, query.ListTags(TagTeachers, ids), nil
	}
}

// List returns teachers matching the filter through the cache.
func (s *TeacherService) List(ctx context.Context, sess *models.Session, filter models.TeacherFilter) ([]models.Teacher, error) {
	res, err := s.store.Query(ctx, s.listKey(sess, filter), s.listFetch(sess, filter))
	if err != nil {
		return nil, err
	}
	teachers, _ := res.Data.([]models.Teacher)
	return teachers, nil
}

// Watch opens a live subscription on a filtered teacher list; the Permission
// screen uses it so an approval removes the row without a manual reload.
func (s *TeacherService) Watch(ctx context.Context, sess *models.Session, filter models.TeacherFilter) (query.Result, *query.Subscription) {
	return s.store.Subscribe(ctx, s.listKey(sess, filter), s.listFetch(sess, filter))
}

// Get returns one teacher.
func (s *TeacherService) Get(ctx context.Context, sess *models.Session, id string) (*models.Teacher, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/teacher/" + id}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		teacher, err := s.client.Get(ctx, sess.Token, id)
		if err != nil {
			return nil, nil, err
		}
		return teacher, []query.Tag{query.ItemTag(TagTeachers, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	teacher, _ := res.Data.(*models.Teacher)
	return teacher, nil
}

// Approve moves a pending teacher to approved.
func (s *TeacherService) Approve(ctx context.Context, sess *models.Session, id string) (*models.Teacher, error) {
	return s.setApproval(ctx, sess, id, models.ApprovalApproved)
}

// Reject moves a pending teacher to rejected.
func (s *TeacherService) Reject(ctx context.Context, sess *models.Session, id string) (*models.Teacher, error) {
	return s.setApproval(ctx, sess, id, models.ApprovalRejected)
}

func (s *TeacherService) setApproval(ctx context.Context, sess *models.Session, id string, status models.ApprovalStatus) (*models.Teacher, error) {
	teacher, err := s.client.SetApproval(ctx, sess.Token, id, status)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagTeachers, id), query.ListTag(TagTeachers)})
	return teacher, nil
}

// SetActive enables or disables a teacher account.
func (s *TeacherService) SetActive(ctx context.Context, sess *models.Session, id string, active bool) (*models.Teacher, error) {
	teacher, err := s.client.SetActive(ctx, sess.Token, id, active)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{query.ItemTag(TagTeachers, id), query.ListTag(TagTeachers)})
	return teacher, nil
}

// Assignments lists a teacher's assignments through the cache.
func (s *TeacherService) Assignments(ctx context.Context, sess *models.Session, teacherID string) ([]models.Assignment, error) {
	if teacherID == "" {
		return nil, nil
	}
	key := query.Key{Principal: sess.UserID, Endpoint: "/api/teacher/assignments", Params: paramValues("teacherId", teacherID)}
	res, err := s.store.Query(ctx, key, func(ctx context.Context) (interface{}, []query.Tag, error) {
		assignments, err := s.client.ListAssignments(ctx, sess.Token, teacherID)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(assignments))
		for i, a := range assignments {
			ids[i] = a.ID
		}
		return assignments, query.ListTags(TagAssignments, ids), nil
	})
	if err != nil {
		return nil, err
	}
	assignments, _ := res.Data.([]models.Assignment)
	return assignments, nil
}

// Assign validates and submits an assignment tuple for a teacher.
func (s *TeacherService) Assign(ctx context.Context, sess *models.Session, teacherID string, req AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	normalized, err := s.normalizeAssignment(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	if len(normalized.SubjectIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no valid subjects selected for this grade")
	}
	normalized.TeacherID = teacherID

	assignment, err := s.client.CreateAssignment(ctx, sess.Token, *normalized)
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ListTag(TagAssignments),
		query.ItemTag(TagTeachers, teacherID),
		query.ListTag(TagTeachers),
	})
	return assignment, nil
}

// RemoveAssignment deletes one assignment.
func (s *TeacherService) RemoveAssignment(ctx context.Context, sess *models.Session, teacherID, assignmentID string) error {
	if err := s.client.DeleteAssignment(ctx, sess.Token, teacherID, assignmentID); err != nil {
		return err
	}
	s.store.Invalidate(ctx, []query.Tag{
		query.ItemTag(TagAssignments, assignmentID),
		query.ListTag(TagAssignments),
		query.ItemTag(TagTeachers, teacherID),
	})
	return nil
}

// normalizeAssignment drops selections that are no longer valid for the
// chosen grade: a stream that does not belong to the grade is cleared, and
// subject picks are filtered to the choices the grade (or stream) actually
// offers. This mirrors the form clearing its dependent fields on grade
// change.
func (s *TeacherService) normalizeAssignment(ctx context.Context, sess *models.Session, req AssignmentRequest) (*models.Assignment, error) {
	grades, err := s.taxonomy.Grades(ctx, sess)
	if err != nil {
		return nil, err
	}
	var grade *models.Grade
	for i := range grades {
		if grades[i].ID == req.GradeID {
			grade = &grades[i]
			break
		}
	}
	if grade == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade")
	}

	out := &models.Assignment{GradeID: req.GradeID}

	if !grade.HasStreams() {
		// Any stream pick left over from a previous 12-13 selection is stale.
		subjects, err := s.taxonomy.Subjects(ctx, sess, grade.ID)
		if err != nil {
			return nil, err
		}
		valid := make(map[string]struct{}, len(subjects))
		for _, sub := range subjects {
			valid[sub.ID] = struct{}{}
		}
		out.SubjectIDs = filterIDs(req.SubjectIDs, valid)
		return out, nil
	}

	if req.StreamID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a stream is required for grades 12-13")
	}
	streams, err := s.taxonomy.Streams(ctx, sess, grade.ID)
	if err != nil {
		return nil, err
	}
	streamValid := false
	for _, st := range streams {
		if st.ID == req.StreamID {
			streamValid = true
			break
		}
	}
	if !streamValid {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selected stream does not belong to this grade")
	}
	out.StreamID = req.StreamID

	streamSubjects, err := s.taxonomy.StreamSubjects(ctx, sess, req.StreamID)
	if err != nil {
		return nil, err
	}
	valid := make(map[string]struct{}, len(streamSubjects))
	for _, sub := range streamSubjects {
		valid[sub.ID] = struct{}{}
	}
	out.SubjectIDs = filterIDs(req.SubjectIDs, valid)
	return out, nil
}

func filterIDs(ids []string, valid map[string]struct{}) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := valid[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept
}
