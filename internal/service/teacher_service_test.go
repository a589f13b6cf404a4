package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

type fakeTeacherClient struct {
	teachers map[string]*models.Teacher

	listCalls   int
	assignments []models.Assignment
}

func newFakeTeacherClient(teachers ...models.Teacher) *fakeTeacherClient {
	f := &fakeTeacherClient{teachers: map[string]*models.Teacher{}}
	for i := range teachers {
		f.teachers[teachers[i].ID] = &teachers[i]
	}
	return f
}

func (f *fakeTeacherClient) List(ctx context.Context, token string, filter models.TeacherFilter) ([]models.Teacher, error) {
	f.listCalls++
	out := make([]models.Teacher, 0, len(f.teachers))
	for _, t := range f.teachers {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTeacherClient) Get(ctx context.Context, token, id string) (*models.Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeacherClient) SetApproval(ctx context.Context, token, id string, status models.ApprovalStatus) (*models.Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	t.Status = status
	copied := *t
	return &copied, nil
}

func (f *fakeTeacherClient) SetActive(ctx context.Context, token, id string, active bool) (*models.Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	t.IsActive = active
	copied := *t
	return &copied, nil
}

func (f *fakeTeacherClient) ListAssignments(ctx context.Context, token, teacherID string) ([]models.Assignment, error) {
	return f.assignments, nil
}

func (f *fakeTeacherClient) CreateAssignment(ctx context.Context, token string, a models.Assignment) (*models.Assignment, error) {
	a.ID = "assignment-new"
	f.assignments = append(f.assignments, a)
	return &a, nil
}

func (f *fakeTeacherClient) DeleteAssignment(ctx context.Context, token, teacherID, assignmentID string) error {
	return nil
}

func newTeacherFixture(client *fakeTeacherClient, taxonomy *fakeTaxonomyClient) (*TeacherService, *query.Store) {
	store := query.NewStore(4, nil, nil)
	taxSvc := NewTaxonomyService(store, taxonomy, nil, nil)
	return NewTeacherService(store, client, taxSvc, nil, nil), store
}

func TestApproveRefreshesPendingList(t *testing.T) {
	client := newFakeTeacherClient(
		models.Teacher{ID: "t-1", FullName: "Nimal Perera", Status: models.ApprovalPending},
		models.Teacher{ID: "t-2", FullName: "Kamala Silva", Status: models.ApprovalApproved},
	)
	svc, _ := newTeacherFixture(client, newFakeTaxonomyClient())
	sess := testSession()
	filter := models.TeacherFilter{Status: models.ApprovalPending}

	pending, err := svc.List(context.Background(), sess, filter)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "t-1", pending[0].ID)

	approved, err := svc.Approve(context.Background(), sess, "t-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.Status)

	// The pending list was invalidated by the approval, so the next read
	// hits the backend again and the approved teacher is gone from it.
	pending, err = svc.List(context.Background(), sess, filter)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 2, client.listCalls)
}

func TestListServesCachedTeachers(t *testing.T) {
	client := newFakeTeacherClient(models.Teacher{ID: "t-1", Status: models.ApprovalPending})
	svc, _ := newTeacherFixture(client, newFakeTaxonomyClient())
	sess := testSession()
	filter := models.TeacherFilter{Status: models.ApprovalPending}

	_, err := svc.List(context.Background(), sess, filter)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), sess, filter)
	require.NoError(t, err)

	assert.Equal(t, 1, client.listCalls)
}

func TestGetRequiresID(t *testing.T) {
	svc, _ := newTeacherFixture(newFakeTeacherClient(), newFakeTaxonomyClient())

	_, err := svc.Get(context.Background(), testSession(), "")
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestAssignFiltersSubjectsToGrade(t *testing.T) {
	taxonomy := newFakeTaxonomyClient()
	taxonomy.grades = []models.Grade{{ID: "grade-5", Number: 5}}
	taxonomy.subjects["grade-5"] = []models.Subject{
		{ID: "sub-maths", GradeID: "grade-5"},
		{ID: "sub-science", GradeID: "grade-5"},
	}
	client := newFakeTeacherClient(models.Teacher{ID: "t-1", Status: models.ApprovalApproved})
	svc, _ := newTeacherFixture(client, taxonomy)

	assignment, err := svc.Assign(context.Background(), testSession(), "t-1", AssignmentRequest{
		GradeID:    "grade-5",
		StreamID:   "stream-stale",
		SubjectIDs: []string{"sub-maths", "sub-from-other-grade"},
	})
	require.NoError(t, err)

	assert.Equal(t, "t-1", assignment.TeacherID)
	assert.Empty(t, assignment.StreamID, "a stream pick is meaningless below grade 12 and must be dropped")
	assert.Equal(t, []string{"sub-maths"}, assignment.SubjectIDs)
}

func TestAssignRequiresStreamForUpperGrades(t *testing.T) {
	taxonomy := newFakeTaxonomyClient()
	taxonomy.grades = []models.Grade{{ID: "grade-12", Number: 12}}
	client := newFakeTeacherClient()
	svc, _ := newTeacherFixture(client, taxonomy)

	_, err := svc.Assign(context.Background(), testSession(), "t-1", AssignmentRequest{
		GradeID:    "grade-12",
		SubjectIDs: []string{"ss-1"},
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, client.assignments)
}

func TestAssignValidatesStreamMembership(t *testing.T) {
	taxonomy := newFakeTaxonomyClient()
	taxonomy.grades = []models.Grade{{ID: "grade-12", Number: 12}}
	taxonomy.streams["grade-12"] = []models.Stream{{ID: "stream-bio", GradeID: "grade-12"}}
	svc, _ := newTeacherFixture(newFakeTeacherClient(), taxonomy)

	_, err := svc.Assign(context.Background(), testSession(), "t-1", AssignmentRequest{
		GradeID:    "grade-12",
		StreamID:   "stream-of-grade-13",
		SubjectIDs: []string{"ss-1"},
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestAssignFiltersStreamSubjects(t *testing.T) {
	taxonomy := newFakeTaxonomyClient()
	taxonomy.grades = []models.Grade{{ID: "grade-13", Number: 13}}
	taxonomy.streams["grade-13"] = []models.Stream{{ID: "stream-maths", GradeID: "grade-13"}}
	taxonomy.streamSubjects["stream-maths"] = []models.StreamSubject{
		{ID: "ss-pure", StreamID: "stream-maths"},
		{ID: "ss-applied", StreamID: "stream-maths"},
	}
	client := newFakeTeacherClient(models.Teacher{ID: "t-9", Status: models.ApprovalApproved})
	svc, _ := newTeacherFixture(client, taxonomy)

	assignment, err := svc.Assign(context.Background(), testSession(), "t-9", AssignmentRequest{
		GradeID:    "grade-13",
		StreamID:   "stream-maths",
		SubjectIDs: []string{"ss-applied", "ss-unrelated"},
	})
	require.NoError(t, err)

	assert.Equal(t, "stream-maths", assignment.StreamID)
	assert.Equal(t, []string{"ss-applied"}, assignment.SubjectIDs)
}

func TestAssignRejectsWhenNothingValidRemains(t *testing.T) {
	taxonomy := newFakeTaxonomyClient()
	taxonomy.grades = []models.Grade{{ID: "grade-5", Number: 5}}
	taxonomy.subjects["grade-5"] = []models.Subject{{ID: "sub-maths", GradeID: "grade-5"}}
	client := newFakeTeacherClient()
	svc, _ := newTeacherFixture(client, taxonomy)

	_, err := svc.Assign(context.Background(), testSession(), "t-1", AssignmentRequest{
		GradeID:    "grade-5",
		SubjectIDs: []string{"sub-history"},
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, client.assignments)
}

func TestAssignRejectsUnknownGrade(t *testing.T) {
	svc, _ := newTeacherFixture(newFakeTeacherClient(), newFakeTaxonomyClient())

	_, err := svc.Assign(context.Background(), testSession(), "t-1", AssignmentRequest{
		GradeID:    "grade-missing",
		SubjectIDs: []string{"sub-1"},
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}
