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

type fakeTaxonomyClient struct {
	grades         []models.Grade
	subjects       map[string][]models.Subject
	streams        map[string][]models.Stream
	streamSubjects map[string][]models.StreamSubject

	calls []string
}

func newFakeTaxonomyClient() *fakeTaxonomyClient {
	return &fakeTaxonomyClient{
		subjects:       map[string][]models.Subject{},
		streams:        map[string][]models.Stream{},
		streamSubjects: map[string][]models.StreamSubject{},
	}
}

func (f *fakeTaxonomyClient) ListGrades(ctx context.Context, token string) ([]models.Grade, error) {
	f.calls = append(f.calls, "ListGrades")
	return f.grades, nil
}

func (f *fakeTaxonomyClient) CreateGrade(ctx context.Context, token string, number int) (*models.Grade, error) {
	f.calls = append(f.calls, "CreateGrade")
	g := models.Grade{ID: "grade-new", Number: number}
	f.grades = append(f.grades, g)
	return &g, nil
}

func (f *fakeTaxonomyClient) ListSubjects(ctx context.Context, token, gradeID string) ([]models.Subject, error) {
	f.calls = append(f.calls, "ListSubjects")
	return f.subjects[gradeID], nil
}

func (f *fakeTaxonomyClient) CreateSubject(ctx context.Context, token, gradeID, name string) (*models.Subject, error) {
	f.calls = append(f.calls, "CreateSubject")
	s := models.Subject{ID: "subject-new", GradeID: gradeID, Name: name}
	f.subjects[gradeID] = append(f.subjects[gradeID], s)
	return &s, nil
}

func (f *fakeTaxonomyClient) UpdateSubject(ctx context.Context, token, id, name string) (*models.Subject, error) {
	f.calls = append(f.calls, "UpdateSubject")
	return &models.Subject{ID: id, Name: name}, nil
}

func (f *fakeTaxonomyClient) DeleteSubject(ctx context.Context, token, id string) error {
	f.calls = append(f.calls, "DeleteSubject")
	return nil
}

func (f *fakeTaxonomyClient) ListStreams(ctx context.Context, token, gradeID string) ([]models.Stream, error) {
	f.calls = append(f.calls, "ListStreams")
	return f.streams[gradeID], nil
}

func (f *fakeTaxonomyClient) CreateStream(ctx context.Context, token, gradeID, name string) (*models.Stream, error) {
	f.calls = append(f.calls, "CreateStream")
	s := models.Stream{ID: "stream-new", GradeID: gradeID, Name: name}
	f.streams[gradeID] = append(f.streams[gradeID], s)
	return &s, nil
}

func (f *fakeTaxonomyClient) UpdateStream(ctx context.Context, token, id, name string) (*models.Stream, error) {
	f.calls = append(f.calls, "UpdateStream")
	return &models.Stream{ID: id, Name: name}, nil
}

func (f *fakeTaxonomyClient) DeleteStream(ctx context.Context, token, id string) error {
	f.calls = append(f.calls, "DeleteStream")
	return nil
}

func (f *fakeTaxonomyClient) ListStreamSubjects(ctx context.Context, token, streamID string) ([]models.StreamSubject, error) {
	f.calls = append(f.calls, "ListStreamSubjects")
	return f.streamSubjects[streamID], nil
}

func (f *fakeTaxonomyClient) CreateStreamSubject(ctx context.Context, token, streamID, name string) (*models.StreamSubject, error) {
	f.calls = append(f.calls, "CreateStreamSubject")
	s := models.StreamSubject{ID: "stream-subject-new", StreamID: streamID, Name: name}
	f.streamSubjects[streamID] = append(f.streamSubjects[streamID], s)
	return &s, nil
}

func (f *fakeTaxonomyClient) UpdateStreamSubject(ctx context.Context, token, id, name string) (*models.StreamSubject, error) {
	f.calls = append(f.calls, "UpdateStreamSubject")
	return &models.StreamSubject{ID: id, Name: name}, nil
}

func (f *fakeTaxonomyClient) DeleteStreamSubject(ctx context.Context, token, id string) error {
	f.calls = append(f.calls, "DeleteStreamSubject")
	return nil
}

func testSession() *models.Session {
	return &models.Session{UserID: "admin-1", Token: "token-1", Role: models.RoleAdmin}
}

func newTaxonomyFixture(client *fakeTaxonomyClient) (*TaxonomyService, *query.Store) {
	store := query.NewStore(4, nil, nil)
	return NewTaxonomyService(store, client, nil, nil), store
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateSubjectRejectsStreamGrades(t *testing.T) {
	client := newFakeTaxonomyClient()
	svc, _ := newTaxonomyFixture(client)

	_, err := svc.CreateSubject(context.Background(), testSession(), CreateChildRequest{GradeNumber: 12, Name: "Physics"})

	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, client.calls, "no upstream write may happen for an invalid grade range")
}

func TestCreateStreamRejectsSubjectGrades(t *testing.T) {
	client := newFakeTaxonomyClient()
	svc, _ := newTaxonomyFixture(client)

	_, err := svc.CreateStream(context.Background(), testSession(), CreateChildRequest{GradeNumber: 7, Name: "Maths"})

	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, client.calls)
}

func TestCreateSubjectCreatesMissingGradeFirst(t *testing.T) {
	client := newFakeTaxonomyClient()
	client.grades = []models.Grade{{ID: "grade-1", Number: 1}}
	svc, _ := newTaxonomyFixture(client)

	subject, err := svc.CreateSubject(context.Background(), testSession(), CreateChildRequest{GradeNumber: 5, Name: "  Science "})
	require.NoError(t, err)

	assert.Equal(t, "grade-new", subject.GradeID)
	assert.Equal(t, "Science", subject.Name)
	assert.Equal(t, []string{"ListGrades", "CreateGrade", "CreateSubject"}, client.calls,
		"the grade write must land before the subject write")
}

func TestCreateSubjectReusesExistingGrade(t *testing.T) {
	client := newFakeTaxonomyClient()
	client.grades = []models.Grade{{ID: "grade-5", Number: 5}}
	svc, _ := newTaxonomyFixture(client)

	subject, err := svc.CreateSubject(context.Background(), testSession(), CreateChildRequest{GradeNumber: 5, Name: "Science"})
	require.NoError(t, err)

	assert.Equal(t, "grade-5", subject.GradeID)
	assert.NotContains(t, client.calls, "CreateGrade")
}

func TestCreateStreamAttachesToStreamGrade(t *testing.T) {
	client := newFakeTaxonomyClient()
	client.grades = []models.Grade{{ID: "grade-12", Number: 12}}
	svc, _ := newTaxonomyFixture(client)

	stream, err := svc.CreateStream(context.Background(), testSession(), CreateChildRequest{GradeNumber: 12, Name: "Bio Science"})
	require.NoError(t, err)

	assert.Equal(t, "grade-12", stream.GradeID)
	assert.Equal(t, []string{"ListGrades", "CreateStream"}, client.calls)
}

func TestCreateGradeInvalidatesGradeList(t *testing.T) {
	client := newFakeTaxonomyClient()
	svc, store := newTaxonomyFixture(client)
	sess := testSession()

	grades, err := svc.Grades(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, grades)

	_, err = svc.CreateSubject(context.Background(), sess, CreateChildRequest{GradeNumber: 3, Name: "Art"})
	require.NoError(t, err)

	// The cached grade list had no subscribers, so invalidation dropped it
	// and the next read refetches the grown list.
	assert.Zero(t, store.Len())
	grades, err = svc.Grades(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 3, grades[0].Number)
}

func TestSubjectsWithoutGradeSkipsFetch(t *testing.T) {
	client := newFakeTaxonomyClient()
	svc, _ := newTaxonomyFixture(client)

	subjects, err := svc.Subjects(context.Background(), testSession(), "")
	require.NoError(t, err)
	assert.Nil(t, subjects)
	assert.Empty(t, client.calls)
}

func TestRenameSubjectTrimsName(t *testing.T) {
	client := newFakeTaxonomyClient()
	svc, _ := newTaxonomyFixture(client)

	subject, err := svc.RenameSubject(context.Background(), testSession(), "subject-1", RenameRequest{Name: " Chemistry "})
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", subject.Name)
}

func TestRenameSubjectRejectsEmptyName(t *testing.T) {
	client := newFakeTaxonomyClient()
	svc, _ := newTaxonomyFixture(client)

	_, err := svc.RenameSubject(context.Background(), testSession(), "subject-1", RenameRequest{})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, client.calls)
}
